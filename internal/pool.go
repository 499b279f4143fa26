package internal

import (
	"bytes"
	"sync"
)

// BufferPool holds buffers used to encode packets. Buffers must be reset before use, and their contents
// copied before they are returned to the pool.
var BufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}

// GetBuffer retrieves an empty buffer from the pool.
func GetBuffer() *bytes.Buffer {
	buf := BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool.
func PutBuffer(buf *bytes.Buffer) {
	BufferPool.Put(buf)
}
