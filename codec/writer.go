package codec

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/Tnze/go-mc/nbt"
	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/google/uuid"
	"github.com/oomph-ac/presence/internal"
)

// Writer writes the primitives of the protocol to a pooled buffer. The first error encountered is kept and
// every write after it is a no-op.
type Writer struct {
	buf *bytes.Buffer
	err error
}

// NewWriter returns a Writer that starts the packet with the id passed.
func NewWriter(id int32) *Writer {
	w := &Writer{buf: internal.GetBuffer()}
	w.VarInt(id)
	return w
}

// Field writes any field that knows how to encode itself.
func (w *Writer) Field(f io.WriterTo) {
	if w.err != nil {
		return
	}
	_, w.err = f.WriteTo(w.buf)
}

// VarInt writes a variable length integer.
func (w *Writer) VarInt(v int32) {
	w.Field(pk.VarInt(v))
}

// String writes a varint length prefixed UTF-8 string.
func (w *Writer) String(s string) {
	w.Field(pk.String(s))
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.Field(pk.UnsignedByte(b))
}

// Bool writes a boolean as a single byte.
func (w *Writer) Bool(b bool) {
	w.Field(pk.Boolean(b))
}

// Double writes a big endian float64.
func (w *Writer) Double(f float64) {
	w.Field(pk.Double(f))
}

// Short writes a big endian int16.
func (w *Writer) Short(s int16) {
	w.Field(pk.Short(s))
}

// UUID writes a UUID as two big endian longs.
func (w *Writer) UUID(id uuid.UUID) {
	w.Field(pk.UUID(id))
}

// Text writes a plain text component.
func (w *Writer) Text(s string) {
	w.Field(TextComponent(s))
}

// Raw writes b without any length prefix.
func (w *Writer) Raw(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.buf.Write(b)
}

// Fail makes the writer fail with the error passed unless it already failed.
func (w *Writer) Fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Err returns the first error encountered by the writer.
func (w *Writer) Err() error {
	return w.err
}

// Bytes returns a copy of the packet written and releases the buffer of the writer. The writer must not be
// used afterwards.
func (w *Writer) Bytes() ([]byte, error) {
	defer func() {
		internal.PutBuffer(w.buf)
		w.buf = nil
	}()
	if w.err != nil {
		return nil, w.err
	}
	return bytes.Clone(w.buf.Bytes()), nil
}

// TextComponent is a plain text component. Since 1.20.3 text components are sent as network NBT, and a plain
// text component may be sent as a single unnamed string tag.
type TextComponent string

// WriteTo ...
func (t TextComponent) WriteTo(w io.Writer) (int64, error) {
	s := modifiedUTF8(string(t))
	if len(s) > math.MaxUint16 {
		return 0, fmt.Errorf("text component of %d bytes exceeds the NBT string limit", len(s))
	}
	cw := &countingWriter{w: w}
	enc := nbt.NewEncoder(cw)
	enc.NetworkFormat(true)
	err := enc.Encode(s, "")
	return cw.n, err
}

// modifiedUTF8 encodes s the way NBT strings are read by the client: U+0000 takes two bytes and runes
// outside the basic multilingual plane are written as a surrogate pair of three bytes each.
func modifiedUTF8(s string) string {
	simple := true
	for i := 0; i < len(s); i++ {
		if c := s[i]; c == 0 || c >= utf8.RuneSelf {
			simple = false
			break
		}
	}
	if simple {
		return s
	}

	b := make([]byte, 0, len(s)+len(s)/2)
	for _, r := range s {
		switch {
		case r == 0:
			b = append(b, 0xc0, 0x80)
		case r < utf8.RuneSelf:
			b = append(b, byte(r))
		case r <= 0xffff:
			b = utf8.AppendRune(b, r)
		default:
			hi, lo := utf16.EncodeRune(r)
			b = appendSurrogate(b, hi)
			b = appendSurrogate(b, lo)
		}
	}
	return string(b)
}

// appendSurrogate appends the three byte form of a UTF-16 surrogate, which utf8.AppendRune refuses to write.
func appendSurrogate(b []byte, r rune) []byte {
	return append(b, 0xe0|byte(r>>12), 0x80|byte(r>>6)&0x3f, 0x80|byte(r)&0x3f)
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

// Write ...
func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

// OptionalText is a text component preceded by a boolean indicating its presence.
type OptionalText struct {
	Text    string
	Present bool
}

// WriteTo ...
func (o OptionalText) WriteTo(w io.Writer) (int64, error) {
	n, err := pk.Boolean(o.Present).WriteTo(w)
	if err != nil || !o.Present {
		return n, err
	}
	n2, err := TextComponent(o.Text).WriteTo(w)
	return n + n2, err
}
