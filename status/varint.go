package status

import (
	"bytes"
	"fmt"
	"io"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/oomph-ac/presence/oerror"
)

// maxVarIntLen is the maximum amount of bytes a 32-bit varint may span.
const maxVarIntLen = 5

// readVarInt reads a varint of at most five bytes. Seven bits are stored per byte, least significant group
// first, and the high bit of every byte but the last is set.
func readVarInt(r io.ByteReader) (int32, error) {
	var v uint32
	for i := 0; i < maxVarIntLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int32(v), nil
		}
	}
	return 0, oerror.ErrMalformedVarInt
}

// writeFrame writes the length prefixed frame holding the packet passed.
func writeFrame(w io.Writer, packet []byte) error {
	var buf bytes.Buffer
	if _, err := pk.VarInt(len(packet)).WriteTo(&buf); err != nil {
		return err
	}
	buf.Write(packet)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
