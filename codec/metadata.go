package codec

import (
	"io"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/elliotchance/orderedmap/v2"
)

// metadataEnd terminates a list of metadata entries.
const metadataEnd = 0xff

// Metadata is a list of entity metadata entries. Entries are written in the order their index was first
// set, and setting an index again replaces its value.
type Metadata struct {
	proto   Protocol
	entries *orderedmap.OrderedMap[byte, metadataValue]
}

type metadataValue struct {
	typ   int32
	value io.WriterTo
}

// NewMetadata returns an empty list of metadata entries using the value type ids of the protocol passed.
func NewMetadata(proto Protocol) *Metadata {
	return &Metadata{proto: proto, entries: orderedmap.NewOrderedMap[byte, metadataValue]()}
}

// Byte sets a byte entry.
func (m *Metadata) Byte(index byte, v byte) *Metadata {
	m.entries.Set(index, metadataValue{typ: m.proto.MetaByte, value: pk.UnsignedByte(v)})
	return m
}

// Bool sets a boolean entry.
func (m *Metadata) Bool(index byte, v bool) *Metadata {
	m.entries.Set(index, metadataValue{typ: m.proto.MetaBoolean, value: pk.Boolean(v)})
	return m
}

// OptionalText sets an optional text component entry that is present.
func (m *Metadata) OptionalText(index byte, text string) *Metadata {
	m.entries.Set(index, metadataValue{typ: m.proto.MetaOptionalText, value: OptionalText{Text: text, Present: true}})
	return m
}

// Len returns the amount of entries set.
func (m *Metadata) Len() int {
	return m.entries.Len()
}

// WriteTo writes every entry followed by the terminator.
func (m *Metadata) WriteTo(w io.Writer) (n int64, err error) {
	for el := m.entries.Front(); el != nil; el = el.Next() {
		for _, f := range []io.WriterTo{pk.UnsignedByte(el.Key), pk.VarInt(el.Value.typ), el.Value.value} {
			nn, err := f.WriteTo(w)
			n += nn
			if err != nil {
				return n, err
			}
		}
	}
	nn, err := pk.UnsignedByte(metadataEnd).WriteTo(w)
	return n + nn, err
}
