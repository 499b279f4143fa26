package entity

import (
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// FirstHandle is the first runtime handle handed out. Handles count down from here so that they never
// collide with the entity ids of the host, which count up from zero.
const FirstHandle int32 = -1000

// Identity returns the protocol identity of the proxy with the id passed. It is a name based UUID (v5) and
// therefore identical after every restart without being stored.
func Identity(id uint32) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte("npc:"+strconv.FormatUint(uint64(id), 10)))
}

// LabelIdentity returns the protocol identity of the label entity with the runtime handle passed.
func LabelIdentity(handle int32) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte("hologram:"+strconv.FormatInt(int64(handle), 10)))
}

// Handles allocates runtime handles. A Handles never hands out the same value twice.
type Handles struct {
	next *atomic.Int32
}

// NewHandles returns a Handles that starts at FirstHandle.
func NewHandles() *Handles {
	return &Handles{next: atomic.NewInt32(FirstHandle)}
}

// Next returns the next free runtime handle.
func (h *Handles) Next() int32 {
	return h.next.Dec() + 1
}
