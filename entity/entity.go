package entity

import (
	"slices"

	"github.com/google/uuid"
)

// Proxy is a server controlled fake player that is rendered to clients without being simulated. The
// persisted fields are ID, Name, Location, Skin, LookAtNearest, Labels and Server. UUID and Handle (and the
// handles of the labels) only live for the lifetime of the process and are assigned by AssignRuntime.
type Proxy struct {
	// ID is the stable business identifier of the proxy. It is never reused while the proxy exists.
	ID uint32
	// Name is both the display name and the protocol player name of the proxy.
	Name string
	// UUID is the protocol identity of the proxy. It is always Identity(ID).
	UUID uuid.UUID
	// Handle is the runtime entity id of the proxy on the wire.
	Handle int32
	// Location is where the proxy stands and which way it faces.
	Location Location
	// Skin is the signed texture of the proxy. A nil skin renders the proxy without texture properties.
	Skin *Skin
	// LookAtNearest makes the proxy turn its head towards nearby players when they move.
	LookAtNearest bool
	// Labels are the lines of text floating above the proxy, top line first.
	Labels []Label
	// Server is the name of the remote server the proxy is linked to, or an empty string.
	Server string
}

// Label is one line of floating text rendered above a proxy. Every label is its own entity on the wire.
type Label struct {
	// Text is the raw label text, which may contain status placeholders.
	Text string
	// Handle is the runtime entity id of the label on the wire.
	Handle int32
}

// Skin is an opaque signed texture reference obtained from the identity service.
type Skin struct {
	Textures  string
	Signature string
}

// New creates a proxy with runtime fields assigned from the handles passed.
func New(id uint32, name string, loc Location, skin *Skin, h *Handles) Proxy {
	p := Proxy{
		ID:       id,
		Name:     name,
		Location: loc,
		Skin:     skin,
	}
	p.AssignRuntime(h)
	return p
}

// AssignRuntime re-derives the identity of the proxy and assigns fresh runtime handles to the proxy and
// each of its labels. It must be called for every proxy loaded from disk before it is rendered.
func (p *Proxy) AssignRuntime(h *Handles) {
	p.UUID = Identity(p.ID)
	p.Handle = h.Next()
	for i := range p.Labels {
		p.Labels[i].Handle = h.Next()
	}
}

// Linked returns true if the proxy is linked to a remote server.
func (p Proxy) Linked() bool {
	return p.Server != ""
}

// LabelHandles returns the runtime handles of all labels of the proxy, top line first.
func (p Proxy) LabelHandles() []int32 {
	handles := make([]int32, 0, len(p.Labels))
	for _, l := range p.Labels {
		handles = append(handles, l.Handle)
	}
	return handles
}

// Clone returns a deep copy of the proxy, so that callers never share the skin or label slice with the
// registry.
func (p Proxy) Clone() Proxy {
	if p.Skin != nil {
		s := *p.Skin
		p.Skin = &s
	}
	p.Labels = slices.Clone(p.Labels)
	return p
}
