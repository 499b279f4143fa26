package session

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Session is a client connected to the host. Implementations are provided by the host and must be safe for
// concurrent use.
type Session interface {
	// UUID returns the identity of the player of the session.
	UUID() uuid.UUID
	// Name returns the name of the player of the session.
	Name() string
	// Protocol returns the protocol version negotiated by the session.
	Protocol() int32
	// Position returns the feet position of the player.
	Position() mgl64.Vec3
	// Rotation returns the yaw and pitch of the player.
	Rotation() cube.Rotation
	// WritePacket queues an encoded packet, starting with its packet id, for the session. It must not block
	// on network I/O, and must not modify b: the same buffer may be queued for several sessions.
	WritePacket(b []byte)
	// Message sends a chat message to the player.
	Message(msg string)
}

// Provider returns the sessions currently connected to the host.
type Provider interface {
	Sessions() []Session
}

// ProviderFunc is a Provider implemented by a function.
type ProviderFunc func() []Session

// Sessions ...
func (f ProviderFunc) Sessions() []Session {
	return f()
}
