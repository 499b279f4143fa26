// Package sessiontest provides an in-memory session for tests of code that sends packets to sessions.
package sessiontest

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oomph-ac/presence/session"
	"github.com/sasha-s/go-deadlock"
)

// Session records the packets and messages sent to it.
type Session struct {
	PlayerName string
	PlayerUUID uuid.UUID
	Version    int32
	PlayerPos  mgl64.Vec3
	PlayerRot  cube.Rotation

	mu       deadlock.Mutex
	packets  [][]byte
	messages []string
}

// New returns a session of a player with the name passed on the protocol version passed.
func New(name string, version int32) *Session {
	return &Session{PlayerName: name, PlayerUUID: uuid.New(), Version: version}
}

// UUID ...
func (s *Session) UUID() uuid.UUID { return s.PlayerUUID }

// Name ...
func (s *Session) Name() string { return s.PlayerName }

// Protocol ...
func (s *Session) Protocol() int32 { return s.Version }

// Position ...
func (s *Session) Position() mgl64.Vec3 { return s.PlayerPos }

// Rotation ...
func (s *Session) Rotation() cube.Rotation { return s.PlayerRot }

// WritePacket ...
func (s *Session) WritePacket(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets = append(s.packets, b)
}

// Message ...
func (s *Session) Message(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Packets returns every packet written to the session so far and forgets them.
func (s *Session) Packets() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.packets
	s.packets = nil
	return p
}

// PacketIDs returns the ids of every packet written to the session so far and forgets the packets.
func (s *Session) PacketIDs() []byte {
	packets := s.Packets()
	ids := make([]byte, 0, len(packets))
	for _, p := range packets {
		ids = append(ids, p[0])
	}
	return ids
}

// Messages returns every message sent to the session so far and forgets them.
func (s *Session) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.messages
	s.messages = nil
	return m
}

// Provider returns a provider of the sessions passed.
func Provider(sessions ...*Session) session.Provider {
	return session.ProviderFunc(func() []session.Session {
		all := make([]session.Session, 0, len(sessions))
		for _, s := range sessions {
			all = append(all, s)
		}
		return all
	})
}
