package handler

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/presence/codec"
	"github.com/oomph-ac/presence/entity"
	"github.com/oomph-ac/presence/game"
	"github.com/oomph-ac/presence/registry"
	"github.com/oomph-ac/presence/session/sessiontest"
	"github.com/oomph-ac/presence/status"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const version = 767

type fixture struct {
	h        *Handler
	reg      *registry.Registry
	snapshot *status.Snapshot
	a, b     *sessiontest.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.Out = io.Discard

	f := &fixture{
		reg:      registry.New(filepath.Join(t.TempDir(), "npcs.toml"), entity.NewHandles(), log),
		snapshot: status.NewSnapshot(),
		a:        sessiontest.New("a", version),
		b:        sessiontest.New("b", version),
	}
	f.h = New(Config{
		Log:      log,
		Registry: f.reg,
		Encoder:  codec.Encoder{Renderer: status.Resolver{Snapshot: f.snapshot}},
		Sessions: sessiontest.Provider(f.a, f.b),
	})
	return f
}

func TestHandleJoin(t *testing.T) {
	f := newFixture(t)
	f.reg.Create("one", entity.Location{}, nil)
	f.reg.Create("two", entity.Location{}, nil)

	f.h.HandleJoin(f.a)
	ids := f.a.PacketIDs()
	require.Len(t, ids, 10, "five packets for each proxy without labels")
	require.Empty(t, f.b.Packets())
}

func TestHandleJoinUnsupportedProtocol(t *testing.T) {
	f := newFixture(t)
	f.reg.Create("one", entity.Location{}, nil)

	s := sessiontest.New("old", 47)
	f.h.HandleJoin(s)
	require.Empty(t, s.Packets())
}

func TestHandleMove(t *testing.T) {
	f := newFixture(t)
	near := f.reg.Create("near", entity.Location{}, nil)
	f.reg.ToggleLookAtNearest(near.ID)
	far := f.reg.Create("far", entity.Location{X: 100}, nil)
	f.reg.ToggleLookAtNearest(far.ID)
	f.reg.Create("static", entity.Location{Z: 1}, nil)

	f.h.HandleMove(f.a, mgl64.Vec3{0, 64, 10})
	require.Equal(t, []byte{0x48, 0x30}, f.a.PacketIDs(), "only the near proxy turns")
	require.Empty(t, f.b.Packets(), "other sessions are not sent the rotation")

	// Exactly on the range limit still counts.
	f.h.HandleMove(f.a, mgl64.Vec3{32, 0, 0})
	require.Len(t, f.a.Packets(), 2)
}

func TestHandleInteract(t *testing.T) {
	f := newFixture(t)
	unlinked := f.reg.Create("unlinked", entity.Location{}, nil)
	linked := f.reg.Create("linked", entity.Location{}, nil)
	f.reg.SetServer(linked.ID, "lobby")

	require.False(t, f.h.HandleInteract(f.a, unlinked.Handle, ActionInteract))
	require.False(t, f.h.HandleInteract(f.a, linked.Handle, ActionAttack))
	require.False(t, f.h.HandleInteract(f.a, 12345, ActionInteract))
	require.Empty(t, f.a.Packets())

	require.True(t, f.h.HandleInteract(f.a, linked.Handle, ActionInteract))
	packets := f.a.Packets()
	require.Len(t, packets, 1)
	require.True(t, bytes.Contains(packets[0], []byte(DefaultTransferChannel)))
	require.True(t, bytes.HasSuffix(packets[0], []byte("lobby")))
}

func TestHandlePublish(t *testing.T) {
	f := newFixture(t)
	p := f.reg.Create("linked", entity.Location{}, nil)
	f.reg.AddLabel(p.ID, "Lobby")
	f.reg.AddLabel(p.ID, "{online}/{max}")
	f.reg.SetServer(p.ID, "lobby")

	plain := f.reg.Create("plain", entity.Location{}, nil)
	f.reg.AddLabel(plain.ID, "{online}")

	f.snapshot.Replace(map[string]status.Status{"lobby": {Online: true, Players: 4, Max: 10}})
	f.h.HandlePublish(f.snapshot.All())

	for _, s := range []*sessiontest.Session{f.a, f.b} {
		packets := s.Packets()
		require.Len(t, packets, 1, "one metadata update for the label with placeholders")
		require.Equal(t, byte(0x58), packets[0][0])
		require.True(t, bytes.Contains(packets[0], []byte("4/10")))
	}
}

func TestRelabel(t *testing.T) {
	f := newFixture(t)
	p := f.reg.Create("p", entity.Location{}, nil)
	old, _ := f.reg.AddLabel(p.ID, "first")
	updated, _ := f.reg.AddLabel(p.ID, "second")

	f.h.Relabel(old, updated)
	require.Equal(t, []byte{0x42, 0x01, 0x58, 0x01, 0x58}, f.a.PacketIDs())
}

func TestTarget(t *testing.T) {
	f := newFixture(t)
	f.reg.Create("behind", entity.Location{Z: -5}, nil)
	ahead := f.reg.Create("ahead", entity.Location{Z: 5}, nil)

	f.a.PlayerRot = cube.Rotation{0, 0}
	p, ok := f.h.Target(f.a, game.DefaultCrosshair())
	require.True(t, ok)
	require.Equal(t, ahead.ID, p.ID)

	f.a.PlayerRot = cube.Rotation{90, 0}
	_, ok = f.h.Target(f.a, game.DefaultCrosshair())
	require.False(t, ok)
}
