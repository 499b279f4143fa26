package command

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/presence/codec"
	"github.com/oomph-ac/presence/entity"
	"github.com/oomph-ac/presence/handler"
	"github.com/oomph-ac/presence/oerror"
	"github.com/oomph-ac/presence/registry"
	"github.com/oomph-ac/presence/session/sessiontest"
	"github.com/oomph-ac/presence/status"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type console struct {
	messages []string
}

func (c *console) Message(msg string) {
	c.messages = append(c.messages, msg)
}

func (c *console) last() string {
	if len(c.messages) == 0 {
		return ""
	}
	return c.messages[len(c.messages)-1]
}

type skins map[string]*entity.Skin

func (s skins) Fetch(_ context.Context, name string) (*entity.Skin, error) {
	if skin, ok := s[name]; ok {
		return skin, nil
	}
	return nil, oerror.ErrNotFound
}

type fixture struct {
	cmds    *Commands
	reg     *registry.Registry
	servers *status.Servers
	player  *sessiontest.Session
	viewer  *sessiontest.Session
	added   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.Out = io.Discard
	dir := t.TempDir()

	f := &fixture{
		reg:     registry.New(filepath.Join(dir, "npcs.toml"), entity.NewHandles(), log),
		servers: status.NewServers(filepath.Join(dir, "servers.toml"), log),
		player:  sessiontest.New("operator", 767),
		viewer:  sessiontest.New("viewer", 767),
	}
	snapshot := status.NewSnapshot()
	h := handler.New(handler.Config{
		Log:      log,
		Registry: f.reg,
		Encoder:  codec.Encoder{Renderer: status.Resolver{Snapshot: snapshot}},
		Sessions: sessiontest.Provider(f.player, f.viewer),
	})
	f.cmds = New(Config{
		Log:         log,
		Registry:    f.reg,
		Servers:     f.servers,
		Snapshot:    snapshot,
		Handler:     h,
		Skins:       skins{"Steve": {Textures: "tex", Signature: "sig"}},
		ServerAdded: func() { f.added++ },
	})
	return f
}

// lookAt places the operator in front of the proxy passed, looking at it.
func (f *fixture) lookAt(p entity.Proxy) {
	f.player.PlayerPos = p.Location.Position().Sub(mgl64.Vec3{0, 0, 5})
	f.player.PlayerRot = cube.Rotation{0, 0}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	f.player.PlayerPos = mgl64.Vec3{1, 64, 2}
	f.player.PlayerRot = cube.Rotation{90, 10}

	require.Equal(t, 1, f.cmds.Execute(f.player, "create Steve"))
	require.Equal(t, "Created NPC 'Steve' (ID 1) with skin", f.player.Messages()[0])

	p, ok := f.reg.Get(1)
	require.True(t, ok)
	require.Equal(t, entity.Location{X: 1, Y: 64, Z: 2, Yaw: 90, Pitch: 10}, p.Location)
	require.NotNil(t, p.Skin)
	require.Len(t, f.viewer.Packets(), 5, "the new proxy is spawned for every session")

	require.Equal(t, 1, f.cmds.Execute(f.player, "create Alex"))
	require.Equal(t, "Created NPC 'Alex' (ID 2) (no skin found)", f.player.Messages()[0])
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	c := &console{}
	require.Equal(t, 0, f.cmds.Execute(c, "create Steve"))
	require.Equal(t, "Only players can use this command", c.last())

	require.Equal(t, 0, f.cmds.Execute(f.player, "create ThisNameIsWayTooLong"))
	require.Equal(t, 0, f.cmds.Execute(f.player, "create"))
	require.Zero(t, f.reg.Len())
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	p := f.reg.Create("Steve", entity.Location{}, nil)
	c := &console{}

	require.Equal(t, 0, f.cmds.Execute(c, "remove abc"))
	require.Equal(t, "Invalid NPC ID", c.last())
	require.Equal(t, 0, f.cmds.Execute(c, "remove 9"))
	require.Equal(t, "No NPC found with ID 9", c.last())

	require.Equal(t, 1, f.cmds.Execute(c, "remove 1"))
	require.Equal(t, "Removed NPC 'Steve' (ID 1)", c.last())
	_, ok := f.reg.Get(p.ID)
	require.False(t, ok)
	require.Equal(t, []byte{0x42, 0x3d, 0x60}, f.viewer.PacketIDs())
}

func TestList(t *testing.T) {
	f := newFixture(t)
	c := &console{}
	require.Equal(t, 0, f.cmds.Execute(c, "list"))
	require.Equal(t, "No NPCs exist", c.last())

	f.reg.Create("Steve", entity.Location{}, nil)
	f.reg.Create("Alex", entity.Location{}, nil)
	require.Equal(t, 2, f.cmds.Execute(c, "list"))
	require.True(t, strings.Contains(c.last(), "Alex"))
}

func TestLookNear(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, 0, f.cmds.Execute(f.player, "looknear"))
	require.Equal(t, "No NPCs exist", f.player.Messages()[0])

	p := f.reg.Create("Steve", entity.Location{X: 10, Y: 64, Z: 10}, nil)
	require.Equal(t, 0, f.cmds.Execute(f.player, "looknear"))
	require.Equal(t, "No NPC found in crosshair", f.player.Messages()[0])

	f.lookAt(p)
	require.Equal(t, 1, f.cmds.Execute(f.player, "looknear"))
	require.Equal(t, "Look-at-nearest enabled for NPC 'Steve' (ID 1)", f.player.Messages()[0])
	require.Equal(t, 1, f.cmds.Execute(f.player, "looknear"))
	require.Equal(t, "Look-at-nearest disabled for NPC 'Steve' (ID 1)", f.player.Messages()[0])
}

func TestLabelAdd(t *testing.T) {
	f := newFixture(t)
	p := f.reg.Create("Steve", entity.Location{}, nil)
	f.lookAt(p)

	require.Equal(t, 1, f.cmds.Execute(f.player, "label add Welcome to the   lobby"))
	require.Equal(t, "Added hologram 'Welcome to the lobby' to NPC 'Steve' (ID 1)", f.player.Messages()[0])
	require.Equal(t, []byte{0x01, 0x58}, f.viewer.PacketIDs(), "no labels to remove yet")

	require.Equal(t, 1, f.cmds.Execute(f.player, "hologram add second"))
	require.Equal(t, []byte{0x42, 0x01, 0x58, 0x01, 0x58}, f.viewer.PacketIDs())

	updated, _ := f.reg.Get(p.ID)
	require.Len(t, updated.Labels, 2)
}

func TestServerCommands(t *testing.T) {
	f := newFixture(t)
	c := &console{}

	require.Equal(t, 0, f.cmds.Execute(c, "server list"))
	require.Equal(t, 0, f.cmds.Execute(c, "server add lobby localhost"))
	require.Zero(t, f.added)

	require.Equal(t, 1, f.cmds.Execute(c, "server add lobby 127.0.0.1:25565"))
	require.Equal(t, 1, f.added)
	require.True(t, f.servers.Has("lobby"))
	require.Equal(t, 1, f.cmds.Execute(c, "server list"))
	require.True(t, strings.Contains(c.last(), "lobby (127.0.0.1:25565): offline"))

	require.Equal(t, 0, f.cmds.Execute(c, "server set lobby"))
	require.Equal(t, "Only players can use this command", c.last())

	p := f.reg.Create("Steve", entity.Location{}, nil)
	f.lookAt(p)
	require.Equal(t, 0, f.cmds.Execute(f.player, "server set arena"))
	require.Equal(t, "Server 'arena' not found", f.player.Messages()[0])
	require.Equal(t, 1, f.cmds.Execute(f.player, "server set lobby"))
	require.Equal(t, "Set server 'lobby' on NPC 'Steve' (ID 1)", f.player.Messages()[0])
	linked, _ := f.reg.Get(p.ID)
	require.Equal(t, "lobby", linked.Server)

	require.Equal(t, 1, f.cmds.Execute(c, "server remove lobby"))
	require.Equal(t, 0, f.cmds.Execute(c, "server remove lobby"))
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)
	c := &console{}
	require.Equal(t, 0, f.cmds.Execute(c, "dance"))
	require.NotEmpty(t, c.messages)
}
