package command

import (
	"context"
	"errors"
	"strings"

	"github.com/oomph-ac/presence/entity"
	"github.com/oomph-ac/presence/game"
	"github.com/oomph-ac/presence/handler"
	"github.com/oomph-ac/presence/registry"
	"github.com/oomph-ac/presence/session"
	"github.com/oomph-ac/presence/status"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Sender is whoever runs a command. Players running commands are sessions.
type Sender interface {
	Message(msg string)
}

// SkinSource looks up the signed skin of a player name.
type SkinSource interface {
	Fetch(ctx context.Context, name string) (*entity.Skin, error)
}

// Config holds everything the commands operate on.
type Config struct {
	Log       *logrus.Logger
	Registry  *registry.Registry
	Servers   *status.Servers
	Snapshot  *status.Snapshot
	Handler   *handler.Handler
	Skins     SkinSource
	Crosshair game.Crosshair
	// ServerAdded is called after a server was registered, so that polling can start.
	ServerAdded func()
}

// Commands runs the npc command tree for operators.
type Commands struct {
	conf Config
}

// New returns the commands using the config passed.
func New(conf Config) *Commands {
	if conf.Log == nil {
		conf.Log = logrus.StandardLogger()
	}
	if conf.Crosshair == (game.Crosshair{}) {
		conf.Crosshair = game.DefaultCrosshair()
	}
	return &Commands{conf: conf}
}

// errPlayerOnly is reported when a command needs a position or a crosshair and was run from the console.
var errPlayerOnly = errors.New("Only players can use this command")

// invocation is a single run of a command.
type invocation struct {
	*Commands
	sender Sender
	result int
}

// player returns the session of the sender, or errPlayerOnly if the sender is not a player.
func (inv *invocation) player() (session.Session, error) {
	s, ok := inv.sender.(session.Session)
	if !ok {
		return nil, errPlayerOnly
	}
	return s, nil
}

// target returns the proxy the player running the command is looking at.
func (inv *invocation) target() (session.Session, entity.Proxy, error) {
	s, err := inv.player()
	if err != nil {
		return nil, entity.Proxy{}, err
	}
	if inv.conf.Registry.Len() == 0 {
		return nil, entity.Proxy{}, errors.New("No NPCs exist")
	}
	p, ok := inv.conf.Handler.Target(s, inv.conf.Crosshair)
	if !ok {
		return nil, entity.Proxy{}, errors.New("No NPC found in crosshair")
	}
	return s, p, nil
}

// reply sends a message to the sender and records the result of the invocation.
func (inv *invocation) reply(result int, msg string) {
	inv.result = result
	inv.sender.Message(msg)
}

// Execute runs a command line, such as "create Steve", for the sender passed. Messages are sent to the
// sender. The result is 0 if the command failed or changed nothing, the amount of entries for listings and
// 1 otherwise.
func (c *Commands) Execute(sender Sender, line string) int {
	inv := &invocation{Commands: c, sender: sender}
	root := inv.root()
	root.SetArgs(strings.Fields(line))
	root.SetOut(messageWriter{sender})
	root.SetErr(messageWriter{sender})
	if err := root.Execute(); err != nil {
		sender.Message(err.Error())
		return 0
	}
	return inv.result
}

// Root returns the command tree without binding it to a sender. It is used to list the commands and their
// usage.
func (c *Commands) Root() *cobra.Command {
	return (&invocation{Commands: c}).root()
}

func (inv *invocation) root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "npc",
		Short:         "Manage NPCs",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.AddCommand(
		inv.newCreateCmd(),
		inv.newRemoveCmd(),
		inv.newListCmd(),
		inv.newLookNearCmd(),
		inv.newServerCmd(),
		inv.newLabelCmd(),
	)
	return cmd
}

// messageWriter sends everything written to it to a sender as messages.
type messageWriter struct {
	s Sender
}

// Write ...
func (w messageWriter) Write(b []byte) (int, error) {
	if msg := strings.TrimRight(string(b), "\n"); msg != "" {
		w.s.Message(msg)
	}
	return len(b), nil
}
