package presence

import (
	"context"

	"github.com/oomph-ac/presence/codec"
	"github.com/oomph-ac/presence/command"
	"github.com/oomph-ac/presence/entity"
	"github.com/oomph-ac/presence/handler"
	"github.com/oomph-ac/presence/registry"
	"github.com/oomph-ac/presence/session"
	"github.com/oomph-ac/presence/settings"
	"github.com/oomph-ac/presence/status"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// Config holds the collaborators a Presence is built from.
type Config struct {
	Settings settings.Settings
	// Sessions returns the sessions connected to the host.
	Sessions session.Provider
	// Log is used by every component. If nil, a logger is created from the settings.
	Log *logrus.Logger
	// Skins looks up skins of new proxies. If nil, the identity service configured is used.
	Skins command.SkinSource
}

// Presence is an instance of presence: the proxies, the servers they link to and everything keeping the view
// of sessions up to date.
type Presence struct {
	log *logrus.Logger

	handles  *entity.Handles
	registry *registry.Registry
	servers  *status.Servers
	snapshot *status.Snapshot
	poller   *status.Poller
	handler  *handler.Handler
	commands *command.Commands

	mu  deadlock.Mutex
	ctx context.Context
}

// New builds a Presence from the config passed. Nothing is loaded or started until Start is called.
func New(conf Config) *Presence {
	s := conf.Settings
	if conf.Log == nil {
		conf.Log = s.Logger()
	}
	if conf.Sessions == nil {
		conf.Sessions = session.ProviderFunc(func() []session.Session { return nil })
	}
	if conf.Skins == nil {
		conf.Skins = s.SkinFetcher()
	}

	p := &Presence{
		log:      conf.Log,
		handles:  entity.NewHandles(),
		servers:  status.NewServers(s.ServerFile(), conf.Log),
		snapshot: status.NewSnapshot(),
		ctx:      context.Background(),
	}
	p.registry = registry.New(s.NPCFile(), p.handles, conf.Log)
	p.handler = handler.New(handler.Config{
		Log:             conf.Log,
		Registry:        p.registry,
		Encoder:         codec.Encoder{Renderer: status.Resolver{Snapshot: p.snapshot}},
		Sessions:        conf.Sessions,
		FacingRange:     s.Presence.FacingRange,
		TransferChannel: s.Presence.TransferChannel,
	})
	p.poller = status.NewPoller(status.PollerConfig{
		Interval: s.PollInterval(),
		Timeout:  s.PingTimeout(),
		Publish:  p.handler.HandlePublish,
		Log:      conf.Log,
	}, p.servers, p.snapshot)
	p.commands = command.New(command.Config{
		Log:         conf.Log,
		Registry:    p.registry,
		Servers:     p.servers,
		Snapshot:    p.snapshot,
		Handler:     p.handler,
		Skins:       conf.Skins,
		Crosshair:   s.CrosshairConfig(),
		ServerAdded: p.startPoller,
	})
	return p
}

// Start loads the proxies and servers from disk and starts polling the servers if any are registered. The
// poller stops when ctx is cancelled.
func (p *Presence) Start(ctx context.Context) {
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()

	p.Load()
	p.startPoller()
}

// Load loads the proxies and servers from disk without starting the poller.
func (p *Presence) Load() {
	npcs := p.registry.Load()
	servers := p.servers.Load()
	p.log.Infof("loaded %d npc(s) and %d server(s)", npcs, servers)
}

// startPoller starts the poller unless it is already running or no servers are registered.
func (p *Presence) startPoller() {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	p.poller.Start(ctx)
}

// Execute runs an npc command line for the sender passed and returns its result.
func (p *Presence) Execute(sender command.Sender, line string) int {
	return p.commands.Execute(sender, line)
}

// Commands returns the npc command tree.
func (p *Presence) Commands() *command.Commands {
	return p.commands
}

// Handler returns the handler the host should call for join, move and interact events.
func (p *Presence) Handler() *handler.Handler {
	return p.handler
}

// Registry returns the proxies.
func (p *Presence) Registry() *registry.Registry {
	return p.registry
}

// Servers returns the servers proxies may link to.
func (p *Presence) Servers() *status.Servers {
	return p.servers
}

// Snapshot returns the statuses of the servers as of the last poll.
func (p *Presence) Snapshot() *status.Snapshot {
	return p.snapshot
}

// Poller returns the poller of the servers.
func (p *Presence) Poller() *status.Poller {
	return p.poller
}
