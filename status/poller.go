package status

import (
	"context"
	"sync"
	"time"

	"github.com/oomph-ac/presence/worker"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const (
	// DefaultInterval is the default time between two polls.
	DefaultInterval = 5 * time.Second
	// DefaultTimeout is the default time a single server has to answer a poll.
	DefaultTimeout = 2 * time.Second
)

// PollerConfig holds the settings of a Poller.
type PollerConfig struct {
	Interval time.Duration
	Timeout  time.Duration
	// Publish is called after every poll, once the snapshot has been replaced.
	Publish func(statuses map[string]Status)
	Log     *logrus.Logger
}

// Poller periodically pings every registered server and stores the results in a snapshot.
type Poller struct {
	conf     PollerConfig
	servers  *Servers
	snapshot *Snapshot

	started atomic.Bool
}

// NewPoller returns a Poller pinging the servers passed and storing the results in snapshot. Zero values of
// the config are replaced with defaults.
func NewPoller(conf PollerConfig, servers *Servers, snapshot *Snapshot) *Poller {
	if conf.Interval <= 0 {
		conf.Interval = DefaultInterval
	}
	if conf.Timeout <= 0 {
		conf.Timeout = DefaultTimeout
	}
	if conf.Log == nil {
		conf.Log = logrus.StandardLogger()
	}
	return &Poller{conf: conf, servers: servers, snapshot: snapshot}
}

// Start starts polling in the background until ctx is cancelled. Nothing is started while no servers are
// registered. A Poller runs at most once at a time: Start returns true only for the call that started it,
// and the Poller may be started again once ctx is cancelled and the loop has stopped.
func (p *Poller) Start(ctx context.Context) bool {
	if p.servers.Len() == 0 || !p.started.CompareAndSwap(false, true) {
		return false
	}
	p.conf.Log.Infof("polling %d server(s) every %v", p.servers.Len(), p.conf.Interval)
	worker.Go(func() {
		p.run(ctx)
	})
	return true
}

// Running returns true if the Poller was started and its loop has not stopped.
func (p *Poller) Running() bool {
	return p.started.Load()
}

func (p *Poller) run(ctx context.Context) {
	defer p.started.Store(false)
	t := time.NewTicker(p.conf.Interval)
	defer t.Stop()
	for {
		p.Poll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Poll pings every registered server concurrently, replaces the snapshot with the results and publishes
// them. Poll returns once every ping has finished, which takes at most the configured timeout.
func (p *Poller) Poll(ctx context.Context) map[string]Status {
	var (
		g        worker.Group
		mu       sync.Mutex
		statuses = make(map[string]Status)
	)
	for _, srv := range p.servers.All() {
		srv := srv
		g.Go(func() {
			st, err := Ping(ctx, srv.Address, p.conf.Timeout)
			if err != nil {
				p.conf.Log.Debugf("server %s (%v) is offline: %v", srv.Name, srv.Address, err)
			}
			mu.Lock()
			statuses[srv.Name] = st
			mu.Unlock()
		})
	}
	g.Wait()

	p.snapshot.Replace(statuses)
	if p.conf.Publish != nil {
		p.conf.Publish(statuses)
	}
	return statuses
}
