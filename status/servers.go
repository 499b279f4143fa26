package status

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// Server is a remote server proxies may link to.
type Server struct {
	Name    string
	Address netip.AddrPort
}

type serverRecord struct {
	Address string `toml:"address"`
}

// Servers holds the remote servers known to the process and persists them to a TOML file. All methods are
// safe for concurrent use.
type Servers struct {
	log  *logrus.Logger
	path string

	mu      deadlock.RWMutex
	servers map[string]netip.AddrPort

	saveMu deadlock.Mutex
}

// NewServers returns an empty server store persisting to the path passed.
func NewServers(path string, log *logrus.Logger) *Servers {
	return &Servers{log: log, path: path, servers: make(map[string]netip.AddrPort)}
}

// Load replaces the servers of the store with the ones in its file and returns how many were loaded. Entries
// with an invalid address are skipped.
func (s *Servers) Load() int {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	} else if err != nil {
		s.log.Errorf("unable to read %s: %v", s.path, err)
		return 0
	}
	records := make(map[string]serverRecord)
	if err := toml.Unmarshal(data, &records); err != nil {
		s.log.Errorf("unable to load %s: %v", s.path, err)
		return 0
	}

	servers := make(map[string]netip.AddrPort, len(records))
	for name, r := range records {
		addr, err := netip.ParseAddrPort(r.Address)
		if err != nil {
			s.log.Errorf("server %s has an invalid address %q: %v", name, r.Address, err)
			continue
		}
		servers[name] = addr
	}

	s.mu.Lock()
	s.servers = servers
	s.mu.Unlock()
	return len(servers)
}

// ParseAddress parses an address in the form ip:port.
func ParseAddress(address string) (netip.AddrPort, error) {
	addr, err := netip.ParseAddrPort(strings.TrimSpace(address))
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("invalid address %q, expected ip:port", address)
	}
	return addr, nil
}

// Add registers a server under the name passed, replacing any server with the same name, and persists the
// store.
func (s *Servers) Add(name string, addr netip.AddrPort) {
	s.mu.Lock()
	s.servers[name] = addr
	s.mu.Unlock()
	s.save()
}

// Remove removes the server with the name passed and persists the store. False is returned if no server had
// the name.
func (s *Servers) Remove(name string) bool {
	s.mu.Lock()
	_, ok := s.servers[name]
	delete(s.servers, name)
	s.mu.Unlock()

	if ok {
		s.save()
	}
	return ok
}

// Has returns true if a server with the name passed is registered.
func (s *Servers) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.servers[name]
	return ok
}

// All returns every server, ordered by name.
func (s *Servers) All() []Server {
	s.mu.RLock()
	all := make([]Server, 0, len(s.servers))
	for name, addr := range s.servers {
		all = append(all, Server{Name: name, Address: addr})
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b Server) int {
		return strings.Compare(a.Name, b.Name)
	})
	return all
}

// Len returns the amount of servers registered.
func (s *Servers) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.servers)
}

func (s *Servers) save() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	records := make(map[string]serverRecord)
	for _, srv := range s.All() {
		records[srv.Name] = serverRecord{Address: srv.Address.String()}
	}
	data, err := toml.Marshal(records)
	if err != nil {
		s.log.Errorf("unable to encode servers: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		s.log.Errorf("unable to create %s: %v", filepath.Dir(s.path), err)
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		s.log.Errorf("unable to write %s: %v", s.path, err)
	}
}
