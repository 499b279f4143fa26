package registry

import (
	"cmp"
	"errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/oomph-ac/presence/entity"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// Registry holds every proxy of the process and persists them to a TOML file. All methods are safe for
// concurrent use. Proxies returned by a Registry are deep copies: mutating them has no effect on the
// registry.
type Registry struct {
	log     *logrus.Logger
	path    string
	handles *entity.Handles

	mu      deadlock.RWMutex
	proxies map[uint32]entity.Proxy
	nextID  uint32

	// saveMu orders writes to the file so that a stale snapshot never overwrites a newer one.
	saveMu deadlock.Mutex
}

// New returns an empty registry persisting to the path passed. Runtime handles of proxies are allocated from
// handles.
func New(path string, handles *entity.Handles, log *logrus.Logger) *Registry {
	return &Registry{
		log:     log,
		path:    path,
		handles: handles,
		proxies: make(map[uint32]entity.Proxy),
		nextID:  1,
	}
}

// Load replaces the proxies of the registry with the ones stored in its file and returns how many were
// loaded. A missing file loads nothing. A file that cannot be read or parsed is logged and loads nothing.
func (r *Registry) Load() int {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	} else if err != nil {
		r.log.Errorf("unable to read %s: %v", r.path, err)
		return 0
	}
	proxies, err := Decode(data)
	if err != nil {
		r.log.Errorf("unable to load %s: %v", r.path, err)
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.proxies = make(map[uint32]entity.Proxy, len(proxies))
	r.nextID = 1
	for _, p := range proxies {
		p.AssignRuntime(r.handles)
		r.proxies[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return len(proxies)
}

// Create adds a new proxy with the next free id, persists the registry and returns the proxy.
func (r *Registry) Create(name string, loc entity.Location, skin *entity.Skin) entity.Proxy {
	r.mu.Lock()
	p := entity.New(r.nextID, name, loc, skin, r.handles)
	r.nextID++
	r.proxies[p.ID] = p
	p = p.Clone()
	r.mu.Unlock()

	r.save()
	return p
}

// Remove removes the proxy with the id passed and persists the registry. The proxy removed is returned, or
// false if no proxy had the id.
func (r *Registry) Remove(id uint32) (entity.Proxy, bool) {
	r.mu.Lock()
	p, ok := r.proxies[id]
	delete(r.proxies, id)
	r.mu.Unlock()

	if !ok {
		return entity.Proxy{}, false
	}
	r.save()
	return p, true
}

// Get returns the proxy with the id passed.
func (r *Registry) Get(id uint32) (entity.Proxy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.proxies[id]
	return p.Clone(), ok
}

// ByHandle returns the proxy with the runtime handle passed. Label handles do not match.
func (r *Registry) ByHandle(handle int32) (entity.Proxy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.proxies {
		if p.Handle == handle {
			return p.Clone(), true
		}
	}
	return entity.Proxy{}, false
}

// All returns every proxy, ordered by id.
func (r *Registry) All() []entity.Proxy {
	r.mu.RLock()
	all := make([]entity.Proxy, 0, len(r.proxies))
	for _, p := range r.proxies {
		all = append(all, p.Clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b entity.Proxy) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return all
}

// Len returns the amount of proxies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.proxies)
}

// Modify calls f with the proxy with the id passed while holding the registry exclusively and persists the
// registry afterwards. The value returned by f is returned, or false if no proxy had the id. f must not
// call back into the registry, and must not change the id or any runtime field of the proxy.
func (r *Registry) Modify(id uint32, f func(p *entity.Proxy) any) (any, bool) {
	r.mu.Lock()
	p, ok := r.proxies[id]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	p = p.Clone()
	v := f(&p)
	r.proxies[id] = p
	r.mu.Unlock()

	r.save()
	return v, true
}

// ToggleLookAtNearest flips whether the proxy faces nearby players and returns the new value.
func (r *Registry) ToggleLookAtNearest(id uint32) (enabled bool, ok bool) {
	v, ok := r.Modify(id, func(p *entity.Proxy) any {
		p.LookAtNearest = !p.LookAtNearest
		return p.LookAtNearest
	})
	if !ok {
		return false, false
	}
	return v.(bool), true
}

// AddLabel appends a line of text below the existing labels of the proxy. The line gets a fresh runtime
// handle. The updated proxy is returned.
func (r *Registry) AddLabel(id uint32, text string) (entity.Proxy, bool) {
	v, ok := r.Modify(id, func(p *entity.Proxy) any {
		p.Labels = append(p.Labels, entity.Label{Text: text, Handle: r.handles.Next()})
		return p.Clone()
	})
	if !ok {
		return entity.Proxy{}, false
	}
	return v.(entity.Proxy), true
}

// SetServer links the proxy to the server with the name passed. An empty name unlinks it. The updated proxy
// is returned.
func (r *Registry) SetServer(id uint32, server string) (entity.Proxy, bool) {
	v, ok := r.Modify(id, func(p *entity.Proxy) any {
		p.Server = server
		return p.Clone()
	})
	if !ok {
		return entity.Proxy{}, false
	}
	return v.(entity.Proxy), true
}

// LookAtNearest returns every proxy that faces nearby players, ordered by id.
func (r *Registry) LookAtNearest() []entity.Proxy {
	return r.filter(func(p entity.Proxy) bool { return p.LookAtNearest })
}

// Linked returns every proxy linked to a server, ordered by id.
func (r *Registry) Linked() []entity.Proxy {
	return r.filter(entity.Proxy.Linked)
}

func (r *Registry) filter(f func(p entity.Proxy) bool) []entity.Proxy {
	all := r.All()
	n := 0
	for _, p := range all {
		if f(p) {
			all[n] = p
			n++
		}
	}
	return all[:n]
}

// save writes the current state of the registry to its file. Errors are logged: the in-memory state stays
// authoritative.
func (r *Registry) save() {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	data, err := Encode(r.All())
	if err != nil {
		r.log.Errorf("unable to encode npcs: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		r.log.Errorf("unable to create %s: %v", filepath.Dir(r.path), err)
		return
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		r.log.Errorf("unable to write %s: %v", r.path, err)
	}
}
