package registry

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/oomph-ac/presence/entity"
	"github.com/pelletier/go-toml"
)

// file is the layout of npcs.toml. Runtime fields of proxies are never written.
type file struct {
	NPCs []record `toml:"npcs,omitempty"`
}

type record struct {
	ID            uint32     `toml:"id"`
	Name          string     `toml:"name"`
	Location      location   `toml:"location"`
	Skin          *skin      `toml:"skin,omitempty"`
	LookAtNearest bool       `toml:"look_at_nearest"`
	Holograms     []hologram `toml:"holograms,omitempty"`
	Server        string     `toml:"server,omitempty"`
}

type location struct {
	X     float64 `toml:"x"`
	Y     float64 `toml:"y"`
	Z     float64 `toml:"z"`
	Yaw   float32 `toml:"yaw"`
	Pitch float32 `toml:"pitch"`
}

type skin struct {
	Textures  string `toml:"textures"`
	Signature string `toml:"signature"`
}

type hologram struct {
	Text string `toml:"text"`
}

// Encode returns the persisted form of the proxies passed, ordered by id.
func Encode(proxies []entity.Proxy) ([]byte, error) {
	f := file{NPCs: make([]record, 0, len(proxies))}
	for _, p := range proxies {
		f.NPCs = append(f.NPCs, toRecord(p))
	}
	slices.SortFunc(f.NPCs, func(a, b record) int {
		return cmp.Compare(a.ID, b.ID)
	})
	data, err := toml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode npcs: %w", err)
	}
	return data, nil
}

// Decode parses persisted proxies. The proxies returned have no runtime fields assigned.
func Decode(data []byte) ([]entity.Proxy, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode npcs: %w", err)
	}
	proxies := make([]entity.Proxy, 0, len(f.NPCs))
	seen := make(map[uint32]struct{}, len(f.NPCs))
	for _, r := range f.NPCs {
		if _, ok := seen[r.ID]; ok {
			return nil, fmt.Errorf("decode npcs: duplicate id %d", r.ID)
		}
		seen[r.ID] = struct{}{}
		proxies = append(proxies, fromRecord(r))
	}
	return proxies, nil
}

func toRecord(p entity.Proxy) record {
	r := record{
		ID:   p.ID,
		Name: p.Name,
		Location: location{
			X: p.Location.X, Y: p.Location.Y, Z: p.Location.Z,
			Yaw: p.Location.Yaw, Pitch: p.Location.Pitch,
		},
		LookAtNearest: p.LookAtNearest,
		Server:        p.Server,
	}
	if p.Skin != nil {
		r.Skin = &skin{Textures: p.Skin.Textures, Signature: p.Skin.Signature}
	}
	for _, l := range p.Labels {
		r.Holograms = append(r.Holograms, hologram{Text: l.Text})
	}
	return r
}

func fromRecord(r record) entity.Proxy {
	p := entity.Proxy{
		ID:   r.ID,
		Name: r.Name,
		Location: entity.Location{
			X: r.Location.X, Y: r.Location.Y, Z: r.Location.Z,
			Yaw: r.Location.Yaw, Pitch: r.Location.Pitch,
		},
		LookAtNearest: r.LookAtNearest,
		Server:        r.Server,
	}
	if r.Skin != nil {
		p.Skin = &entity.Skin{Textures: r.Skin.Textures, Signature: r.Skin.Signature}
	}
	for _, h := range r.Holograms {
		p.Labels = append(p.Labels, entity.Label{Text: h.Text})
	}
	return p
}
