package handler

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/presence/codec"
	"github.com/oomph-ac/presence/entity"
	"github.com/oomph-ac/presence/game"
	"github.com/oomph-ac/presence/registry"
	"github.com/oomph-ac/presence/session"
	"github.com/oomph-ac/presence/status"
	"github.com/sirupsen/logrus"
)

// DefaultFacingRange is the default horizontal distance within which proxies turn towards moving players.
const DefaultFacingRange = 32

// DefaultTransferChannel is the default plugin message channel transfers are sent on.
const DefaultTransferChannel = "gourd:transfer"

// Action is the kind of interaction of a player with an entity.
type Action int

const (
	// ActionInteract is a use of the entity, usually a right click.
	ActionInteract Action = iota
	// ActionAttack is an attack on the entity.
	ActionAttack
)

// Config holds everything a Handler needs.
type Config struct {
	Log      *logrus.Logger
	Registry *registry.Registry
	Encoder  codec.Encoder
	Sessions session.Provider

	FacingRange     float64
	TransferChannel string
}

// Handler reacts to events of the host and keeps the view of proxies of every session up to date.
type Handler struct {
	conf Config
}

// New returns a Handler using the config passed. Zero values are replaced with defaults.
func New(conf Config) *Handler {
	if conf.FacingRange <= 0 {
		conf.FacingRange = DefaultFacingRange
	}
	if conf.TransferChannel == "" {
		conf.TransferChannel = DefaultTransferChannel
	}
	if conf.Log == nil {
		conf.Log = logrus.StandardLogger()
	}
	return &Handler{conf: conf}
}

// HandleJoin spawns every proxy for a session that just joined.
func (h *Handler) HandleJoin(s session.Session) {
	for _, p := range h.conf.Registry.All() {
		session.Send(h.conf.Log, s, func(version int32) ([][]byte, error) {
			return h.conf.Encoder.Spawn(p, version)
		})
	}
}

// HandleMove turns every proxy facing nearby players within range of the new position of the player towards
// it. Only the session that moved is sent the new rotation.
func (h *Handler) HandleMove(s session.Session, to mgl64.Vec3) {
	r := h.conf.FacingRange * h.conf.FacingRange
	for _, p := range h.conf.Registry.LookAtNearest() {
		if game.HorizontalDistSqr(p.Location.Position(), to) > r {
			continue
		}
		session.Send(h.conf.Log, s, func(version int32) ([][]byte, error) {
			return h.conf.Encoder.LookAt(p, to, version)
		})
	}
}

// HandleInteract handles an interaction of a player with an entity unknown to the host. If the entity is a
// proxy linked to a server, the player is sent there and true is returned.
func (h *Handler) HandleInteract(s session.Session, handle int32, action Action) bool {
	if action != ActionInteract {
		return false
	}
	p, ok := h.conf.Registry.ByHandle(handle)
	if !ok || !p.Linked() {
		return false
	}
	h.conf.Log.Infof("transferring %s to %s through npc %d", s.Name(), p.Server, p.ID)
	session.Send(h.conf.Log, s, func(version int32) ([][]byte, error) {
		return h.conf.Encoder.Transfer(h.conf.TransferChannel, p.Server, version)
	})
	return true
}

// HandlePublish updates the labels with placeholders of every linked proxy for every session, after the
// status of the remote servers changed. Labels are updated in place and never respawned.
func (h *Handler) HandlePublish(map[string]status.Status) {
	for _, p := range h.conf.Registry.Linked() {
		if !slices.ContainsFunc(p.Labels, func(l entity.Label) bool { return status.HasPlaceholders(l.Text) }) {
			continue
		}
		session.Broadcast(h.conf.Log, h.conf.Sessions, func(version int32) ([][]byte, error) {
			return h.conf.Encoder.RefreshLabels(p, version, status.HasPlaceholders)
		})
	}
}

// Spawn spawns a proxy for every session.
func (h *Handler) Spawn(p entity.Proxy) {
	session.Broadcast(h.conf.Log, h.conf.Sessions, func(version int32) ([][]byte, error) {
		return h.conf.Encoder.Spawn(p, version)
	})
}

// Despawn removes a proxy from every session.
func (h *Handler) Despawn(p entity.Proxy) {
	session.Broadcast(h.conf.Log, h.conf.Sessions, func(version int32) ([][]byte, error) {
		return h.conf.Encoder.Despawn(p, version)
	})
}

// Relabel replaces the labels of a proxy as shown by every session: the labels of old are removed and the
// labels of updated are spawned.
func (h *Handler) Relabel(old, updated entity.Proxy) {
	session.Broadcast(h.conf.Log, h.conf.Sessions, func(version int32) ([][]byte, error) {
		despawn, err := h.conf.Encoder.DespawnLabels(old, version)
		if err != nil {
			return despawn, err
		}
		spawn, err := h.conf.Encoder.SpawnLabels(updated, version)
		return append(despawn, spawn...), err
	})
}

// Target returns the proxy the player of the session is looking at.
func (h *Handler) Target(s session.Session, c game.Crosshair) (entity.Proxy, bool) {
	proxies := h.conf.Registry.All()
	candidates := make([]mgl64.Vec3, 0, len(proxies))
	for _, p := range proxies {
		candidates = append(candidates, p.Location.Position())
	}
	rot := s.Rotation()
	i, ok := c.Pick(s.Position(), float32(rot.Yaw()), float32(rot.Pitch()), candidates)
	if !ok {
		return entity.Proxy{}, false
	}
	return proxies[i], true
}
