package codec

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oomph-ac/presence/entity"
	"github.com/oomph-ac/presence/game"
)

// Renderer renders the text of a label belonging to a proxy linked to the server passed.
type Renderer interface {
	Render(text, server string) string
}

// Encoder turns proxies into the packets a client needs to see them. Encoder holds no mutable state and may
// be used concurrently.
type Encoder struct {
	// Renderer renders label text of linked proxies. If nil, labels are sent as they are.
	Renderer Renderer
}

// sequence collects the packets of a sequence until the first encoding error.
type sequence struct {
	packets [][]byte
	err     error
}

func (s *sequence) add(b []byte, err error) bool {
	if s.err != nil {
		return false
	}
	if err != nil {
		s.err = err
		return false
	}
	s.packets = append(s.packets, b)
	return true
}

// Spawn returns the full packet sequence that makes the proxy and its labels appear for a session on the
// protocol version passed. If a packet fails to encode, the packets encoded before it are returned together
// with the error, and the rest of the sequence is dropped.
func (e Encoder) Spawn(p entity.Proxy, version int32) ([][]byte, error) {
	proto, err := ProtocolFor(version)
	if err != nil {
		return nil, err
	}
	yaw := game.AngleByte(p.Location.Yaw)

	s := &sequence{}
	_ = s.add(PlayerInfoAdd(proto, p)) &&
		s.add(SpawnPlayer(proto, p)) &&
		s.add(HeadRotation(proto, p.Handle, yaw)) &&
		s.add(SkinLayers(proto, p.Handle)) &&
		s.add(HideNameTag(proto, p)) &&
		s.labels(e, proto, p)
	return s.packets, s.err
}

// SpawnLabels returns the packets that spawn every label of the proxy.
func (e Encoder) SpawnLabels(p entity.Proxy, version int32) ([][]byte, error) {
	proto, err := ProtocolFor(version)
	if err != nil {
		return nil, err
	}
	s := &sequence{}
	s.labels(e, proto, p)
	return s.packets, s.err
}

func (s *sequence) labels(e Encoder, proto Protocol, p entity.Proxy) bool {
	for i, l := range p.Labels {
		y := entity.LabelY(p.Location.Y, i, len(p.Labels))
		if !s.add(SpawnLabel(proto, l.Handle, mgl64.Vec3{p.Location.X, y, p.Location.Z})) ||
			!s.add(LabelMetadata(proto, l.Handle, e.text(p, l.Text))) {
			return false
		}
	}
	return true
}

// text returns the text shown for a label of the proxy.
func (e Encoder) text(p entity.Proxy, text string) string {
	if e.Renderer == nil || !p.Linked() {
		return text
	}
	return e.Renderer.Render(text, p.Server)
}

// Despawn returns the packets that remove the proxy, all of its labels, its player info entry and the team
// hiding its name tag.
func (e Encoder) Despawn(p entity.Proxy, version int32) ([][]byte, error) {
	proto, err := ProtocolFor(version)
	if err != nil {
		return nil, err
	}
	s := &sequence{}
	_ = s.add(RemoveEntities(proto, append([]int32{p.Handle}, p.LabelHandles()...)...)) &&
		s.add(PlayerInfoRemove(proto, p.UUID)) &&
		s.add(RemoveNameTagTeam(proto, p.Handle))
	return s.packets, s.err
}

// DespawnLabels returns the packet that removes every label of the proxy. Nil is returned if the proxy has
// no labels.
func (e Encoder) DespawnLabels(p entity.Proxy, version int32) ([][]byte, error) {
	if len(p.Labels) == 0 {
		return nil, nil
	}
	proto, err := ProtocolFor(version)
	if err != nil {
		return nil, err
	}
	b, err := RemoveEntities(proto, p.LabelHandles()...)
	if err != nil {
		return nil, err
	}
	return [][]byte{b}, nil
}

// LookAt returns the packets that turn the head and body of the proxy towards the feet position passed.
func (e Encoder) LookAt(p entity.Proxy, target mgl64.Vec3, version int32) ([][]byte, error) {
	proto, err := ProtocolFor(version)
	if err != nil {
		return nil, err
	}
	yaw, pitch := game.LookAt(p.Location.Position(), target)
	yawByte, pitchByte := game.AngleByte(yaw), game.AngleByte(pitch)

	s := &sequence{}
	_ = s.add(HeadRotation(proto, p.Handle, yawByte)) &&
		s.add(EntityRotation(proto, p.Handle, yawByte, pitchByte))
	return s.packets, s.err
}

// RefreshLabels returns metadata-only updates for the labels of the proxy that contain text for which
// refresh returns true. Nothing is respawned.
func (e Encoder) RefreshLabels(p entity.Proxy, version int32, refresh func(text string) bool) ([][]byte, error) {
	proto, err := ProtocolFor(version)
	if err != nil {
		return nil, err
	}
	s := &sequence{}
	for _, l := range p.Labels {
		if refresh != nil && !refresh(l.Text) {
			continue
		}
		if !s.add(LabelText(proto, l.Handle, e.text(p, l.Text))) {
			break
		}
	}
	return s.packets, s.err
}

// Transfer returns the plugin message instructing the proxy layer in front of the host to move the session
// to the server passed.
func (e Encoder) Transfer(channel, server string, version int32) ([][]byte, error) {
	proto, err := ProtocolFor(version)
	if err != nil {
		return nil, err
	}
	b, err := PluginMessage(proto, channel, []byte(server))
	if err != nil {
		return nil, err
	}
	return [][]byte{b}, nil
}

// PlayerInfoAdd adds the proxy to the player list of the client with its skin, without listing it in the
// tab list. The skin textures stay known to the client for as long as the entry exists.
func PlayerInfoAdd(proto Protocol, p entity.Proxy) ([]byte, error) {
	w := NewWriter(proto.PlayerInfoUpdate)
	w.Byte(PlayerInfoAddPlayer | PlayerInfoUpdateListed)
	w.VarInt(1)
	w.UUID(p.UUID)

	w.String(p.Name)
	if p.Skin != nil {
		w.VarInt(1)
		w.String("textures")
		w.String(p.Skin.Textures)
		w.Bool(true)
		w.String(p.Skin.Signature)
	} else {
		w.VarInt(0)
	}
	w.Bool(false)
	return w.Bytes()
}

// PlayerInfoRemove removes player list entries.
func PlayerInfoRemove(proto Protocol, ids ...uuid.UUID) ([]byte, error) {
	w := NewWriter(proto.PlayerInfoRemove)
	w.VarInt(int32(len(ids)))
	for _, id := range ids {
		w.UUID(id)
	}
	return w.Bytes()
}

// SpawnPlayer spawns the player entity of the proxy at its location.
func SpawnPlayer(proto Protocol, p entity.Proxy) ([]byte, error) {
	yaw := game.AngleByte(p.Location.Yaw)
	return spawnEntity(proto, p.Handle, p.UUID, proto.PlayerType, p.Location.Position(), game.AngleByte(p.Location.Pitch), yaw, yaw)
}

// SpawnLabel spawns the armor stand carrying a label at the position passed.
func SpawnLabel(proto Protocol, handle int32, pos mgl64.Vec3) ([]byte, error) {
	return spawnEntity(proto, handle, entity.LabelIdentity(handle), proto.ArmorStandType, pos, 0, 0, 0)
}

func spawnEntity(proto Protocol, handle int32, id uuid.UUID, typ int32, pos mgl64.Vec3, pitch, yaw, headYaw byte) ([]byte, error) {
	w := NewWriter(proto.SpawnEntity)
	w.VarInt(handle)
	w.UUID(id)
	w.VarInt(typ)
	w.Double(pos.X())
	w.Double(pos.Y())
	w.Double(pos.Z())
	w.Byte(pitch)
	w.Byte(yaw)
	w.Byte(headYaw)
	w.VarInt(0)
	w.Short(0)
	w.Short(0)
	w.Short(0)
	return w.Bytes()
}

// HeadRotation sets the head yaw of an entity.
func HeadRotation(proto Protocol, handle int32, yaw byte) ([]byte, error) {
	w := NewWriter(proto.HeadRotation)
	w.VarInt(handle)
	w.Byte(yaw)
	return w.Bytes()
}

// EntityRotation sets the body yaw and the pitch of an entity.
func EntityRotation(proto Protocol, handle int32, yaw, pitch byte) ([]byte, error) {
	w := NewWriter(proto.EntityRotation)
	w.VarInt(handle)
	w.Byte(yaw)
	w.Byte(pitch)
	w.Bool(true)
	return w.Bytes()
}

// SkinLayers shows every skin layer of the player entity with the handle passed.
func SkinLayers(proto Protocol, handle int32) ([]byte, error) {
	return EntityMetadata(proto, handle, NewMetadata(proto).Byte(entity.DataKeySkinParts, entity.SkinPartsAll))
}

// LabelMetadata makes the armor stand with the handle passed an invisible marker showing text.
func LabelMetadata(proto Protocol, handle int32, text string) ([]byte, error) {
	return EntityMetadata(proto, handle, NewMetadata(proto).
		Byte(entity.DataKeyFlags, entity.DataFlagInvisible).
		OptionalText(entity.DataKeyCustomName, text).
		Bool(entity.DataKeyNameVisible, true).
		Bool(entity.DataKeyNoGravity, true).
		Byte(entity.DataKeyArmorStandFlags, entity.DataFlagMarker),
	)
}

// LabelText changes only the text of the label with the handle passed.
func LabelText(proto Protocol, handle int32, text string) ([]byte, error) {
	return EntityMetadata(proto, handle, NewMetadata(proto).OptionalText(entity.DataKeyCustomName, text))
}

// EntityMetadata writes metadata entries of an entity.
func EntityMetadata(proto Protocol, handle int32, m *Metadata) ([]byte, error) {
	w := NewWriter(proto.EntityMetadata)
	w.VarInt(handle)
	w.Field(m)
	return w.Bytes()
}

// RemoveEntities removes the entities with the handles passed.
func RemoveEntities(proto Protocol, handles ...int32) ([]byte, error) {
	w := NewWriter(proto.RemoveEntities)
	w.VarInt(int32(len(handles)))
	for _, h := range handles {
		w.VarInt(h)
	}
	return w.Bytes()
}

// HideNameTag puts the proxy in a team of its own that never shows name tags.
func HideNameTag(proto Protocol, p entity.Proxy) ([]byte, error) {
	return NewTeamBuilder(proto).
		Name(TeamName(p.Handle)).
		Mode(TeamModeCreate).
		DisplayName("").
		FriendlyFlags(0).
		NameTagVisibility(RuleNever).
		CollisionRule(RuleNever).
		Colour(TeamColourReset).
		Prefix("").
		Suffix("").
		Members(p.Name).
		Build()
}

// RemoveNameTagTeam removes the team created by HideNameTag for the proxy with the handle passed.
func RemoveNameTagTeam(proto Protocol, handle int32) ([]byte, error) {
	return NewTeamBuilder(proto).
		Name(TeamName(handle)).
		Mode(TeamModeRemove).
		Build()
}

// PluginMessage writes a custom payload on the channel passed.
func PluginMessage(proto Protocol, channel string, data []byte) ([]byte, error) {
	w := NewWriter(proto.PluginMessage)
	w.String(channel)
	w.Raw(data)
	return w.Bytes()
}
