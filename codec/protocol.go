package codec

import (
	"fmt"
	"slices"

	"github.com/oomph-ac/presence/oerror"
	"github.com/sasha-s/go-deadlock"
)

// Protocol holds everything about a protocol version that the codec needs to know: the ids of the
// clientbound play packets it writes, the entity type ids it spawns and the metadata value type ids.
type Protocol struct {
	// Name is a human readable name of the game versions using the protocol.
	Name string

	SpawnEntity      int32
	RemoveEntities   int32
	PlayerInfoRemove int32
	PlayerInfoUpdate int32
	HeadRotation     int32
	EntityRotation   int32
	EntityMetadata   int32
	Teams            int32
	PluginMessage    int32

	PlayerType     int32
	ArmorStandType int32

	MetaByte         int32
	MetaOptionalText int32
	MetaBoolean      int32

	// TeamRulesAsEnum is true if the name tag visibility and collision rule of a team are written as
	// varint enums rather than strings.
	TeamRulesAsEnum bool
}

// Player info update actions.
const (
	PlayerInfoAddPlayer    = 0x01
	PlayerInfoUpdateListed = 0x08
)

// protocol1_21 is shared by 1.20.5, 1.20.6, 1.21 and 1.21.1.
var protocol1_21 = Protocol{
	Name: "1.20.5-1.21.1",

	SpawnEntity:      0x01,
	PluginMessage:    0x19,
	EntityRotation:   0x30,
	PlayerInfoRemove: 0x3d,
	PlayerInfoUpdate: 0x3e,
	RemoveEntities:   0x42,
	HeadRotation:     0x48,
	EntityMetadata:   0x58,
	Teams:            0x60,

	PlayerType:     128,
	ArmorStandType: 3,

	MetaByte:         0,
	MetaOptionalText: 6,
	MetaBoolean:      8,
}

var (
	protocolMu deadlock.RWMutex
	protocols  = map[int32]Protocol{
		766: protocol1_21,
		767: protocol1_21,
	}
)

// RegisterProtocol registers the packet table for a protocol version, replacing any table previously
// registered for it.
func RegisterProtocol(version int32, p Protocol) {
	protocolMu.Lock()
	defer protocolMu.Unlock()
	protocols[version] = p
}

// ProtocolFor returns the packet table for the protocol version passed.
func ProtocolFor(version int32) (Protocol, error) {
	protocolMu.RLock()
	defer protocolMu.RUnlock()
	p, ok := protocols[version]
	if !ok {
		return Protocol{}, fmt.Errorf("protocol %d: %w", version, oerror.ErrUnsupportedProtocol)
	}
	return p, nil
}

// Versions returns all protocol versions with a registered packet table, in ascending order.
func Versions() []int32 {
	protocolMu.RLock()
	defer protocolMu.RUnlock()
	versions := make([]int32, 0, len(protocols))
	for v := range protocols {
		versions = append(versions, v)
	}
	slices.Sort(versions)
	return versions
}
