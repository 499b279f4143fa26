package codec

import (
	"fmt"
	"strconv"
)

// Team modes.
const (
	TeamModeCreate = 0
	TeamModeRemove = 1
)

// TeamColourReset is the team colour that leaves names uncoloured.
const TeamColourReset = 21

// TeamRule is a name tag visibility or collision rule of a team.
type TeamRule struct {
	name string
	enum int32
}

var (
	// RuleAlways applies the rule to everyone.
	RuleAlways = TeamRule{name: "always", enum: 0}
	// RuleNever applies the rule to no one.
	RuleNever = TeamRule{name: "never", enum: 1}
)

// teamStep is a field of the team packet. Fields must be written in the order of the constants.
type teamStep int

const (
	stepName teamStep = iota
	stepMode
	stepDisplayName
	stepFriendlyFlags
	stepNameTagVisibility
	stepCollisionRule
	stepColour
	stepPrefix
	stepSuffix
	stepMembers
	stepDone
)

// TeamBuilder assembles the Update Teams packet field by field, as there is no structured packet type for
// it. In create mode the fields are, in order:
//
//	team name          string
//	mode               byte (0 = create)
//	display name       text component
//	friendly flags     byte
//	name tag visibility string, or varint enum when Protocol.TeamRulesAsEnum is set
//	collision rule     string, or varint enum when Protocol.TeamRulesAsEnum is set
//	colour             varint
//	prefix             text component
//	suffix             text component
//	members            varint count followed by that many strings
//
// In remove mode the packet ends after the mode.
//
// Writing a field out of order makes Build fail: a misplaced field would corrupt the stream of the session
// until it reconnects.
type TeamBuilder struct {
	proto Protocol
	w     *Writer
	next  teamStep
}

// NewTeamBuilder starts a new team packet for the protocol passed.
func NewTeamBuilder(proto Protocol) *TeamBuilder {
	return &TeamBuilder{proto: proto, w: NewWriter(proto.Teams)}
}

// step checks that s is the field expected next.
func (b *TeamBuilder) step(s teamStep) bool {
	if b.w.Err() != nil {
		return false
	}
	if s != b.next {
		b.w.Fail(fmt.Errorf("team packet: field %d written, expected field %d", s, b.next))
		return false
	}
	b.next++
	return true
}

// Name writes the unique name of the team.
func (b *TeamBuilder) Name(name string) *TeamBuilder {
	if b.step(stepName) {
		b.w.String(name)
	}
	return b
}

// Mode writes the mode of the packet.
func (b *TeamBuilder) Mode(mode byte) *TeamBuilder {
	if b.step(stepMode) {
		b.w.Byte(mode)
		if mode == TeamModeRemove {
			b.next = stepDone
		}
	}
	return b
}

// DisplayName writes the display name of the team.
func (b *TeamBuilder) DisplayName(text string) *TeamBuilder {
	if b.step(stepDisplayName) {
		b.w.Text(text)
	}
	return b
}

// FriendlyFlags writes the friendly fire flags of the team.
func (b *TeamBuilder) FriendlyFlags(flags byte) *TeamBuilder {
	if b.step(stepFriendlyFlags) {
		b.w.Byte(flags)
	}
	return b
}

// NameTagVisibility writes whose name tags are shown for members of the team.
func (b *TeamBuilder) NameTagVisibility(r TeamRule) *TeamBuilder {
	if b.step(stepNameTagVisibility) {
		b.rule(r)
	}
	return b
}

// CollisionRule writes who members of the team collide with.
func (b *TeamBuilder) CollisionRule(r TeamRule) *TeamBuilder {
	if b.step(stepCollisionRule) {
		b.rule(r)
	}
	return b
}

func (b *TeamBuilder) rule(r TeamRule) {
	if b.proto.TeamRulesAsEnum {
		b.w.VarInt(r.enum)
		return
	}
	b.w.String(r.name)
}

// Colour writes the colour of the team.
func (b *TeamBuilder) Colour(colour int32) *TeamBuilder {
	if b.step(stepColour) {
		b.w.VarInt(colour)
	}
	return b
}

// Prefix writes the text shown in front of member names.
func (b *TeamBuilder) Prefix(text string) *TeamBuilder {
	if b.step(stepPrefix) {
		b.w.Text(text)
	}
	return b
}

// Suffix writes the text shown after member names.
func (b *TeamBuilder) Suffix(text string) *TeamBuilder {
	if b.step(stepSuffix) {
		b.w.Text(text)
	}
	return b
}

// Members writes the player names that are part of the team.
func (b *TeamBuilder) Members(names ...string) *TeamBuilder {
	if b.step(stepMembers) {
		b.w.VarInt(int32(len(names)))
		for _, name := range names {
			b.w.String(name)
		}
	}
	return b
}

// Build returns the packet. It fails if a field was skipped or written out of order.
func (b *TeamBuilder) Build() ([]byte, error) {
	if b.w.Err() == nil && b.next != stepDone {
		b.w.Fail(fmt.Errorf("team packet: incomplete, next field would have been %d", b.next))
	}
	return b.w.Bytes()
}

// TeamName returns the name of the team that hides the name tag of the proxy with the runtime handle
// passed.
func TeamName(handle int32) string {
	return "npc_" + strconv.FormatInt(int64(handle), 10)
}
