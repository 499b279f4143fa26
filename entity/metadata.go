package entity

// Metadata indices shared by the protocol versions supported by the codec.
const (
	DataKeyFlags           = 0
	DataKeyCustomName      = 2
	DataKeyNameVisible     = 3
	DataKeyNoGravity       = 5
	DataKeyArmorStandFlags = 15
	DataKeySkinParts       = 17
)

const (
	// DataFlagInvisible is set in the entity flags of label entities.
	DataFlagInvisible = 0x20
	// DataFlagMarker gives an armor stand a zero sized bounding box.
	DataFlagMarker = 0x10
	// SkinPartsAll shows every layer of a player skin.
	SkinPartsAll = 0x7f
)

// LabelBaseOffset is the height above the feet of a proxy at which the bottom label is rendered, and
// LabelSpacing the vertical distance between two label lines.
const (
	LabelBaseOffset = 2.05
	LabelSpacing    = 0.25
)

// LabelY returns the height of label line i (0 being the top line) of a proxy standing at baseY that has
// total label lines.
func LabelY(baseY float64, i, total int) float64 {
	return baseY + LabelBaseOffset + float64(total-1-i)*LabelSpacing
}
