package status

import (
	"strconv"
	"strings"

	"github.com/sandertv/gophertunnel/minecraft/text"
)

// Placeholders recognised in label text.
const (
	PlaceholderStatus  = "{status}"
	PlaceholderOnline  = "{online}"
	PlaceholderMax     = "{max}"
	placeholderOpening = "{"
)

var (
	onlineText  = text.Colourf("<green>Online</green>")
	offlineText = text.Colourf("<red>Offline</red>")
)

// HasPlaceholders returns true if the text contains any placeholder.
func HasPlaceholders(t string) bool {
	return strings.Contains(t, PlaceholderStatus) ||
		strings.Contains(t, PlaceholderOnline) ||
		strings.Contains(t, PlaceholderMax)
}

// Resolve substitutes the placeholders in t with the status passed. Player counts of offline servers are
// shown as 0.
func Resolve(t string, st Status) string {
	if !strings.Contains(t, placeholderOpening) {
		return t
	}
	state, online, max := offlineText, "0", "0"
	if st.Online {
		state = onlineText
		online, max = strconv.FormatUint(uint64(st.Players), 10), strconv.FormatUint(uint64(st.Max), 10)
	}
	return strings.NewReplacer(
		PlaceholderStatus, state,
		PlaceholderOnline, online,
		PlaceholderMax, max,
	).Replace(t)
}

// Resolver renders label text of proxies using the statuses of a snapshot.
type Resolver struct {
	Snapshot *Snapshot
}

// Render resolves the placeholders in t with the status of the server passed. Text without placeholders is
// returned without looking up the server.
func (r Resolver) Render(t, server string) string {
	if !strings.Contains(t, placeholderOpening) {
		return t
	}
	return Resolve(t, r.Snapshot.Get(server))
}
