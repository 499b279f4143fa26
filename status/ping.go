package status

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"net"
	"net/netip"
	"time"

	pk "github.com/Tnze/go-mc/net/packet"
	jsoniter "github.com/json-iterator/go"
	"github.com/oomph-ac/presence/codec"
	"github.com/oomph-ac/presence/oerror"
)

const (
	// handshakeProtocol is sent as protocol version in the handshake. Servers answer status requests for any
	// version.
	handshakeProtocol = -1
	// nextStateStatus switches the connection to the status state.
	nextStateStatus = 1
	// maxStatusLen is the largest status response accepted, in bytes.
	maxStatusLen = 1_000_000
)

// Status is the state of a remote server at the time it was last polled.
type Status struct {
	Online  bool
	Players uint32
	Max     uint32
}

// Offline is the status of a server that could not be reached or has never been polled.
var Offline = Status{}

// Ping connects to the server at the address passed and asks it for its status. The whole exchange is
// bounded by timeout. Any failure is returned as an error and should be treated as the server being offline.
func Ping(ctx context.Context, addr netip.AddrPort, timeout time.Duration) (Status, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return Offline, fmt.Errorf("dial %v: %w", addr, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := writeStatusRequest(conn, addr); err != nil {
		return Offline, err
	}
	data, err := readStatusResponse(bufio.NewReader(conn))
	if err != nil {
		return Offline, err
	}
	return parseStatus(data)
}

// writeStatusRequest writes the handshake switching to the status state followed by a status request.
func writeStatusRequest(w io.Writer, addr netip.AddrPort) error {
	hw := codec.NewWriter(0x00)
	hw.VarInt(handshakeProtocol)
	hw.String(addr.Addr().String())
	hw.Field(pk.UnsignedShort(addr.Port()))
	hw.VarInt(nextStateStatus)
	handshake, err := hw.Bytes()
	if err != nil {
		return err
	}
	if err := writeFrame(w, handshake); err != nil {
		return err
	}
	return writeFrame(w, []byte{0x00})
}

// readStatusResponse reads the frame of a status response and returns the JSON it carries.
func readStatusResponse(r *bufio.Reader) ([]byte, error) {
	if _, err := readVarInt(r); err != nil {
		return nil, fmt.Errorf("read frame length: %w", err)
	}
	id, err := readVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read packet id: %w", err)
	}
	if id != 0x00 {
		return nil, fmt.Errorf("status response has id %#x: %w", id, oerror.ErrUnexpectedPacket)
	}
	n, err := readVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read status length: %w", err)
	}
	if n <= 0 || n > maxStatusLen {
		return nil, fmt.Errorf("status length %d: %w", n, oerror.ErrMalformedStatus)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	return data, nil
}

// parseStatus reads the player counts from a status response. Counts that are missing, negative,
// fractional or beyond 32 bits make the response malformed.
func parseStatus(data []byte) (Status, error) {
	online, ok := playerCount(jsoniter.Get(data, "players", "online"))
	if !ok {
		return Offline, fmt.Errorf("players.online: %w", oerror.ErrMalformedStatus)
	}
	limit, ok := playerCount(jsoniter.Get(data, "players", "max"))
	if !ok {
		return Offline, fmt.Errorf("players.max: %w", oerror.ErrMalformedStatus)
	}
	return Status{Online: true, Players: online, Max: limit}, nil
}

func playerCount(v jsoniter.Any) (uint32, bool) {
	if v.ValueType() != jsoniter.NumberValue {
		return 0, false
	}
	f := v.ToFloat64()
	if f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
		return 0, false
	}
	return uint32(f), true
}
