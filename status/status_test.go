package status

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/oomph-ac/presence/oerror"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

// fakeServer accepts connections, reads the handshake and status request and answers with the packet id
// and JSON passed.
func fakeServer(t *testing.T, id int32, json string) netip.AddrPort {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				r := bufio.NewReader(conn)
				for i := 0; i < 2; i++ {
					n, err := readVarInt(r)
					if err != nil {
						return
					}
					if _, err := io.CopyN(io.Discard, r, int64(n)); err != nil {
						return
					}
				}
				var body bytes.Buffer
				_, _ = pk.VarInt(id).WriteTo(&body)
				_, _ = pk.String(json).WriteTo(&body)
				_ = writeFrame(conn, body.Bytes())
			}()
		}
	}()
	return netip.MustParseAddrPort(l.Addr().String())
}

// unreachable is an address in TEST-NET-1, which is never routed: connecting to it either hangs until the
// timeout or fails at once.
var unreachable = netip.MustParseAddrPort("192.0.2.1:25565")

// silentServer accepts connections at the TCP level but never answers.
func silentServer(t *testing.T) netip.AddrPort {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return netip.MustParseAddrPort(l.Addr().String())
}

func TestReadVarInt(t *testing.T) {
	for _, v := range []int32{0, 1, 127, 128, 255, 25565, 2097151, 2147483647, -1} {
		var buf bytes.Buffer
		_, err := pk.VarInt(v).WriteTo(&buf)
		require.NoError(t, err)
		got, err := readVarInt(&buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	_, err := readVarInt(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}))
	require.True(t, errors.Is(err, oerror.ErrMalformedVarInt))

	_, err = readVarInt(bytes.NewReader([]byte{0x80}))
	require.ErrorIs(t, err, io.EOF)
}

func TestWriteStatusRequest(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStatusRequest(&buf, netip.MustParseAddrPort("127.0.0.1:25565")))

	want := []byte{19, 0x00, 0xff, 0xff, 0xff, 0xff, 0x0f, 9}
	want = append(want, "127.0.0.1"...)
	want = append(want, 0x63, 0xdd, 0x01)
	want = append(want, 0x01, 0x00)
	require.Equal(t, want, buf.Bytes())
}

func TestPingOnline(t *testing.T) {
	addr := fakeServer(t, 0x00, `{"version":{"name":"1.21","protocol":767},"players":{"max":20,"online":3}}`)
	st, err := Ping(context.Background(), addr, time.Second)
	require.NoError(t, err)
	require.Equal(t, Status{Online: true, Players: 3, Max: 20}, st)
}

func TestPingMismatchedTag(t *testing.T) {
	addr := fakeServer(t, 0x05, `{"players":{"max":20,"online":3}}`)
	st, err := Ping(context.Background(), addr, time.Second)
	require.ErrorIs(t, err, oerror.ErrUnexpectedPacket)
	require.Equal(t, Offline, st)
}

func TestPingMissingPlayers(t *testing.T) {
	addr := fakeServer(t, 0x00, `{"description":"hi"}`)
	_, err := Ping(context.Background(), addr, time.Second)
	require.ErrorIs(t, err, oerror.ErrMalformedStatus)
}

func TestParseStatusCounts(t *testing.T) {
	for _, data := range []string{
		`{"players":{"online":-5,"max":20}}`,
		`{"players":{"online":2.5,"max":20}}`,
		`{"players":{"online":3,"max":-1}}`,
		`{"players":{"online":3,"max":4294967296}}`,
		`{"players":{"online":"3","max":20}}`,
	} {
		st, err := parseStatus([]byte(data))
		require.ErrorIs(t, err, oerror.ErrMalformedStatus, data)
		require.Equal(t, Offline, st, data)
	}

	st, err := parseStatus([]byte(`{"players":{"online":0,"max":4294967295}}`))
	require.NoError(t, err)
	require.Equal(t, Status{Online: true, Players: 0, Max: 4294967295}, st)
}

func TestPingNegativeCountIsOffline(t *testing.T) {
	addr := fakeServer(t, 0x00, `{"players":{"max":20,"online":-5}}`)
	st, err := Ping(context.Background(), addr, time.Second)
	require.ErrorIs(t, err, oerror.ErrMalformedStatus)
	require.Equal(t, Offline, st)
}

func TestPollerMismatchedTagIsOffline(t *testing.T) {
	servers := NewServers(filepath.Join(t.TempDir(), "servers.toml"), testLogger())
	servers.Add("bad", fakeServer(t, 0x05, `{"players":{"max":20,"online":3}}`))
	snapshot := NewSnapshot()

	statuses := NewPoller(PollerConfig{Timeout: time.Second, Log: testLogger()}, servers, snapshot).Poll(context.Background())
	require.Equal(t, Offline, statuses["bad"])
	require.Equal(t, Offline, snapshot.Get("bad"))
}

func TestPollerSilentServerBounded(t *testing.T) {
	servers := NewServers(filepath.Join(t.TempDir(), "servers.toml"), testLogger())
	servers.Add("good", fakeServer(t, 0x00, `{"players":{"max":50,"online":7}}`))
	servers.Add("silent", silentServer(t))
	snapshot := NewSnapshot()

	var published map[string]Status
	conf := PollerConfig{
		Timeout: 300 * time.Millisecond,
		Log:     testLogger(),
		Publish: func(statuses map[string]Status) { published = statuses },
	}
	start := time.Now()
	NewPoller(conf, servers, snapshot).Poll(context.Background())
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second)
	require.Equal(t, Status{Online: true, Players: 7, Max: 50}, snapshot.Get("good"))
	require.Equal(t, Offline, snapshot.Get("silent"))
	require.Len(t, published, 2)
}

func TestPollerUnreachableServerBounded(t *testing.T) {
	servers := NewServers(filepath.Join(t.TempDir(), "servers.toml"), testLogger())
	servers.Add("good", fakeServer(t, 0x00, `{"players":{"max":50,"online":7}}`))
	servers.Add("unreachable", unreachable)
	snapshot := NewSnapshot()

	timeout := 300 * time.Millisecond
	start := time.Now()
	statuses := NewPoller(PollerConfig{Timeout: timeout, Log: testLogger()}, servers, snapshot).Poll(context.Background())
	elapsed := time.Since(start)

	assert.Less(t, elapsed, timeout+time.Second)
	require.Equal(t, Status{Online: true, Players: 7, Max: 50}, statuses["good"])
	require.Equal(t, Offline, statuses["unreachable"])
	require.Equal(t, Offline, snapshot.Get("unreachable"))
}

func TestPollerRestartAfterCancel(t *testing.T) {
	servers := NewServers(filepath.Join(t.TempDir(), "servers.toml"), testLogger())
	servers.Add("silent", silentServer(t))
	polls := atomic.NewInt32(0)
	p := NewPoller(PollerConfig{
		Interval: time.Hour,
		Timeout:  100 * time.Millisecond,
		Log:      testLogger(),
		Publish:  func(map[string]Status) { polls.Inc() },
	}, servers, NewSnapshot())

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, p.Start(ctx))
	require.Eventually(t, func() bool { return polls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.Eventually(t, func() bool { return !p.Running() }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	require.True(t, p.Start(ctx), "a stopped poller starts again")
	require.Eventually(t, func() bool { return polls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestPollerStartOnce(t *testing.T) {
	servers := NewServers(filepath.Join(t.TempDir(), "servers.toml"), testLogger())
	polls := atomic.NewInt32(0)
	p := NewPoller(PollerConfig{
		Interval: time.Hour,
		Timeout:  100 * time.Millisecond,
		Log:      testLogger(),
		Publish:  func(map[string]Status) { polls.Inc() },
	}, servers, NewSnapshot())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.False(t, p.Start(ctx), "dormant without servers")
	require.False(t, p.Running())

	servers.Add("silent", silentServer(t))
	require.True(t, p.Start(ctx))
	require.False(t, p.Start(ctx))
	require.True(t, p.Running())

	require.Eventually(t, func() bool { return polls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSnapshotReplace(t *testing.T) {
	s := NewSnapshot()
	require.Equal(t, Offline, s.Get("lobby"))

	s.Replace(map[string]Status{"lobby": {Online: true, Players: 1, Max: 2}})
	require.True(t, s.Get("lobby").Online)

	s.Replace(map[string]Status{"other": {Online: true}})
	require.Equal(t, Offline, s.Get("lobby"), "replaced, not merged")
	require.Len(t, s.All(), 1)
}

func TestServersPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.toml")
	s := NewServers(path, testLogger())
	s.Add("lobby", netip.MustParseAddrPort("10.0.0.1:25565"))
	s.Add("arena", netip.MustParseAddrPort("10.0.0.2:25566"))
	require.True(t, s.Remove("arena"))
	require.False(t, s.Remove("arena"))

	loaded := NewServers(path, testLogger())
	require.Equal(t, 1, loaded.Load())
	require.True(t, loaded.Has("lobby"))
	require.Equal(t, []Server{{Name: "lobby", Address: netip.MustParseAddrPort("10.0.0.1:25565")}}, loaded.All())
}

func TestServersSkipInvalidAddress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.toml")
	data := "[lobby]\naddress = \"10.0.0.1:25565\"\n\n[broken]\naddress = \"not an address\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	s := NewServers(path, testLogger())
	require.Equal(t, 1, s.Load())
	require.False(t, s.Has("broken"))
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("127.0.0.1:25565")
	require.NoError(t, err)
	require.Equal(t, uint16(25565), addr.Port())

	_, err = ParseAddress("localhost")
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	online := Resolve("{status} {online}/{max}", Status{Online: true, Players: 3, Max: 20})
	require.Equal(t, onlineText+" 3/20", online)

	offline := Resolve("{status} {online}/{max}", Status{Players: 3, Max: 20})
	require.Equal(t, offlineText+" 0/0", offline)

	require.Equal(t, "Join the lobby", Resolve("Join the lobby", Status{Online: true}))
}

func TestResolverFastPath(t *testing.T) {
	// A nil snapshot would panic if it were looked up.
	r := Resolver{}
	require.Equal(t, "plain text", r.Render("plain text", "lobby"))

	r.Snapshot = NewSnapshot()
	require.Equal(t, offlineText+" 0/0", r.Render("{status} {online}/{max}", "unknown"))
}

func TestHasPlaceholders(t *testing.T) {
	require.True(t, HasPlaceholders("players: {online}"))
	require.False(t, HasPlaceholders("{unknown}"))
	require.False(t, HasPlaceholders("plain"))
}
