package session_test

import (
	"errors"
	"io"
	"testing"

	"github.com/oomph-ac/presence/session"
	"github.com/oomph-ac/presence/session/sessiontest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSendKeepsPartialSequence(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard

	s := sessiontest.New("Steve", 767)
	session.Send(log, s, func(int32) ([][]byte, error) {
		return [][]byte{{0x01}, {0x02}}, errors.New("third packet failed")
	})
	require.Equal(t, []byte{0x01, 0x02}, s.PacketIDs())
}

func TestBroadcastEncodesOncePerVersion(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard

	a, b, c := sessiontest.New("a", 766), sessiontest.New("b", 767), sessiontest.New("c", 767)
	calls := map[int32]int{}
	session.Broadcast(log, sessiontest.Provider(a, b, c), func(version int32) ([][]byte, error) {
		calls[version]++
		return [][]byte{{byte(version - 700)}}, nil
	})
	require.Equal(t, map[int32]int{766: 1, 767: 1}, calls)
	require.Equal(t, []byte{66}, a.PacketIDs())
	require.Equal(t, []byte{67}, b.PacketIDs())
	require.Equal(t, []byte{67}, c.PacketIDs())
}
