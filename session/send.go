package session

import (
	"github.com/sirupsen/logrus"
)

// Encode produces the packets to send to a session on the protocol version passed.
type Encode func(version int32) ([][]byte, error)

// Send encodes packets for the session passed and queues them. Packets encoded before an error are still
// sent: a partially applied sequence is corrected on the next full resync of the session.
func Send(log *logrus.Logger, s Session, encode Encode) {
	packets, err := encode(s.Protocol())
	for _, b := range packets {
		s.WritePacket(b)
	}
	if err != nil {
		log.Errorf("unable to encode packets for %s (protocol %d): %v", s.Name(), s.Protocol(), err)
	}
}

// Broadcast sends the packets produced by encode to every session of the provider. Packets are encoded once
// per protocol version.
func Broadcast(log *logrus.Logger, p Provider, encode Encode) {
	type result struct {
		packets [][]byte
		err     error
	}
	cache := make(map[int32]result)
	for _, s := range p.Sessions() {
		version := s.Protocol()
		res, ok := cache[version]
		if !ok {
			res.packets, res.err = encode(version)
			cache[version] = res
			if res.err != nil {
				log.Errorf("unable to encode packets for protocol %d: %v", version, res.err)
			}
		}
		for _, b := range res.packets {
			s.WritePacket(b)
		}
	}
}
