package broadcast

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type natsConn interface {
	PublishMsg(m *nats.Msg) error
	Drain() error
}

// NATSSink mirrors every event to the subject "<channel>.<event>".
type NATSSink struct {
	conn natsConn
}

func DialNATS(url string) (*NATSSink, error) {
	nc, err := nats.Connect(url,
		nats.Name("jukebox"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Str("module", "broadcast.nats").Msg("disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("module", "broadcast.nats").Str("url", nc.ConnectedUrl()).Msg("reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSSink{conn: nc}, nil
}

func (s *NATSSink) Name() string { return "nats" }

func Subject(channel, event string) string { return channel + "." + event }

func natsMsg(msg Message) (*nats.Msg, error) {
	data, err := msg.Encode()
	if err != nil {
		return nil, err
	}
	return &nats.Msg{Subject: Subject(msg.Channel, msg.Event), Data: data}, nil
}

func (s *NATSSink) Deliver(_ context.Context, msg Message) error {
	m, err := natsMsg(msg)
	if err != nil {
		return err
	}
	return s.conn.PublishMsg(m)
}

func (s *NATSSink) Close() {
	if err := s.conn.Drain(); err != nil {
		log.Error().Err(err).Str("module", "broadcast.nats").Msg("drain")
	}
}
