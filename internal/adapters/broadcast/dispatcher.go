package broadcast

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
)

var ErrQueueFull = errors.New("broadcast queue full")

// Message is the envelope delivered to every sink.
type Message struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data"`
}

func (m Message) Encode() ([]byte, error) { return json.Marshal(m) }

// Sink delivers one message somewhere. Errors are logged and dropped.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

// Dispatcher implements core.Publisher. Publish only enqueues; a single
// Run loop drains the queue, so messages reach each sink in publish order.
type Dispatcher struct {
	queue chan Message
	sinks []Sink
}

func NewDispatcher(buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{queue: make(chan Message, buffer), sinks: sinks}
}

func (d *Dispatcher) Publish(channel, event string, payload any) {
	select {
	case d.queue <- Message{Channel: channel, Event: event, Data: payload}:
	default:
		log.Warn().Err(ErrQueueFull).Str("module", "broadcast").Str("channel", channel).Str("event", event).Msg("event dropped")
	}
}

// Run delivers queued messages until ctx is done. Messages still queued at
// that point are delivered before returning.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Info().Str("module", "broadcast").Int("sinks", len(d.sinks)).Msg("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.drain()
			log.Info().Str("module", "broadcast").Msg("dispatcher stopped")
			return
		case msg := <-d.queue:
			d.deliver(ctx, msg)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case msg := <-d.queue:
			d.deliver(context.Background(), msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	for _, s := range d.sinks {
		if err := s.Deliver(ctx, msg); err != nil {
			log.Error().Err(err).Str("module", "broadcast").Str("sink", s.Name()).Str("channel", msg.Channel).Str("event", msg.Event).Msg("deliver failed")
		}
	}
}
