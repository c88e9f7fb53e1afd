package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Hub is the in-process Sink: it fans messages out to the WebSocket
// subscribers of each channel.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscriber]struct{}
	policy Policy
	buffer int

	// ReadLimit caps inbound frame size; zero leaves the connection default.
	ReadLimit int64
}

func NewHub(policy Policy, buffer int) *Hub {
	if policy == nil {
		policy = DisconnectPolicy{}
	}
	return &Hub{
		subs:   make(map[string]map[*Subscriber]struct{}),
		policy: policy,
		buffer: buffer,
	}
}

func (h *Hub) Name() string { return "hub" }

// Attach registers conn on channel and runs its pumps until the connection
// drops or ctx is done.
func (h *Hub) Attach(ctx context.Context, channel string, conn WSConn) {
	if h.ReadLimit > 0 {
		conn.SetReadLimit(h.ReadLimit)
	}
	sub := NewSubscriber(uuid.NewString(), conn, h.buffer)
	h.add(channel, sub)

	ctx, cancel := context.WithCancel(ctx)
	// Either pump ending tears the subscriber down; closing the conn
	// unblocks the other pump.
	detach := func() {
		cancel()
		h.remove(channel, sub)
		sub.Close()
	}
	go func() {
		defer detach()
		sub.writePump(ctx)
	}()
	go func() {
		defer detach()
		sub.readPump(ctx)
	}()
}

func (h *Hub) add(channel string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[*Subscriber]struct{})
	}
	h.subs[channel][sub] = struct{}{}
	log.Info().Str("module", "broadcast.hub").Str("channel", channel).Str("sub", sub.ID).Int("subscribers", len(h.subs[channel])).Msg("subscriber attached")
}

func (h *Hub) remove(channel string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subs[channel]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subs, channel)
	}
	log.Info().Str("module", "broadcast.hub").Str("channel", channel).Str("sub", sub.ID).Msg("subscriber detached")
}

func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[channel])
}

func (h *Hub) Deliver(_ context.Context, msg Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}

	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.subs[msg.Channel]))
	for s := range h.subs[msg.Channel] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	sent := 0
	for _, s := range subs {
		if err := s.TrySend(data); err != nil {
			if h.policy.OnBackPressure(msg.Channel, s) == Disconnect {
				h.remove(msg.Channel, s)
				s.Close()
			}
			continue
		}
		sent++
	}
	log.Debug().Str("module", "broadcast.hub").Str("channel", msg.Channel).Str("event", msg.Event).Int("sent_to", sent).Int("dropped", len(subs)-sent).Msg("broadcast result")
	return nil
}
