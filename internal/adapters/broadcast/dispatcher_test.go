package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	mu   sync.Mutex
	got  []Message
	fail bool
}

func (s *memSink) Name() string { return "mem" }

func (s *memSink) Deliver(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, msg)
	if s.fail {
		return errors.New("boom")
	}
	return nil
}

func (s *memSink) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.got...)
}

func TestDispatcher_PreservesOrder(t *testing.T) {
	failing := &memSink{fail: true}
	sink := &memSink{}
	d := NewDispatcher(64, failing, sink)

	for i := 0; i < 50; i++ {
		d.Publish("room-A", "vote-updated", i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return len(sink.messages()) == 50 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	for i, m := range sink.messages() {
		assert.Equal(t, i, m.Data)
		assert.Equal(t, "room-A", m.Channel)
	}
	assert.Len(t, failing.messages(), 50, "a failing sink does not stop delivery")
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	sink := &memSink{}
	d := NewDispatcher(2, sink)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Publish("room-A", "queue-updated", i)
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	got := sink.messages()
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Data)
	assert.Equal(t, 1, got[1].Data)
}

func TestMessage_Encode(t *testing.T) {
	data, err := Message{Channel: "room-ABC123", Event: "participant-joined", Data: map[string]int{"participantCount": 2}}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"channel":"room-ABC123","event":"participant-joined","data":{"participantCount":2}}`, string(data))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "room-ABC123.vote-updated", Subject("room-ABC123", "vote-updated"))
}
