package broadcast

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNATS struct {
	msgs    []*nats.Msg
	drained bool
}

func (f *fakeNATS) PublishMsg(m *nats.Msg) error {
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeNATS) Drain() error {
	f.drained = true
	return nil
}

type redisPublish struct {
	channel string
	payload string
}

type fakeRedis struct {
	published []redisPublish
	err       error
	closed    bool
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.published = append(f.published, redisPublish{channel: channel, payload: string(message.([]byte))})
	return redis.NewIntResult(1, f.err)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestNATSSink_Deliver(t *testing.T) {
	conn := &fakeNATS{}
	sink := &NATSSink{conn: conn}

	msg := Message{Channel: "room-AB12CD", Event: "vote-updated", Data: map[string]int{"score": 2}}
	require.NoError(t, sink.Deliver(context.Background(), msg))

	require.Len(t, conn.msgs, 1)
	assert.Equal(t, "room-AB12CD.vote-updated", conn.msgs[0].Subject)
	assert.JSONEq(t, `{"channel":"room-AB12CD","event":"vote-updated","data":{"score":2}}`, string(conn.msgs[0].Data))

	sink.Close()
	assert.True(t, conn.drained)
}

func TestNATSSink_DeliverEncodeError(t *testing.T) {
	conn := &fakeNATS{}
	sink := &NATSSink{conn: conn}

	err := sink.Deliver(context.Background(), Message{Channel: "room-A", Event: "e", Data: make(chan int)})
	assert.Error(t, err)
	assert.Empty(t, conn.msgs)
}

func TestRedisSink_Deliver(t *testing.T) {
	client := &fakeRedis{}
	sink := &RedisSink{client: client}

	msg := Message{Channel: "room-AB12CD", Event: "queue-updated", Data: []string{"a"}}
	require.NoError(t, sink.Deliver(context.Background(), msg))

	require.Len(t, client.published, 1)
	assert.Equal(t, "room-AB12CD", client.published[0].channel)
	assert.JSONEq(t, `{"channel":"room-AB12CD","event":"queue-updated","data":["a"]}`, client.published[0].payload)

	require.NoError(t, sink.Close())
	assert.True(t, client.closed)
}

func TestRedisSink_DeliverError(t *testing.T) {
	client := &fakeRedis{err: errors.New("connection refused")}
	sink := &RedisSink{client: client}

	err := sink.Deliver(context.Background(), Message{Channel: "room-A", Event: "e", Data: 1})
	assert.EqualError(t, err, "connection refused")
}
