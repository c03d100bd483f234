package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gatelink/gatelink/internal/messaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// resolutionEvent stands in for the analytics event shapes published by the
// HTTP layer.
type resolutionEvent struct {
	EventID string `json:"eventId"`
	Key     string `json:"key"`
}

type mockPublisher struct {
	messages   []*message.Message
	topic      string
	publishErr error
	closeErr   error
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}

	m.topic = topic
	m.messages = append(m.messages, msgs...)

	return nil
}

func (m *mockPublisher) Close() error {
	return m.closeErr
}

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

func TestNewPublishFunc(t *testing.T) {
	t.Run("serializes the event onto the topic", func(t *testing.T) {
		mock := &mockPublisher{}
		publish := messaging.NewPublishFunc[resolutionEvent](mock, "link.resolved")

		err := publish(&resolutionEvent{EventID: "ev-1", Key: "a1b2c3d4e5f6a7b8"})

		require.NoError(t, err)
		assert.Equal(t, "link.resolved", mock.topic)
		require.Len(t, mock.messages, 1)
		assert.Contains(t, string(mock.messages[0].Payload), `"key":"a1b2c3d4e5f6a7b8"`)
		assert.NotEmpty(t, mock.messages[0].UUID)
	})

	t.Run("surfaces publish failures", func(t *testing.T) {
		mock := &mockPublisher{publishErr: errors.New("publish error")}
		publish := messaging.NewPublishFunc[resolutionEvent](mock, "link.resolved")

		err := publish(&resolutionEvent{EventID: "ev-1"})

		assert.Error(t, err)
	})
}

func TestPublisherGroup(t *testing.T) {
	t.Run("exposes the underlying publisher", func(t *testing.T) {
		mock := &mockPublisher{}
		group := messaging.NewPublisherGroup(mock)

		assert.Equal(t, mock, group.Publisher())
	})

	t.Run("shutdown closes the publisher", func(t *testing.T) {
		assert.NoError(t, messaging.NewPublisherGroup(&mockPublisher{}).Shutdown())
		assert.Error(t, messaging.NewPublisherGroup(&mockPublisher{closeErr: errors.New("close error")}).Shutdown())
	})
}

func TestConsumer(t *testing.T) {
	t.Run("starts and reports its topic", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"link.denied",
			func(_ context.Context, _ *resolutionEvent) error { return nil },
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))
		assert.Equal(t, "link.denied", consumer.Topic())

		_ = consumer.Shutdown()
	})

	t.Run("fails to start when subscribe fails", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := messaging.NewConsumer(
			sub,
			"link.denied",
			func(_ context.Context, _ *resolutionEvent) error { return nil },
			zap.NewNop(),
		)

		assert.Error(t, consumer.Start(context.Background()))
	})

	t.Run("acks after the handler succeeds", func(t *testing.T) {
		sub := newMockSubscriber()

		var received *resolutionEvent

		consumer := messaging.NewConsumer(
			sub,
			"link.resolved",
			func(_ context.Context, event *resolutionEvent) error {
				received = event

				return nil
			},
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		payload, err := json.Marshal(&resolutionEvent{EventID: "ev-1", Key: "key-1"})
		require.NoError(t, err)

		msg := message.NewMessage(uuid.NewString(), payload)
		sub.msgChan <- msg

		select {
		case <-msg.Acked():
			assert.Equal(t, "ev-1", received.EventID)
			assert.Equal(t, "key-1", received.Key)
		case <-msg.Nacked():
			t.Fatal("message was nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for ack")
		}

		_ = consumer.Shutdown()
	})

	t.Run("nacks an undecodable payload", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"link.resolved",
			func(_ context.Context, _ *resolutionEvent) error { return nil },
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		msg := message.NewMessage(uuid.NewString(), []byte("not json"))
		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		_ = consumer.Shutdown()
	})

	t.Run("nacks when the handler fails", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"link.resolved",
			func(_ context.Context, _ *resolutionEvent) error { return errors.New("store unavailable") },
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		payload, err := json.Marshal(&resolutionEvent{EventID: "ev-1"})
		require.NoError(t, err)

		msg := message.NewMessage(uuid.NewString(), payload)
		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		_ = consumer.Shutdown()
	})
}

type mockRunnable struct {
	startErr    error
	shutdownErr error
	started     bool
	stopped     bool
}

func (m *mockRunnable) Start(_ context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}

	m.started = true

	return nil
}

func (m *mockRunnable) Shutdown() error {
	m.stopped = true

	return m.shutdownErr
}

func TestConsumerGroup(t *testing.T) {
	t.Run("starts every consumer", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())

		first := &mockRunnable{}
		second := &mockRunnable{}
		group.Add(first)
		group.Add(second)

		require.NoError(t, group.Start(context.Background()))
		assert.True(t, first.started)
		assert.True(t, second.started)
	})

	t.Run("rolls back started consumers when one fails", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())

		first := &mockRunnable{}
		failing := &mockRunnable{startErr: errors.New("start error")}
		group.Add(first)
		group.Add(failing)

		err := group.Start(context.Background())

		assert.Error(t, err)
		assert.True(t, first.stopped)
	})

	t.Run("shutdown stops consumers and closes the subscriber", func(t *testing.T) {
		sub := newMockSubscriber()
		group := messaging.NewConsumerGroup(sub, zap.NewNop())

		consumer := &mockRunnable{}
		group.Add(consumer)

		require.NoError(t, group.Start(context.Background()))
		require.NoError(t, group.Shutdown())
		assert.True(t, consumer.stopped)
		assert.True(t, sub.closed)
	})

	t.Run("shutdown reports the first consumer error", func(t *testing.T) {
		group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())
		group.Add(&mockRunnable{shutdownErr: errors.New("shutdown error")})

		assert.Error(t, group.Shutdown())
	})
}
