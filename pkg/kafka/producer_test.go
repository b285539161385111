package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	written  []kafkago.Message
	writeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr != nil {
		return w.writeErr
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func fakeProducer() (*Producer, map[string]*fakeWriter) {
	writers := make(map[string]*fakeWriter)
	return newProducer(func(topic string) messageWriter {
		w := &fakeWriter{}
		writers[topic] = w
		return w
	}), writers
}

func TestNewProducer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "plain brokers", cfg: Config{Brokers: []string{"localhost:9092", "localhost:9093"}}},
		{name: "tls and scram", cfg: Config{
			Brokers: []string{"kafka:9092"}, TLS: true, SASLEnabled: true,
			SASLMechanism: "SCRAM-SHA-512", SASLUsername: "svc", SASLPassword: "secret",
		}},
		{name: "no brokers", cfg: Config{}, wantErr: "at least one broker"},
		{name: "bad mechanism", cfg: Config{
			Brokers: []string{"kafka:9092"}, SASLEnabled: true, SASLMechanism: "GSSAPI",
		}, wantErr: "unsupported SASL mechanism"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProducer(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, p.writers)
		})
	}
}

func TestProducer_PublishConvertsMessages(t *testing.T) {
	p, writers := fakeProducer()

	err := p.Publish(context.Background(), "pricing.events", Message{
		Key:   []byte("scenario-1"),
		Value: []byte(`{"loan_amount":"320000"}`),
		Headers: map[string]string{
			"event_type": "pricing.scenario.saved",
			"event_id":   "e-1",
		},
	})
	require.NoError(t, err)

	w := writers["pricing.events"]
	require.NotNil(t, w)
	require.Len(t, w.written, 1)
	km := w.written[0]
	assert.Equal(t, "scenario-1", string(km.Key))
	require.Len(t, km.Headers, 2)
	assert.Equal(t, "event_id", km.Headers[0].Key)
	assert.Equal(t, "event_type", km.Headers[1].Key)
	assert.Equal(t, "pricing.scenario.saved", string(km.Headers[1].Value))
}

func TestProducer_ReusesWriterPerTopic(t *testing.T) {
	p, writers := fakeProducer()
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, "a", Message{Value: []byte("1")}))
	require.NoError(t, p.Publish(ctx, "a", Message{Value: []byte("2")}))
	require.NoError(t, p.Publish(ctx, "b", Message{Value: []byte("3")}))

	assert.Len(t, writers, 2)
	assert.Len(t, writers["a"].written, 2)
}

func TestProducer_PublishNothing(t *testing.T) {
	p, writers := fakeProducer()

	require.NoError(t, p.Publish(context.Background(), "a"))
	assert.Empty(t, writers)
}

func TestProducer_WrapsWriteError(t *testing.T) {
	boom := errors.New("leader not available")
	p := newProducer(func(string) messageWriter { return &fakeWriter{writeErr: boom} })

	err := p.Publish(context.Background(), "pricing.events", Message{Value: []byte("x")})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "pricing.events")
}

func TestProducer_CloseClosesWriters(t *testing.T) {
	p, writers := fakeProducer()
	require.NoError(t, p.Publish(context.Background(), "a", Message{Value: []byte("1")}))

	require.NoError(t, p.Close())
	assert.True(t, writers["a"].closed)
	assert.Empty(t, p.writers)
}

func TestMessageHeadersRoundTrip(t *testing.T) {
	in := Message{
		Key:     []byte("k"),
		Value:   []byte("v"),
		Headers: map[string]string{"content-type": "application/json", "event_type": "x"},
	}

	out := fromKafkaMessage(toKafkaMessage(in))
	assert.Equal(t, in, out)
}
