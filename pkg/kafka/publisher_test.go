package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvent struct {
	payloadErr error
}

func (fakeEvent) Subject() string { return "orders.test" }
func (fakeEvent) Key() string     { return "key-1" }
func (e fakeEvent) Payload() ([]byte, error) {
	if e.payloadErr != nil {
		return nil, e.payloadErr
	}
	return []byte(`{"ok":true}`), nil
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	errWrite := errors.New("broker down")
	errPayload := errors.New("bad payload")
	testCases := []struct {
		name        string
		writer      *fakeWriter
		event       fakeEvent
		expectError error
		expectMsgs  int
	}{
		{name: "Success - message written", writer: &fakeWriter{}, expectMsgs: 1},
		{name: "Error - writer fails", writer: &fakeWriter{err: errWrite}, expectError: errWrite},
		{name: "Error - payload fails", writer: &fakeWriter{}, event: fakeEvent{payloadErr: errPayload}, expectError: errPayload},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
			p := NewKafkaPublisher(tc.writer)
			p.now = func() time.Time { return fixed }

			// when
			err := p.Publish(context.Background(), tc.event)

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			require.Len(t, tc.writer.msgs, tc.expectMsgs)
			msg := tc.writer.msgs[0]
			assert.Equal(t, "key-1", string(msg.Key))
			assert.JSONEq(t, `{"ok":true}`, string(msg.Value))
			assert.Equal(t, fixed, msg.Time)
			require.Len(t, msg.Headers, 1)
			assert.Equal(t, "orders.test", string(msg.Headers[0].Value))
		})
	}
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewKafkaPublisher(w).Close())
	assert.True(t, w.closed)
}
