package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	msg  *nats.Msg
	opts int
	err  error
}

func (f *fakeStream) PublishMsg(_ context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.msg = msg
	f.opts = len(opts)
	if f.err != nil {
		return nil, f.err
	}
	return &jetstream.PubAck{Stream: "ORDERS", Sequence: 1}, nil
}

type testEvent struct {
	payloadErr error
}

func (testEvent) Subject() string { return "orders.handed_off" }
func (testEvent) Key() string     { return "order-1" }
func (e testEvent) Payload() ([]byte, error) {
	if e.payloadErr != nil {
		return nil, e.payloadErr
	}
	return []byte(`{"orderId":"order-1"}`), nil
}

func Test_NatsPublisher_Publish(t *testing.T) {
	testCases := []struct {
		name       string
		event      testEvent
		publishErr error
		wantErr    string
		wantSent   bool
	}{
		{name: "published", wantSent: true},
		{name: "payload failure", event: testEvent{payloadErr: errors.New("boom")}, wantErr: "failed to get event payload"},
		{name: "broker failure", publishErr: errors.New("no responders"), wantErr: "failed to publish to orders.handed_off", wantSent: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			js := &fakeStream{err: tc.publishErr}
			p := NewNatsPublisher(js)

			// when
			err := p.Publish(context.Background(), tc.event)

			// then
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			if !tc.wantSent {
				assert.Nil(t, js.msg)
				return
			}
			require.NotNil(t, js.msg)
			assert.Equal(t, "orders.handed_off", js.msg.Subject)
			assert.Equal(t, "application/json", js.msg.Header.Get("Content-Type"))
			assert.JSONEq(t, `{"orderId":"order-1"}`, string(js.msg.Data))
			assert.Equal(t, 1, js.opts)
		})
	}
}
