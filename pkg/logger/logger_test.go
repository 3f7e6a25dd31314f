package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/abgdnv/shopease/pkg/web/ctxkeys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ContextHandler(t *testing.T) {
	testCases := []struct {
		name    string
		ctx     context.Context
		want    map[string]string
		missing []string
	}{
		{
			name:    "empty context",
			ctx:     context.Background(),
			missing: []string{"request_id", "session_id", "trace_id"},
		},
		{
			name:    "request and session",
			ctx:     ctxkeys.WithSessionID(ctxkeys.WithRequestID(context.Background(), "req-1"), "sess-1"),
			want:    map[string]string{"request_id": "req-1", "session_id": "sess-1"},
			missing: []string{"trace_id"},
		},
		{
			name:    "blank session is skipped",
			ctx:     ctxkeys.WithSessionID(context.Background(), ""),
			missing: []string{"session_id"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("component", "test")

			// when
			log.InfoContext(tc.ctx, "hello")

			// then
			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, "test", record["component"])
			for k, v := range tc.want {
				assert.Equal(t, v, record[k])
			}
			for _, k := range tc.missing {
				assert.NotContains(t, record, k)
			}
		})
	}
}

func Test_ContextHandler_CustomExtractor(t *testing.T) {
	// given
	var buf bytes.Buffer
	tenant := func(context.Context) []slog.Attr { return []slog.Attr{slog.String("tenant", "shop")} }
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil), tenant))

	// when
	log.InfoContext(ctxkeys.WithRequestID(context.Background(), "req-1"), "hello")

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "shop", record["tenant"])
	assert.NotContains(t, record, "request_id")
}
