package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveCycle("ready", 1500*time.Millisecond)
	m.ObserveCycle("ready", time.Second)
	m.ObserveCycle("fetch_failed", 10*time.Millisecond)
	m.ObserveChatTurn("reply")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cycles.WithLabelValues("ready")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues("fetch_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chatTurns.WithLabelValues("reply")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.chatTurns.WithLabelValues("network_error")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveChatTurn("no_response")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `guardian_chat_turns_total{outcome="no_response"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
