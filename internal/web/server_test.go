package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/privacyx/guardian/internal/domain"
	"github.com/privacyx/guardian/internal/services/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const wallet = "0x1111111111111111111111111111111111111111"

type fakeAnalysis struct {
	mu        sync.Mutex
	connected []string
	state     domain.AnalysisState
}

func (f *fakeAnalysis) OnConnectionEstablished(_ context.Context, address string) (domain.AnalysisState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = append(f.connected, address)
	f.state = domain.AnalysisState{Address: address, Status: domain.StatusConnected, Phase: domain.PhaseReady}
	return f.state, nil
}

func (f *fakeAnalysis) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = domain.AnalysisState{Status: domain.StatusDisconnected, Phase: domain.PhaseIdle}
}

func (f *fakeAnalysis) State() domain.AnalysisState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeAnalysis) connections() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.connected...)
}

type fakeChat struct {
	sendErr error
	sent    []string
	resets  int
	updates chan domain.ChatState
}

func (f *fakeChat) Send(_ context.Context, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeChat) State() domain.ChatState {
	return domain.ChatState{SessionID: "s1", Transcript: []domain.ChatMessage{{Role: domain.RoleAssistant, Content: "hi"}}}
}

func (f *fakeChat) Reset() { f.resets++ }

func (f *fakeChat) Subscribe() chan domain.ChatState {
	if f.updates == nil {
		f.updates = make(chan domain.ChatState, 1)
	}
	return f.updates
}

func (f *fakeChat) Unsubscribe(chan domain.ChatState) {}

type fakeReports struct {
	records []domain.AnalysisReportRecord
}

func (f *fakeReports) EventsAfter(index uint64) ([]domain.AnalysisReportRecord, error) {
	var out []domain.AnalysisReportRecord
	for _, r := range f.records {
		if r.Index > index {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestServer(analysis *fakeAnalysis, chatSvc *fakeChat, reports reportReader) *Server {
	return NewServer(":0", zap.NewNop(), analysis, chatSvc, reports)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Connect(t *testing.T) {
	analysis := &fakeAnalysis{}
	h := newTestServer(analysis, &fakeChat{}, nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/connect", `{"address":"`+wallet+`"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	assert.Eventually(t, func() bool {
		return len(analysis.connections()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{wallet}, analysis.connections())

	rec = do(t, h, http.MethodGet, "/api/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state domain.AnalysisState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, domain.StatusConnected, state.Status)
	assert.Equal(t, wallet, state.Address)
}

func TestServer_ConnectRejectsInvalidAddress(t *testing.T) {
	analysis := &fakeAnalysis{}
	h := newTestServer(analysis, &fakeChat{}, nil).Handler()

	for _, body := range []string{`{"address":"0x123"}`, `{"address":""}`, `not json`} {
		rec := do(t, h, http.MethodPost, "/api/connect", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, analysis.connections())
}

func TestServer_Disconnect(t *testing.T) {
	analysis := &fakeAnalysis{}
	h := newTestServer(analysis, &fakeChat{}, nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/disconnect", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"disconnected"`)
}

func TestServer_ChatSend(t *testing.T) {
	chatSvc := &fakeChat{}
	h := newTestServer(&fakeAnalysis{}, chatSvc, nil).Handler()

	rec := do(t, h, http.MethodPost, "/api/chat", `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"hello"}, chatSvc.sent)

	var state domain.ChatState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "s1", state.SessionID)
}

func TestServer_ChatSendErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: chat.ErrEmptyInput, status: http.StatusBadRequest},
		{err: chat.ErrBusy, status: http.StatusConflict},
	}
	for _, tt := range tests {
		h := newTestServer(&fakeAnalysis{}, &fakeChat{sendErr: tt.err}, nil).Handler()
		rec := do(t, h, http.MethodPost, "/api/chat", `{"text":" "}`)
		assert.Equal(t, tt.status, rec.Code)
	}
}

func TestServer_ChatStateAndReset(t *testing.T) {
	chatSvc := &fakeChat{}
	h := newTestServer(&fakeAnalysis{}, chatSvc, nil).Handler()

	rec := do(t, h, http.MethodGet, "/api/chat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"hi"`)

	rec = do(t, h, http.MethodPost, "/api/chat/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, chatSvc.resets)
}

func TestServer_ReportStream(t *testing.T) {
	reports := &fakeReports{records: []domain.AnalysisReportRecord{
		{Index: 1, Report: domain.AnalysisReport{CycleID: "c1", Address: wallet}},
	}}
	srv := httptest.NewServer(newTestServer(&fakeAnalysis{}, &fakeChat{}, reports).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/analysis/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() && len(lines) < 2 {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "event: analysis", lines[0])
	assert.Contains(t, lines[1], `"cycle_id":"c1"`)
}

func TestServer_ReportStreamUnavailable(t *testing.T) {
	h := newTestServer(&fakeAnalysis{}, &fakeChat{}, nil).Handler()
	rec := do(t, h, http.MethodGet, "/api/analysis/stream", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Index(t *testing.T) {
	h := newTestServer(&fakeAnalysis{}, &fakeChat{}, nil).Handler()
	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Privacyx Guardian")
}

func TestServer_Metrics(t *testing.T) {
	h := newTestServer(&fakeAnalysis{}, &fakeChat{}, nil).Handler()
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", "").Code)

	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("guardian_up 1\n"))
	})
	h = newTestServer(&fakeAnalysis{}, &fakeChat{}, nil).WithMetrics(metricsHandler).Handler()
	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guardian_up 1\n", rec.Body.String())
}
