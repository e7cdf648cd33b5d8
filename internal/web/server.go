// Package web serves the dashboard and its JSON/SSE API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/privacyx/guardian/internal/domain"
	"github.com/privacyx/guardian/internal/services/chat"
	"go.uber.org/zap"
)

const (
	reportPollInterval = 2 * time.Second
	heartbeatInterval  = 30 * time.Second
	maxBodyBytes       = 64 << 10
)

type analysisService interface {
	OnConnectionEstablished(ctx context.Context, address string) (domain.AnalysisState, error)
	Disconnect()
	State() domain.AnalysisState
}

type chatService interface {
	Send(ctx context.Context, text string) error
	State() domain.ChatState
	Reset()
	Subscribe() chan domain.ChatState
	Unsubscribe(ch chan domain.ChatState)
}

type reportReader interface {
	EventsAfter(index uint64) ([]domain.AnalysisReportRecord, error)
}

// Server exposes the wallet analysis and chat over HTTP.
type Server struct {
	Addr     string
	logger   *zap.Logger
	analysis analysisService
	chat     chatService
	reports  reportReader
	metrics  http.Handler

	// baseCtx outlives requests; analysis cycles run under it.
	baseCtx context.Context
}

// NewServer creates a new web server instance. reports may be nil.
func NewServer(addr string, logger *zap.Logger, analysis analysisService, chatSvc chatService, reports reportReader) *Server {
	return &Server{
		Addr:     addr,
		logger:   logger,
		analysis: analysis,
		chat:     chatSvc,
		reports:  reports,
		baseCtx:  context.Background(),
	}
}

// WithMetrics serves h under /metrics.
func (s *Server) WithMetrics(h http.Handler) *Server {
	s.metrics = h
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/connect", s.handleConnect)
	mux.HandleFunc("POST /api/disconnect", s.handleDisconnect)
	mux.HandleFunc("GET /api/analysis", s.handleAnalysis)
	mux.HandleFunc("GET /api/analysis/stream", s.handleReportStream)
	mux.HandleFunc("GET /api/chat", s.handleChatState)
	mux.HandleFunc("POST /api/chat", s.handleChatSend)
	mux.HandleFunc("POST /api/chat/reset", s.handleChatReset)
	mux.HandleFunc("GET /api/chat/stream", s.handleChatStream)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.baseCtx = ctx

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Web server listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

type connectRequest struct {
	Address string `json:"address"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	address := strings.TrimSpace(req.Address)
	if !common.IsHexAddress(address) {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}

	go func() {
		if _, err := s.analysis.OnConnectionEstablished(s.baseCtx, address); err != nil {
			s.logger.Debug("Analysis cycle ended early", zap.String("address", address), zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": string(domain.StatusConnected), "address": address})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.analysis.Disconnect()
	writeJSON(w, http.StatusOK, s.analysis.State())
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.analysis.State())
}

type chatRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleChatState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.chat.State())
}

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch err := s.chat.Send(r.Context(), req.Text); {
	case errors.Is(err, chat.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, chat.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.logger.Error("Chat send failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "chat send failed")
		return
	}

	writeJSON(w, http.StatusOK, s.chat.State())
}

func (s *Server) handleChatReset(w http.ResponseWriter, r *http.Request) {
	s.chat.Reset()
	writeJSON(w, http.StatusOK, s.chat.State())
}

func (s *Server) handleReportStream(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "report store not available")
		return
	}
	flusher, ok := startStream(w)
	if !ok {
		return
	}

	// send a comment heartbeat every 30s so proxies keep connection
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(reportPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendReports := func() error {
		records, err := s.reports.EventsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			if err := writeEvent(w, "analysis", record.Report); err != nil {
				return err
			}
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendReports(); err != nil {
		s.logger.Error("Report stream initial load failed", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendReports(); err != nil {
				s.logger.Warn("Report stream poll failed", zap.Error(err))
			}
		}
	}
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := startStream(w)
	if !ok {
		return
	}

	updates := s.chat.Subscribe()
	defer s.chat.Unsubscribe(updates)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	if err := writeEvent(w, "chat", s.chat.State()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case state, open := <-updates:
			if !open {
				return
			}
			if err := writeEvent(w, "chat", state); err != nil {
				s.logger.Warn("Chat stream write failed", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func startStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return flusher, true
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
