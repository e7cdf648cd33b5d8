// Package chat keeps a free-form conversation with the completion service.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/privacyx/guardian/internal/clients"
	"github.com/privacyx/guardian/internal/domain"
	"github.com/privacyx/guardian/internal/events"
	"github.com/privacyx/guardian/internal/services/promptbuilder"
	"go.uber.org/zap"
)

// Placeholder assistant replies appended when the service gives no answer.
const (
	NoResponseReply   = "⚠️ No response from the AI."
	NetworkErrorReply = "⚠️ Network error. Please try again."
	MissingKeyReply   = "⚠️ API key missing"
)

// TypingIndicator is exposed while a reply is pending. It never enters the transcript.
const TypingIndicator = "✍️ " + promptbuilder.AssistantName + " is typing..."

// Turn outcomes reported to the recorder.
const (
	OutcomeReply        = "reply"
	OutcomeNoResponse   = "no_response"
	OutcomeNetworkError = "network_error"
	OutcomeMissingKey   = "missing_key"
)

type turnRecorder interface {
	ObserveChatTurn(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveChatTurn(string) {}

// Option configures a Session.
type Option func(*Session)

// WithRecorder reports every finished turn to r.
func WithRecorder(r turnRecorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

var (
	ErrEmptyInput = errors.New("message is empty")
	ErrBusy       = errors.New("a reply is already pending")
)

// Session is one conversation. The whole transcript is resent on every turn.
type Session struct {
	logger   *zap.Logger
	llm      clients.LLMClient
	updates  *events.Broadcaster[domain.ChatState]
	recorder turnRecorder

	mu         sync.Mutex
	id         string
	transcript []domain.ChatMessage
	typing     bool
	generation uint64
}

// NewSession creates a session seeded with the persona and the greeting.
func NewSession(logger *zap.Logger, llm clients.LLMClient, opts ...Option) *Session {
	s := &Session{
		logger:     logger,
		llm:        llm,
		updates:    events.NewBroadcaster[domain.ChatState](16),
		recorder:   nopRecorder{},
		id:         uuid.NewString(),
		transcript: promptbuilder.ChatSeed(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send appends text as a user turn, asks for a reply and appends it.
// Service failures become placeholder replies; the user turn is kept either way.
func (s *Session) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	s.mu.Lock()
	if s.typing {
		s.mu.Unlock()
		return ErrBusy
	}
	s.transcript = append(s.transcript, domain.ChatMessage{Role: domain.RoleUser, Content: text})
	s.typing = true
	gen, id := s.generation, s.id
	history := append([]domain.ChatMessage{}, s.transcript...)
	s.publishLocked()
	s.mu.Unlock()

	reply, outcome := s.complete(ctx, id, history)
	s.recorder.ObserveChatTurn(outcome)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("Dropped reply for a reset chat session", zap.String("session", id))
		return nil
	}
	s.transcript = append(s.transcript, reply)
	s.typing = false
	s.publishLocked()
	return nil
}

func (s *Session) complete(ctx context.Context, id string, history []domain.ChatMessage) (domain.ChatMessage, string) {
	reply, err := s.llm.Complete(ctx, history)
	switch {
	case err == nil:
	case errors.Is(err, clients.ErrAPIKeyMissing):
		s.logger.Warn("Chat reply skipped, completion API key is not configured")
		return placeholder(MissingKeyReply), OutcomeMissingKey
	case errors.Is(err, clients.ErrNoReply):
		s.logger.Warn("Chat reply had no choices", zap.String("session", id))
		return placeholder(NoResponseReply), OutcomeNoResponse
	default:
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) {
			s.logger.Warn("Chat reply rejected by completion API", zap.String("session", id), zap.Error(err))
			return placeholder(NoResponseReply), OutcomeNoResponse
		}
		s.logger.Warn("Chat turn failed", zap.String("session", id), zap.Error(err))
		return placeholder(NetworkErrorReply), OutcomeNetworkError
	}

	if strings.TrimSpace(reply.Content) == "" {
		return placeholder(NoResponseReply), OutcomeNoResponse
	}
	if !reply.Role.Valid() || reply.Role == domain.RoleUser {
		reply.Role = domain.RoleAssistant
	}
	return reply, OutcomeReply
}

func placeholder(text string) domain.ChatMessage {
	return domain.ChatMessage{Role: domain.RoleAssistant, Content: text}
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChatMessage{}, s.transcript...)
}

// State returns the transcript together with the typing flag.
func (s *Session) State() domain.ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Reset starts a new session. A reply still pending for the old one is dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.id = uuid.NewString()
	s.transcript = promptbuilder.ChatSeed()
	s.typing = false
	s.publishLocked()
}

// Subscribe returns a channel receiving every published chat state.
func (s *Session) Subscribe() chan domain.ChatState {
	return s.updates.Subscribe()
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (s *Session) Unsubscribe(ch chan domain.ChatState) {
	s.updates.Unsubscribe(ch)
}

func (s *Session) stateLocked() domain.ChatState {
	state := domain.ChatState{
		SessionID:  s.id,
		Transcript: append([]domain.ChatMessage{}, s.transcript...),
		Typing:     s.typing,
	}
	if s.typing {
		state.Indicator = TypingIndicator
	}
	return state
}

func (s *Session) publishLocked() {
	s.updates.Publish(s.stateLocked())
}
