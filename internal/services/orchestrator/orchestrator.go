// Package orchestrator runs the analysis cycle of a connected wallet:
// balances, then heuristic tips, then AI tips, published together.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/privacyx/guardian/internal/domain"
	"github.com/privacyx/guardian/internal/events"
	"github.com/privacyx/guardian/internal/services/advisor"
	"go.uber.org/zap"
)

// ErrStaleCycle is returned when a newer connection event superseded the cycle.
var ErrStaleCycle = errors.New("analysis cycle superseded")

type balanceFetcher interface {
	Fetch(ctx context.Context, address string) ([]domain.Balance, error)
}

type tipDeriver interface {
	Derive(balances []domain.Balance) []domain.Tip
}

type aiAdvisor interface {
	RequestTips(ctx context.Context, address string, balances []domain.Balance, setLoading advisor.LoadingFunc) []domain.Tip
}

type cycleRecorder interface {
	ObserveCycle(outcome string, elapsed time.Duration)
}

// Cycle outcomes reported to the recorder.
const (
	OutcomeReady       = "ready"
	OutcomeFetchFailed = "fetch_failed"
	OutcomeStale       = "stale"
)

type nopRecorder struct{}

func (nopRecorder) ObserveCycle(string, time.Duration) {}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder reports every finished cycle to r.
func WithRecorder(r cycleRecorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// Orchestrator owns the analysis state of one wallet connection.
type Orchestrator struct {
	logger    *zap.Logger
	fetcher   balanceFetcher
	heuristic tipDeriver
	ai        aiAdvisor
	updates   *events.Broadcaster[domain.AnalysisState]
	recorder  cycleRecorder
	now       func() time.Time

	mu         sync.Mutex
	state      domain.AnalysisState
	generation uint64
}

// NewOrchestrator creates an orchestrator in the disconnected state.
func NewOrchestrator(logger *zap.Logger, fetcher balanceFetcher, heuristic tipDeriver, ai aiAdvisor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:    logger,
		fetcher:   fetcher,
		heuristic: heuristic,
		ai:        ai,
		updates:   events.NewBroadcaster[domain.AnalysisState](16),
		recorder:  nopRecorder{},
		now:       time.Now,
		state:     disconnected(time.Now()),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func disconnected(at time.Time) domain.AnalysisState {
	return domain.AnalysisState{
		Status:        domain.StatusDisconnected,
		Phase:         domain.PhaseIdle,
		Balances:      []domain.Balance{},
		HeuristicTips: []domain.Tip{},
		AITips:        []domain.Tip{},
		UpdatedAt:     at,
	}
}

// OnConnectionEstablished runs one analysis cycle for address and returns the
// state it published. Balances, heuristic tips and AI tips become visible at once
// when the cycle completes; a fetch failure publishes FailureTip and no AI tips.
func (o *Orchestrator) OnConnectionEstablished(ctx context.Context, address string) (domain.AnalysisState, error) {
	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.state = domain.AnalysisState{
		CycleID:       uuid.NewString(),
		Address:       address,
		Status:        domain.StatusConnected,
		Phase:         domain.PhaseAnalyzing,
		Balances:      []domain.Balance{},
		HeuristicTips: []domain.Tip{},
		AITips:        []domain.Tip{},
		UpdatedAt:     o.now(),
	}
	cycleID := o.state.CycleID
	o.publishLocked()
	o.mu.Unlock()

	started := time.Now()
	logger := o.logger.With(zap.String("address", address), zap.String("cycle", cycleID))
	logger.Info("Analysis started")

	balances, err := o.fetcher.Fetch(ctx, address)
	if err != nil {
		logger.Error("Failed to fetch balances", zap.Error(err))
		state, err := o.complete(gen, []domain.Balance{}, []domain.Tip{domain.HeuristicTip(advisor.FailureTip)}, []domain.Tip{})
		if err != nil {
			o.recorder.ObserveCycle(OutcomeStale, time.Since(started))
			return state, err
		}
		o.recorder.ObserveCycle(OutcomeFetchFailed, time.Since(started))
		return state, nil
	}

	heuristicTips := o.heuristic.Derive(balances)
	aiTips := o.ai.RequestTips(ctx, address, balances, func(loading bool) {
		o.setLoading(gen, loading)
	})

	state, err := o.complete(gen, balances, heuristicTips, aiTips)
	if err != nil {
		logger.Info("Discarded stale analysis result")
		o.recorder.ObserveCycle(OutcomeStale, time.Since(started))
		return state, err
	}
	o.recorder.ObserveCycle(OutcomeReady, time.Since(started))

	logger.Info("Analysis ready",
		zap.Int("balances", len(state.Balances)),
		zap.Int("heuristic_tips", len(state.HeuristicTips)),
		zap.Int("ai_tips", len(state.AITips)))
	return state, nil
}

// Disconnect clears the state and invalidates any cycle in flight.
func (o *Orchestrator) Disconnect() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	o.state = disconnected(o.now())
	o.publishLocked()
}

// State returns a snapshot of the current analysis state.
func (o *Orchestrator) State() domain.AnalysisState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// Subscribe returns a channel receiving every published state.
func (o *Orchestrator) Subscribe() chan domain.AnalysisState {
	return o.updates.Subscribe()
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (o *Orchestrator) Unsubscribe(ch chan domain.AnalysisState) {
	o.updates.Unsubscribe(ch)
}

func (o *Orchestrator) complete(gen uint64, balances []domain.Balance, heuristicTips, aiTips []domain.Tip) (domain.AnalysisState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		return o.state.Clone(), ErrStaleCycle
	}

	o.state.Phase = domain.PhaseReady
	o.state.Balances = balances
	o.state.HeuristicTips = heuristicTips
	o.state.AITips = aiTips
	o.state.AILoading = false
	o.state.UpdatedAt = o.now()
	o.publishLocked()
	return o.state.Clone(), nil
}

func (o *Orchestrator) setLoading(gen uint64, loading bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation || o.state.AILoading == loading {
		return
	}
	o.state.AILoading = loading
	o.state.UpdatedAt = o.now()
	o.publishLocked()
}

func (o *Orchestrator) publishLocked() {
	o.updates.Publish(o.state.Clone())
}
