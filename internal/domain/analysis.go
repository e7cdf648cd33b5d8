package domain

import "time"

// ConnectionStatus wallet connection status.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnected    ConnectionStatus = "connected"
)

// AnalysisPhase progress of the analysis cycle for the connected address.
type AnalysisPhase string

const (
	PhaseIdle      AnalysisPhase = "idle"
	PhaseAnalyzing AnalysisPhase = "analyzing"
	PhaseReady     AnalysisPhase = "ready"
)

// AnalysisState observable recommendation state of one connection.
// Balances and HeuristicTips always come from the same fetch cycle.
type AnalysisState struct {
	CycleID       string           `json:"cycle_id,omitempty"`
	Address       string           `json:"address,omitempty"`
	Status        ConnectionStatus `json:"status"`
	Phase         AnalysisPhase    `json:"phase"`
	Balances      []Balance        `json:"balances"`
	HeuristicTips []Tip            `json:"heuristic_tips"`
	AITips        []Tip            `json:"ai_tips"`
	AILoading     bool             `json:"ai_loading"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Clone returns a deep copy safe to hand to observers.
func (s AnalysisState) Clone() AnalysisState {
	c := s
	c.Balances = append([]Balance{}, s.Balances...)
	c.HeuristicTips = append([]Tip{}, s.HeuristicTips...)
	c.AITips = append([]Tip{}, s.AITips...)
	return c
}

// AnalysisReport completed analysis cycle as journaled for the dashboard stream.
type AnalysisReport struct {
	Timestamp     time.Time `json:"ts"`
	CycleID       string    `json:"cycle_id"`
	Address       string    `json:"address"`
	Model         string    `json:"model,omitempty"`
	Balances      []Balance `json:"balances"`
	HeuristicTips []Tip     `json:"heuristic_tips"`
	AITips        []Tip     `json:"ai_tips"`
}

// NewAnalysisReport creates a report from a ready state.
func NewAnalysisReport(state AnalysisState, model string) AnalysisReport {
	c := state.Clone()
	return AnalysisReport{
		Timestamp:     c.UpdatedAt,
		CycleID:       c.CycleID,
		Address:       c.Address,
		Model:         NormalizeModelName(model),
		Balances:      c.Balances,
		HeuristicTips: c.HeuristicTips,
		AITips:        c.AITips,
	}
}

// AnalysisReportRecord bundles a report with its journal index.
type AnalysisReportRecord struct {
	Index  uint64
	Report AnalysisReport
}
