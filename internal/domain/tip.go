package domain

import "github.com/samber/lo"

// TipOrigin tells where a tip came from.
type TipOrigin string

const (
	TipOriginHeuristic TipOrigin = "heuristic"
	TipOriginAI        TipOrigin = "ai"
)

// Tip advice line shown to the user.
type Tip struct {
	Origin TipOrigin `json:"origin"`
	Text   string    `json:"text"`
}

// HeuristicTip creates a rule-derived tip.
func HeuristicTip(text string) Tip {
	return Tip{Origin: TipOriginHeuristic, Text: text}
}

// AITip creates a tip obtained from the completion service.
func AITip(text string) Tip {
	return Tip{Origin: TipOriginAI, Text: text}
}

// TipTexts returns the display strings of tips in order.
func TipTexts(tips []Tip) []string {
	return lo.Map(tips, func(t Tip, _ int) string { return t.Text })
}
