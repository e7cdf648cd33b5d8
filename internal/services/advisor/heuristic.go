// Package advisor derives privacy tips from wallet balances, either by fixed
// rules or by asking the completion service.
package advisor

import (
	"fmt"

	"github.com/privacyx/guardian/internal/domain"
	"github.com/shopspring/decimal"
)

// FailureTip is published instead of heuristic tips when balances could not be fetched.
const FailureTip = "❌ Failed to analyze wallet."

var coldStorageThreshold = decimal.NewFromInt(1)

// HeuristicAdvisor maps balances to a deterministic list of rule-based tips.
type HeuristicAdvisor struct {
	nativeSymbol  string
	privacySymbol string
}

// NewHeuristicAdvisor creates an advisor. nativeSymbol is used when the input has no native entry.
func NewHeuristicAdvisor(nativeSymbol, privacySymbol string) HeuristicAdvisor {
	return HeuristicAdvisor{nativeSymbol: nativeSymbol, privacySymbol: privacySymbol}
}

// Derive applies the rules in order: native size, detected tokens (with the privacy
// token follow-up right after its detection tip), then the closing mixer tip.
// The result is never empty.
func (h HeuristicAdvisor) Derive(balances []domain.Balance) []domain.Tip {
	tips := make([]domain.Tip, 0, len(balances)+3)

	nativeSymbol := h.nativeSymbol
	nativeAmount := decimal.Zero
	for _, b := range balances {
		if b.Native {
			nativeSymbol = b.Symbol
			nativeAmount = parseAmount(b.Amount)
			break
		}
	}

	if nativeAmount.GreaterThan(coldStorageThreshold) {
		tips = append(tips, domain.HeuristicTip(fmt.Sprintf("🪙 You hold over 1 %s — consider using a cold wallet.", nativeSymbol)))
	} else {
		tips = append(tips, domain.HeuristicTip(fmt.Sprintf("💡 Your %s balance is low. Consider consolidating wallets.", nativeSymbol)))
	}

	for _, b := range balances {
		if b.Native {
			continue
		}
		tips = append(tips, domain.HeuristicTip(fmt.Sprintf("🔎 %s detected: %s — avoid reusing this address.", b.Symbol, b.Amount)))
		if h.privacySymbol != "" && b.Symbol == h.privacySymbol {
			tips = append(tips, domain.HeuristicTip(fmt.Sprintf("🧬 Use %s staking or mixer to enhance your privacy.", b.Symbol)))
		}
	}

	tips = append(tips, domain.HeuristicTip(fmt.Sprintf("🔍 Try using the %s Mixer to anonymize large transfers.", h.mixerName())))
	return tips
}

func (h HeuristicAdvisor) mixerName() string {
	if h.privacySymbol == "" {
		return "PRVX"
	}
	return h.privacySymbol
}

// parseAmount treats unparsable amounts as zero.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
