package advisor

import (
	"testing"

	"github.com/privacyx/guardian/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nativeBalance(amount string) domain.Balance {
	return domain.Balance{Name: "Ethereum", Symbol: "ETH", Amount: amount, Native: true}
}

func TestHeuristicAdvisor_NativeRule(t *testing.T) {
	h := NewHeuristicAdvisor("ETH", "PRVX")

	tests := []struct {
		amount string
		cold   bool
	}{
		{amount: "2.5", cold: true},
		{amount: "1.000000000000000001", cold: true},
		{amount: "1.0", cold: false},
		{amount: "0.99", cold: false},
		{amount: "0.0", cold: false},
		{amount: "garbage", cold: false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			tips := h.Derive([]domain.Balance{nativeBalance(tt.amount)})
			require.NotEmpty(t, tips)
			if tt.cold {
				assert.Equal(t, "🪙 You hold over 1 ETH — consider using a cold wallet.", tips[0].Text)
			} else {
				assert.Equal(t, "💡 Your ETH balance is low. Consider consolidating wallets.", tips[0].Text)
			}
		})
	}
}

func TestHeuristicAdvisor_TokenOrder(t *testing.T) {
	h := NewHeuristicAdvisor("ETH", "PRVX")
	balances := []domain.Balance{
		nativeBalance("0.5"),
		{Symbol: "USDT", Amount: "100.0000"},
		{Symbol: "PRVX", Amount: "12.0000"},
		{Symbol: "DAI", Amount: "0.0000"},
	}

	tips := h.Derive(balances)

	assert.Equal(t, []string{
		"💡 Your ETH balance is low. Consider consolidating wallets.",
		"🔎 USDT detected: 100.0000 — avoid reusing this address.",
		"🔎 PRVX detected: 12.0000 — avoid reusing this address.",
		"🧬 Use PRVX staking or mixer to enhance your privacy.",
		"🔎 DAI detected: 0.0000 — avoid reusing this address.",
		"🔍 Try using the PRVX Mixer to anonymize large transfers.",
	}, domain.TipTexts(tips))
	for _, tip := range tips {
		assert.Equal(t, domain.TipOriginHeuristic, tip.Origin)
	}
}

func TestHeuristicAdvisor_PrivacyTokenEndToEnd(t *testing.T) {
	tips := NewHeuristicAdvisor("ETH", "PRVX").Derive([]domain.Balance{
		nativeBalance("2.5"),
		{Symbol: "PRVX", Amount: "42.0000"},
	})

	assert.Equal(t, []string{
		"🪙 You hold over 1 ETH — consider using a cold wallet.",
		"🔎 PRVX detected: 42.0000 — avoid reusing this address.",
		"🧬 Use PRVX staking or mixer to enhance your privacy.",
		"🔍 Try using the PRVX Mixer to anonymize large transfers.",
	}, domain.TipTexts(tips))
}

func TestHeuristicAdvisor_NeverEmptyAndDeterministic(t *testing.T) {
	h := NewHeuristicAdvisor("ETH", "PRVX")
	inputs := [][]domain.Balance{
		nil,
		{nativeBalance("0.0")},
		{nativeBalance("3"), {Symbol: "DAI", Amount: "1.0000"}},
	}

	for _, in := range inputs {
		first := h.Derive(in)
		second := h.Derive(in)
		assert.GreaterOrEqual(t, len(first), 2)
		assert.Equal(t, first, second)
	}
}

func TestHeuristicAdvisor_DefaultMixerName(t *testing.T) {
	tips := NewHeuristicAdvisor("ETH", "").Derive(nil)
	assert.Equal(t, []string{
		"💡 Your ETH balance is low. Consider consolidating wallets.",
		"🔍 Try using the PRVX Mixer to anonymize large transfers.",
	}, domain.TipTexts(tips))
}
