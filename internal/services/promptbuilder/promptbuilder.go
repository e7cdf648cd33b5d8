// Package promptbuilder composes the text sent to the completion service:
// the per-wallet advisory prompt and the chat persona.
package promptbuilder

import (
	"fmt"
	"strings"

	"github.com/privacyx/guardian/internal/domain"
	"github.com/samber/lo"
)

// AssistantName display name of the assistant.
const AssistantName = "Privacyx Guardian"

// SystemPrompt fixed system message opening every chat session.
const SystemPrompt = `You are Privacyx Guardian, a Web3 privacy assistant.
Help users protect their on-chain privacy: address hygiene, avoiding address reuse,
cold storage, staking and mixing with PrivacyX (PRVX), and safe wallet practices.
Be concise and practical. Never ask for private keys or seed phrases.`

// Greeting first assistant message of every chat session.
const Greeting = "Hello! I’m Privacyx Guardian. How can I help you with your on-chain privacy today?"

const defaultBullets = 3

// PromptBuilder builds advisory prompts for an address and its balances.
type PromptBuilder struct {
	bullets int
}

// NewPromptBuilder creates a PromptBuilder asking for the given number of bullet points.
func NewPromptBuilder(bullets int) *PromptBuilder {
	if bullets < 1 {
		bullets = defaultBullets
	}
	return &PromptBuilder{bullets: bullets}
}

// BuildAdvicePrompt embeds the address and a flattened balance summary.
func (pb *PromptBuilder) BuildAdvicePrompt(address string, balances []domain.Balance) string {
	return fmt.Sprintf(
		"You are a Web3 privacy expert. Wallet: %s. Tokens: %s. Return %d bullet points with personalized advice.",
		address, SummarizeBalances(balances), pb.bullets,
	)
}

// AdviceMessages wraps the advisory prompt as a single user turn.
func (pb *PromptBuilder) AdviceMessages(address string, balances []domain.Balance) []domain.ChatMessage {
	return []domain.ChatMessage{{Role: domain.RoleUser, Content: pb.BuildAdvicePrompt(address, balances)}}
}

// SummarizeBalances renders balances as "ETH: 2.5, PRVX: 10.0000".
func SummarizeBalances(balances []domain.Balance) string {
	parts := lo.Map(balances, func(b domain.Balance, _ int) string {
		return fmt.Sprintf("%s: %s", b.Symbol, b.Amount)
	})
	return strings.Join(parts, ", ")
}

// ChatSeed returns the transcript every chat session starts from.
func ChatSeed() []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: SystemPrompt},
		{Role: domain.RoleAssistant, Content: Greeting},
	}
}
