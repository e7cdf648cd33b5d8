package advisor

import (
	"context"

	"github.com/pkg/errors"
	"github.com/privacyx/guardian/config"
	"github.com/privacyx/guardian/internal/clients"
	"github.com/privacyx/guardian/internal/domain"
	"github.com/privacyx/guardian/internal/services/promptbuilder"
	"go.uber.org/zap"
)

// Placeholder tips returned instead of advice. The list handed back is never empty.
const (
	MissingKeyTip   = "⚠️ API key missing"
	FailedTip       = "⚠️ Failed to fetch AI tips."
	NoActionableTip = AITipPrefix + "No actionable AI tips generated."
)

// LoadingFunc receives the loading flag: true when a request starts, false when it ends.
type LoadingFunc func(loading bool)

// AIAdvisor asks the completion service for personalised tips.
type AIAdvisor struct {
	logger        *zap.Logger
	credential    config.Credential
	llmClient     clients.LLMClient
	promptBuilder *promptbuilder.PromptBuilder
}

// NewAIAdvisor creates an AIAdvisor. An absent credential short-circuits every request.
func NewAIAdvisor(logger *zap.Logger, credential config.Credential, llmClient clients.LLMClient, promptBuilder *promptbuilder.PromptBuilder) *AIAdvisor {
	return &AIAdvisor{
		logger:        logger,
		credential:    credential,
		llmClient:     llmClient,
		promptBuilder: promptBuilder,
	}
}

// RequestTips returns AI tips for the balances. Failures are logged and turned into
// a single placeholder tip; setLoading is reset on every exit path.
func (a *AIAdvisor) RequestTips(ctx context.Context, address string, balances []domain.Balance, setLoading LoadingFunc) []domain.Tip {
	if setLoading == nil {
		setLoading = func(bool) {}
	}

	if !a.credential.Present() {
		a.logger.Warn("AI tips skipped, completion API key is not configured")
		return []domain.Tip{domain.AITip(MissingKeyTip)}
	}

	setLoading(true)
	defer setLoading(false)

	reply, err := a.llmClient.Complete(ctx, a.promptBuilder.AdviceMessages(address, balances))
	if err != nil {
		if errors.Is(err, clients.ErrNoReply) {
			a.logger.Warn("AI returned no choices", zap.String("address", address))
			return []domain.Tip{domain.AITip(NoActionableTip)}
		}
		a.logger.Error("Failed to get AI tips", zap.String("address", address), zap.Error(err))
		return []domain.Tip{domain.AITip(FailedTip)}
	}

	lines := ParseTips(reply.Content)
	if len(lines) == 0 {
		a.logger.Info("AI reply contained no actionable lines", zap.String("address", address))
		return []domain.Tip{domain.AITip(NoActionableTip)}
	}

	tips := make([]domain.Tip, 0, len(lines))
	for _, line := range lines {
		tips = append(tips, domain.AITip(line))
	}

	a.logger.Info("AI tips generated", zap.String("address", address), zap.Int("count", len(tips)))
	return tips
}
