package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/privacyx/guardian/config"
	"github.com/privacyx/guardian/internal/clients"
	"github.com/privacyx/guardian/internal/domain"
	"github.com/privacyx/guardian/internal/services/promptbuilder"
	llmMock "github.com/privacyx/guardian/mocks/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const address = "0x1111111111111111111111111111111111111111"

var testBalances = []domain.Balance{
	{Symbol: "ETH", Amount: "2.5", Native: true},
	{Symbol: "PRVX", Amount: "10.0000"},
}

type loadingRecorder struct {
	states []bool
}

func (r *loadingRecorder) set(v bool) {
	r.states = append(r.states, v)
}

func newAdvisor(llm clients.LLMClient, key string) *AIAdvisor {
	return NewAIAdvisor(zap.NewNop(), config.NewCredential(key), llm, promptbuilder.NewPromptBuilder(3))
}

func TestAIAdvisor_MissingCredential(t *testing.T) {
	llm := llmMock.NewLLMClient(t)
	rec := &loadingRecorder{}

	tips := newAdvisor(llm, "").RequestTips(context.Background(), address, testBalances, rec.set)

	require.Len(t, tips, 1)
	assert.Equal(t, MissingKeyTip, tips[0].Text)
	llm.AssertNumberOfCalls(t, "Complete", 0)
	assert.Empty(t, rec.states)
}

func TestAIAdvisor_ParsesReply(t *testing.T) {
	llm := llmMock.NewLLMClient(t)
	expectedPrompt := []domain.ChatMessage{{
		Role:    domain.RoleUser,
		Content: "You are a Web3 privacy expert. Wallet: " + address + ". Tokens: ETH: 2.5, PRVX: 10.0000. Return 3 bullet points with personalized advice.",
	}}
	llm.On("Complete", mock.Anything, expectedPrompt).
		Return(domain.ChatMessage{Role: domain.RoleAssistant, Content: "- Use a new address\n2. Avoid reuse\n\n"}, nil).Once()
	rec := &loadingRecorder{}

	tips := newAdvisor(llm, "sk").RequestTips(context.Background(), address, testBalances, rec.set)

	assert.Equal(t, []string{"🤖 Use a new address", "🤖 Avoid reuse"}, domain.TipTexts(tips))
	for _, tip := range tips {
		assert.Equal(t, domain.TipOriginAI, tip.Origin)
	}
	assert.Equal(t, []bool{true, false}, rec.states)
}

func TestAIAdvisor_EmptyReply(t *testing.T) {
	for _, content := range []string{"", "   \n\t\n"} {
		llm := llmMock.NewLLMClient(t)
		llm.On("Complete", mock.Anything, mock.Anything).Return(domain.ChatMessage{Role: domain.RoleAssistant, Content: content}, nil).Once()
		rec := &loadingRecorder{}

		tips := newAdvisor(llm, "sk").RequestTips(context.Background(), address, testBalances, rec.set)

		assert.Equal(t, []string{NoActionableTip}, domain.TipTexts(tips))
		assert.Equal(t, []bool{true, false}, rec.states)
	}
}

func TestAIAdvisor_NoChoices(t *testing.T) {
	llm := llmMock.NewLLMClient(t)
	llm.On("Complete", mock.Anything, mock.Anything).Return(domain.ChatMessage{}, clients.ErrNoReply).Once()

	tips := newAdvisor(llm, "sk").RequestTips(context.Background(), address, testBalances, nil)

	assert.Equal(t, []string{NoActionableTip}, domain.TipTexts(tips))
}

func TestAIAdvisor_Failure(t *testing.T) {
	failures := []error{
		errors.New("HTTP request failed: connection refused"),
		&clients.APIError{StatusCode: 500},
		errors.New("failed to unmarshal response"),
	}

	for _, failure := range failures {
		llm := llmMock.NewLLMClient(t)
		llm.On("Complete", mock.Anything, mock.Anything).Return(domain.ChatMessage{}, failure).Once()
		rec := &loadingRecorder{}

		tips := newAdvisor(llm, "sk").RequestTips(context.Background(), address, testBalances, rec.set)

		assert.Equal(t, []string{FailedTip}, domain.TipTexts(tips))
		assert.Equal(t, []bool{true, false}, rec.states)
	}
}

func TestAIAdvisor_LoadingResetOnPanic(t *testing.T) {
	llm := llmMock.NewLLMClient(t)
	llm.On("Complete", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("transport exploded")
	}).Return(domain.ChatMessage{}, nil).Once()
	rec := &loadingRecorder{}

	assert.Panics(t, func() {
		newAdvisor(llm, "sk").RequestTips(context.Background(), address, testBalances, rec.set)
	})
	assert.Equal(t, []bool{true, false}, rec.states)
}
