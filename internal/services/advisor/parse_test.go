package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTips(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "dash and numbered bullets",
			input:    "- Use a new address\n2. Avoid reuse\n\n",
			expected: []string{"🤖 Use a new address", "🤖 Avoid reuse"},
		},
		{
			name:     "unicode bullets and crlf",
			input:    "• Rotate addresses\r\n  • Use a hardware wallet  \r\n",
			expected: []string{"🤖 Rotate addresses", "🤖 Use a hardware wallet"},
		},
		{
			name:     "marker only lines",
			input:    "1.\n-\n•\n3. Stake PRVX",
			expected: []string{"🤖 Stake PRVX"},
		},
		{
			name:     "plain lines",
			input:    "Split funds across wallets",
			expected: []string{"🤖 Split funds across wallets"},
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			input:    "  \n\t\n ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTips(tt.input))
		})
	}
}
