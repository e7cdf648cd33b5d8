package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeModelName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "OpenAI model", input: "gpt-3.5-turbo", expected: "gpt-3.5-turbo"},
		{name: "Padded model", input: "  gpt-4o-mini ", expected: "gpt-4o-mini"},
		{name: "Folder scoped with version", input: "gpt://b1g8t5pmnjifaov0paff/yandexgpt/rc", expected: "yandexgpt"},
		{name: "Folder scoped", input: "gpt://folder/yandexgpt", expected: "yandexgpt"},
		{name: "Prefix without folder", input: "gpt://yandexgpt", expected: "gpt://yandexgpt"},
		{name: "Provider path kept", input: "deepseek/deepseek-v3", expected: "deepseek/deepseek-v3"},
		{name: "Empty string", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeModelName(tt.input))
		})
	}
}
