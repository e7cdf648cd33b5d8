package domain

import "strings"

// NormalizeModelName strips deployment prefixes from a completion model name
// so reports show the bare model. "gpt://folder/yandexgpt/rc" becomes "yandexgpt",
// surrounding whitespace is dropped and plain names are returned unchanged.
func NormalizeModelName(model string) string {
	model = strings.TrimSpace(model)
	_, rest, ok := strings.Cut(model, "gpt://")
	if !ok {
		return model
	}
	_, name, ok := strings.Cut(rest, "/")
	if !ok {
		return model
	}
	name, _, _ = strings.Cut(name, "/")
	return name
}
