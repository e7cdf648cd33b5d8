package advisor

import (
	"regexp"
	"strings"
)

// AITipPrefix marks tips produced by the completion service.
const AITipPrefix = "🤖 "

// bulletMarker matches a leading run of dashes, bullets, digits and dots.
// Numbering styles outside this set (e.g. "1)" or "a.") are left in place.
var bulletMarker = regexp.MustCompile(`^[-•\d.]+\s*`)

// ParseTips splits a free-text reply into tip lines: blank lines are dropped,
// leading bullet/numbering markers stripped and lines left empty discarded.
func ParseTips(text string) []string {
	var tips []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cleaned := bulletMarker.ReplaceAllString(line, "")
		if cleaned == "" {
			continue
		}
		tips = append(tips, AITipPrefix+cleaned)
	}
	return tips
}
