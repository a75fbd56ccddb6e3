package memory

import (
	"fmt"
	"strings"
)

// Render joins turns into a single context block, one "Role: content" line per
// turn, preserving the chronological order produced by retrieval.
func Render(turns []Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, fmt.Sprintf("%s: %s", t.Role, t.Content))
	}
	return strings.Join(lines, "\n")
}
