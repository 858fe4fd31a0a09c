// Package filter strips model reasoning markup from response text at
// display and export time. Stored run results are never mutated.
package filter

import "regexp"

// thinkBlock matches one <think>...</think> span, across newlines, up to the
// nearest closing marker.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// RemoveThinkBlocks removes every non-overlapping <think>...</think> span.
// An opening marker with no matching close leaves the trailing text as-is;
// that mirrors the historical behavior and is pinned by tests.
func RemoveThinkBlocks(s string) string {
	return thinkBlock.ReplaceAllString(s, "")
}
