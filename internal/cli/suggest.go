package cli

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance bounds how far a typo may be from a known name and
// still be suggested.
const maxSuggestDistance = 3

// suggest returns the candidate closest to name by edit distance, or ""
// when none is within maxSuggestDistance.
func suggest(name string, candidates []string) string {
	name = strings.ToLower(name)
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// unknownError builds an ExitCommandError for an unresolvable name, with
// a "did you mean" hint when a close candidate exists.
func unknownError(what, name string, candidates []string) *ExitError {
	msg := fmt.Sprintf("unknown %s %q", what, name)
	if s := suggest(name, candidates); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return NewExitError(ExitCommandError, msg)
}
