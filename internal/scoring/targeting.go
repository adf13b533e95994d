package scoring

import (
	"strings"

	"golang.org/x/text/cases"
)

// foldCaser performs Unicode case folding so that "Pune", "PUNE" and "pune"
// compare equal regardless of how a tenant typed its target list.
var foldCaser = cases.Fold()

// Normalize canonicalizes a city or category token for comparison: trims
// surrounding whitespace, collapses inner runs of whitespace to a single
// space, and case-folds the result.
func Normalize(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return foldCaser.String(strings.Join(fields, " "))
}

// MatchesTarget evaluates one targeting predicate. An empty target list is
// unrestricted and admits any lead. A lead with no value for the dimension
// (empty string) can only match tenants with an empty target list.
func MatchesTarget(targets []string, value string) bool {
	if len(targets) == 0 {
		return true
	}
	want := Normalize(value)
	if want == "" {
		return false
	}
	for _, t := range targets {
		if Normalize(t) == want {
			return true
		}
	}
	return false
}
