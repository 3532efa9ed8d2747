package publish

import (
	"slices"
	"strings"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// Order returns tests in creation order: destructive cases first, then the
// rest, each group keeping its input order, adjusted so that every case
// comes after the cases it requires. Requirements must be part of tests
// and must not form a cycle.
func Order(tests []testcase.TestCase) ([]testcase.TestCase, error) {
	base := slices.Clone(tests)
	slices.SortStableFunc(base, func(a, b testcase.TestCase) int {
		switch {
		case a.IsDestructive() == b.IsDestructive():
			return 0
		case a.IsDestructive():
			return -1
		default:
			return 1
		}
	})

	present := make(map[string]bool, len(base))
	for _, tc := range base {
		present[tc.ID] = true
	}
	for _, tc := range base {
		for _, r := range tc.Require {
			if !present[r] {
				return nil, testcase.Preconditionf("the test case %s requires %s which is not part of this batch", tc.ID, r)
			}
		}
	}

	done := make(map[string]bool, len(base))
	ordered := make([]testcase.TestCase, 0, len(base))
	pending := base
	for len(pending) > 0 {
		next := -1
		for i, tc := range pending {
			if requirementsMet(tc, done) {
				next = i
				break
			}
		}
		if next < 0 {
			ids := make([]string, 0, len(pending))
			for _, tc := range pending {
				ids = append(ids, tc.ID)
			}
			return nil, testcase.Preconditionf("the test cases %s require each other", strings.Join(ids, ", "))
		}

		tc := pending[next]
		ordered = append(ordered, tc)
		done[tc.ID] = true
		pending = slices.Delete(slices.Clone(pending), next, next+1)
	}
	return ordered, nil
}

func requirementsMet(tc testcase.TestCase, done map[string]bool) bool {
	for _, r := range tc.Require {
		if r != tc.ID && !done[r] {
			return false
		}
	}
	return true
}
