package filter

import (
	"slices"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// Release selects the manual test cases to run for target on environment.
// Automated cases are dropped, the environment must be declared, and then
// per-build and per-release cases always qualify while the rest need the
// exact target version.
func Release(tests []testcase.TestCase, environment, target string) []testcase.TestCase {
	var out []testcase.TestCase
	for _, tc := range tests {
		if InRelease(tc, environment, target) {
			out = append(out, tc)
		}
	}
	return out
}

// InRelease is the per test case predicate behind Release.
func InRelease(tc testcase.TestCase, environment, target string) bool {
	if tc.IsAutomated() {
		return false
	}
	if !slices.Contains(tc.Environments, environment) {
		return false
	}
	if tc.IsPerBuild() || tc.IsPerRelease() {
		return true
	}
	return slices.Contains(tc.Targets, target)
}
