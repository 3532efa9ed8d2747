// Package plan assigns release target versions to test cases.
package plan

import (
	"log/slog"
	"slices"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// Cycle is the number of minor releases after which a targeted test case
// is brought back into a release.
const Cycle = 3

// Addition is a target version planned for one test case.
type Addition struct {
	Test    testcase.TestCase
	Version string
}

// Targets is the target list of the test case once the addition is applied.
func (a Addition) Targets() []string {
	return append(slices.Clone(a.Test.Targets), a.Version)
}

// Eligible reports whether a test case takes part in automatic planning.
func Eligible(tc testcase.TestCase) bool {
	return !tc.IsAutomated() && !tc.IsPerRelease() && !tc.IsPerBuild() && !tc.IsManualSelection()
}

// Release plans target for every eligible test case whose latest target on
// the same major version is at least Cycle minor releases old. Only minor
// releases can be planned.
func Release(tests []testcase.TestCase, target Version, logger *slog.Logger) ([]Addition, error) {
	if target.Patch != 0 {
		return nil, testcase.Preconditionf("the plan release cmd can be used only for minor release, got %s", target)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var additions []Addition
	for _, tc := range tests {
		if !Eligible(tc) {
			continue
		}
		if LatestMinor(tc, target.Major, logger)+Cycle <= target.Minor {
			additions = append(additions, Addition{Test: tc, Version: target.String()})
		}
	}
	return additions, nil
}

// LatestMinor returns the highest minor version among the targets of tc
// sharing major, or -Cycle when there is none. Unparseable targets are
// logged and ignored.
func LatestMinor(tc testcase.TestCase, major int, logger *slog.Logger) int {
	latest := -Cycle
	for _, t := range tc.Targets {
		v, err := ParseVersion(t)
		if err != nil {
			if logger != nil {
				logger.Error("failed to parse version in test case", "file", tc.File, "error", err)
			}
			continue
		}
		if v.Major != major {
			continue
		}
		if v.Minor > latest {
			latest = v.Minor
		}
	}
	return latest
}

// For plans target for every eligible test case with component that does
// not already target it.
func For(tests []testcase.TestCase, target, component string) []Addition {
	var additions []Addition
	for _, tc := range tests {
		if !Eligible(tc) {
			continue
		}
		if slices.Contains(tc.Components, component) && !slices.Contains(tc.Targets, target) {
			additions = append(additions, Addition{Test: tc, Version: target})
		}
	}
	return additions
}
