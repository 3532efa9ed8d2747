// Package filter selects subsets of test cases.
package filter

import (
	"strings"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// NegationPrefix marks a tag or value that must be absent.
const NegationPrefix = "^"

// ByTags keeps the test cases that satisfy every token: a bare tag must be
// present, a tag prefixed with ^ must be absent.
func ByTags(tests []testcase.TestCase, tokens []string) []testcase.TestCase {
	var out []testcase.TestCase
	for _, tc := range tests {
		if matchTags(tc, tokens) {
			out = append(out, tc)
		}
	}
	return out
}

func matchTags(tc testcase.TestCase, tokens []string) bool {
	for _, token := range tokens {
		if tag, negated := strings.CutPrefix(token, NegationPrefix); negated {
			if tc.HasTag(tag) {
				return false
			}
		} else if !tc.HasTag(token) {
			return false
		}
	}
	return true
}

// ParseTagList splits a comma separated tag list, dropping empty tokens.
func ParseTagList(s string) []string {
	var tokens []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
