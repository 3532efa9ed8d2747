// Package lint validates a corpus of test cases against a registry of
// independent rules.
package lint

import (
	"errors"
	"fmt"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// LoadRule names violations produced by documents that failed to parse.
const LoadRule = "load"

// Violation is one problem found in one file.
type Violation struct {
	Rule    string `json:"rule"`
	File    string `json:"file"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Rule, v.File, v.Message)
}

// Rule inspects the corpus and returns zero or more violations.
type Rule interface {
	Name() string
	Check(tests []testcase.TestCase) []Violation
}

// Linter runs every registered rule over the corpus.
type Linter struct {
	rules []Rule
}

// New creates a linter with the given rules, run in order.
func New(rules ...Rule) *Linter {
	return &Linter{rules: rules}
}

// Rules returns the registered rules.
func (l *Linter) Rules() []Rule {
	return l.rules
}

// Lint runs all rules and returns every violation. A violation reported
// more than once, which happens when a document expands to several
// records, is kept once.
func (l *Linter) Lint(tests []testcase.TestCase) []Violation {
	seen := map[Violation]bool{}
	var out []Violation
	for _, rule := range l.rules {
		for _, v := range rule.Check(tests) {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// LoadViolations converts document load errors into violations.
func LoadViolations(errs []error) []Violation {
	out := make([]Violation, 0, len(errs))
	for _, err := range errs {
		v := Violation{Rule: LoadRule, Message: err.Error()}
		var de *testcase.DocumentError
		if errors.As(err, &de) {
			v.File = de.File
			v.Message = de.Err.Error()
		}
		out = append(out, v)
	}
	return out
}

type ruleFunc struct {
	name  string
	check func(tests []testcase.TestCase) []Violation
}

func (r ruleFunc) Name() string { return r.name }

func (r ruleFunc) Check(tests []testcase.TestCase) []Violation { return r.check(tests) }

// CorpusRule builds a rule from a function over the whole corpus.
func CorpusRule(name string, check func(tests []testcase.TestCase) []Violation) Rule {
	return ruleFunc{name: name, check: check}
}

// TestRule builds a rule that checks each test case on its own. The check
// returns one message per problem.
func TestRule(name string, check func(tc testcase.TestCase) []string) Rule {
	return ruleFunc{name: name, check: func(tests []testcase.TestCase) []Violation {
		var out []Violation
		for _, tc := range tests {
			for _, msg := range check(tc) {
				out = append(out, Violation{Rule: name, File: tc.File, Message: msg})
			}
		}
		return out
	}}
}
