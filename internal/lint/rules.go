package lint

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/rocketship-ai/casekit/internal/plan"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

var (
	automationRegex = regexp.MustCompile(`^[A-Z]+-[0-9]+$`)
	sectionRegex    = regexp.MustCompile(`^\s*##\s+(.*?)\s*$`)
)

// DefaultRules returns the full rule set in reporting order.
func DefaultRules(v Vocabulary) []Rule {
	return []Rule{
		AutomationRule(),
		CategoriesRule(v.Categories),
		ComponentsRule(v.Components),
		DuplicateIDsRule(),
		EnvironmentsRule(v.Environments),
		FileNamesRule(),
		MandatoryEnvironmentRule(),
		OccurrenceRule(),
		ProductsRule(v.Products),
		SchemaRule(),
		SectionsRule(v.Sections),
		TagsRule(v.Tags),
		TargetsRule(),
	}
}

// Default creates a linter with DefaultRules.
func Default(v Vocabulary) *Linter {
	return New(DefaultRules(v)...)
}

// DuplicateIDsRule reports every reuse of an id within one product, naming
// the file that used it first.
func DuplicateIDsRule() Rule {
	return CorpusRule("duplicate-ids", func(tests []testcase.TestCase) []Violation {
		type key struct{ product, id string }
		first := map[key]testcase.TestCase{}
		var out []Violation
		for _, tc := range tests {
			k := key{tc.Product, tc.ID}
			prev, seen := first[k]
			if !seen {
				first[k] = tc
				continue
			}
			out = append(out, Violation{
				Rule:    "duplicate-ids",
				File:    tc.File,
				Message: fmt.Sprintf("the id: %s is duplicated in '%s' and in '%s'", tc.ID, prev.File, tc.File),
			})
		}
		return out
	})
}

// FileNamesRule compares each file name with the canonical one.
func FileNamesRule() Rule {
	return TestRule("file-names", func(tc testcase.TestCase) []string {
		if tc.Variant {
			return nil
		}
		desired := testcase.DesiredFileName(tc)
		current := filepath.Base(tc.File)
		if current != desired {
			return []string{fmt.Sprintf("%s should be renamed to %s", current, desired)}
		}
		return nil
	})
}

func CategoriesRule(categories []string) Rule {
	return TestRule("categories", func(tc testcase.TestCase) []string {
		return checkMembers("category", []string{tc.Category}, categories, "valid categories are")
	})
}

func ComponentsRule(components []string) Rule {
	return TestRule("components", func(tc testcase.TestCase) []string {
		return checkMembers("components", tc.Components, components, "valid components are")
	})
}

func EnvironmentsRule(environments []string) Rule {
	return TestRule("environments", func(tc testcase.TestCase) []string {
		return checkMembers("environments", tc.Environments, environments, "valid environments are")
	})
}

func TagsRule(tags []string) Rule {
	return TestRule("tags", func(tc testcase.TestCase) []string {
		return checkMembers("tags", tc.Tags, tags, "valid tags are")
	})
}

func ProductsRule(products []string) Rule {
	return TestRule("products", func(tc testcase.TestCase) []string {
		return checkMembers("product", []string{tc.Product}, products, "valid products are")
	})
}

// AutomationRule checks that automation tickets look like Jira keys.
func AutomationRule() Rule {
	return TestRule("automation", func(tc testcase.TestCase) []string {
		return checkPattern("automation", tc.Automation, automationRegex, "the automation ticket must respect the jira format")
	})
}

// TargetsRule checks that target versions are MAJOR.MINOR.PATCH.
func TargetsRule() Rule {
	return TestRule("targets", func(tc testcase.TestCase) []string {
		var msgs []string
		for _, t := range tc.Targets {
			if v, err := plan.ParseVersion(t); err != nil || v.String() != t {
				msgs = append(msgs, fmt.Sprintf("invalid targets: %s, the target version must respect this format: MAJOR.MINOR.PATCH", t))
			}
		}
		return msgs
	})
}

// MandatoryEnvironmentRule requires an environment on every manual test case.
func MandatoryEnvironmentRule() Rule {
	return TestRule("mandatory-environment", func(tc testcase.TestCase) []string {
		if !tc.IsAutomated() && len(tc.Environments) == 0 {
			return []string{"at least one environment must be set for each not automated test cases"}
		}
		return nil
	})
}

// OccurrenceRule requires each manual test case to be exactly one of
// per-build, per-release or targeted.
func OccurrenceRule() Rule {
	return TestRule("occurrence", func(tc testcase.TestCase) []string {
		if tc.IsAutomated() || tc.IsManualSelection() {
			return nil
		}

		perBuild, perRelease, targeted := tc.IsPerBuild(), tc.IsPerRelease(), len(tc.Targets) > 0
		switch {
		case perBuild && perRelease:
			return []string{"can not be per-build and per-release at the same time"}
		case perBuild && targeted:
			return []string{"can not be per-build and have a target version"}
		case perRelease && targeted:
			return []string{"can not be per-release and have a target version"}
		case !perBuild && !perRelease && !targeted:
			return []string{"must have a target version or be a per-release or per-build test case"}
		}
		return nil
	})
}

// SectionsRule restricts level-2 headings to the allowed set and requires
// a Steps section on manual test cases.
func SectionsRule(allowed []string) Rule {
	return TestRule("sections", func(tc testcase.TestCase) []string {
		var sections []string
		for _, line := range strings.Split(tc.Content, "\n") {
			if m := sectionRegex.FindStringSubmatch(line); m != nil {
				sections = append(sections, m[1])
			}
		}

		var msgs []string
		for _, s := range sections {
			if !slices.Contains(allowed, s) {
				msgs = append(msgs, fmt.Sprintf("invalid section: %s, valid sections are: %s", s, strings.Join(allowed, ",")))
			}
		}
		if !tc.IsAutomated() && !slices.Contains(sections, testcase.StepsSection) {
			msgs = append(msgs, fmt.Sprintf("the %s section is not defined", testcase.StepsSection))
		}
		return msgs
	})
}

// SchemaRule validates the raw front matter of every file once.
func SchemaRule() Rule {
	return CorpusRule("schema", func(tests []testcase.TestCase) []Violation {
		checked := map[string]bool{}
		var out []Violation
		for _, tc := range tests {
			if checked[tc.File] {
				continue
			}
			checked[tc.File] = true

			for _, msg := range schemaProblems(tc.File) {
				out = append(out, Violation{Rule: "schema", File: tc.File, Message: msg})
			}
		}
		return out
	})
}

func schemaProblems(file string) []string {
	doc, err := testcase.ReadDocument(file)
	if err != nil {
		return []string{err.Error()}
	}
	raw, err := doc.Raw()
	if err != nil {
		return []string{err.Error()}
	}
	problems, err := testcase.ValidateFrontMatter(raw)
	if err != nil {
		return []string{err.Error()}
	}
	return problems
}

func checkMembers(field string, values, allowed []string, tip string) []string {
	var msgs []string
	for _, v := range values {
		if !slices.Contains(allowed, v) {
			msgs = append(msgs, fmt.Sprintf("invalid %s: %s, %s: %s", field, v, tip, strings.Join(allowed, ",")))
		}
	}
	return msgs
}

func checkPattern(field string, values []string, re *regexp.Regexp, tip string) []string {
	var msgs []string
	for _, v := range values {
		if !re.MatchString(v) {
			msgs = append(msgs, fmt.Sprintf("invalid %s: %s, %s: %s", field, v, tip, re.String()))
		}
	}
	return msgs
}
