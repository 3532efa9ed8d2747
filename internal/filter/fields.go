package filter

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// FieldFilter constrains one field: every Include value must be present and
// every Exclude value absent.
type FieldFilter struct {
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// Fields maps a field name to its constraint. All fields must match.
type Fields map[string]FieldFilter

type fieldAccessor struct {
	array bool
	get   func(testcase.TestCase) []string
}

var fieldAccessors = map[string]fieldAccessor{
	"id":           {get: func(t testcase.TestCase) []string { return []string{t.ID} }},
	"category":     {get: func(t testcase.TestCase) []string { return []string{t.Category} }},
	"title":        {get: func(t testcase.TestCase) []string { return []string{t.Title} }},
	"product":      {get: func(t testcase.TestCase) []string { return []string{t.Product} }},
	"tags":         {array: true, get: func(t testcase.TestCase) []string { return t.Tags }},
	"targets":      {array: true, get: func(t testcase.TestCase) []string { return t.Targets }},
	"environments": {array: true, get: func(t testcase.TestCase) []string { return t.Environments }},
	"components":   {array: true, get: func(t testcase.TestCase) []string { return t.Components }},
	"automation":   {array: true, get: func(t testcase.TestCase) []string { return t.Automation }},
	"require":      {array: true, get: func(t testcase.TestCase) []string { return t.Require }},
}

// FieldNames lists the fields a Fields filter accepts.
func FieldNames() []string {
	names := make([]string, 0, len(fieldAccessors))
	for name := range fieldAccessors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate rejects unknown field names.
func (f Fields) Validate() error {
	for name := range f {
		if _, ok := fieldAccessors[name]; !ok {
			return fmt.Errorf("unknown filter field %q, valid fields are: %s", name, strings.Join(FieldNames(), ", "))
		}
	}
	return nil
}

// Match reports whether tc satisfies every field constraint.
func (f Fields) Match(tc testcase.TestCase) bool {
	for name, ff := range f {
		acc, ok := fieldAccessors[name]
		if !ok {
			return false
		}
		values := acc.get(tc)
		for _, inc := range ff.Include {
			if !slices.Contains(values, inc) {
				return false
			}
		}
		for _, exc := range ff.Exclude {
			if slices.Contains(values, exc) {
				return false
			}
		}
	}
	return true
}

// ByFields keeps the test cases matching every field constraint.
func ByFields(tests []testcase.TestCase, fields Fields) ([]testcase.TestCase, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	var out []testcase.TestCase
	for _, tc := range tests {
		if fields.Match(tc) {
			out = append(out, tc)
		}
	}
	return out, nil
}

// ParseFieldFlags builds Fields from field=value and field=^value pairs.
func ParseFieldFlags(pairs []string) (Fields, error) {
	fields := Fields{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid filter %q, expected field=value or field=^value", pair)
		}
		ff := fields[name]
		if v, negated := strings.CutPrefix(value, NegationPrefix); negated {
			ff.Exclude = append(ff.Exclude, v)
		} else {
			ff.Include = append(ff.Include, value)
		}
		fields[name] = ff
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return fields, nil
}

// LoadFieldsFile reads a YAML mapping of field name to include/exclude lists.
func LoadFieldsFile(path string) (Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter file: %w", err)
	}
	fields := Fields{}
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal filter file %s: %w", path, err)
	}
	if err := fields.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fields, nil
}

// Merge adds the constraints of other to f.
func (f Fields) Merge(other Fields) Fields {
	out := Fields{}
	for _, src := range []Fields{f, other} {
		for name, ff := range src {
			cur := out[name]
			cur.Include = append(cur.Include, ff.Include...)
			cur.Exclude = append(cur.Exclude, ff.Exclude...)
			out[name] = cur
		}
	}
	return out
}
