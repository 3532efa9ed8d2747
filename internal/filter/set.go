package filter

import (
	"errors"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// Set combines every filter surface. Zero values do not constrain.
type Set struct {
	Tags        []string
	Fields      Fields
	Query       *Query
	Environment string
	Target      string
}

// Validate checks that the release filter arguments come as a pair.
func (s Set) Validate() error {
	if (s.Environment == "") != (s.Target == "") {
		return testcase.Preconditionf("the release filter needs both an environment and a target")
	}
	if s.Fields != nil {
		if err := s.Fields.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply runs the filters in order: tags, fields, release, query.
func (s Set) Apply(tests []testcase.TestCase) ([]testcase.TestCase, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	out := tests
	if len(s.Tags) > 0 {
		out = ByTags(out, s.Tags)
	}
	if len(s.Fields) > 0 {
		var err error
		if out, err = ByFields(out, s.Fields); err != nil {
			return nil, err
		}
	}
	if s.Environment != "" {
		out = Release(out, s.Environment, s.Target)
	}
	if s.Query != nil {
		var err error
		if out, err = ByQuery(out, s.Query); err != nil {
			return nil, errors.Join(errors.New("query filter failed"), err)
		}
	}
	return out, nil
}
