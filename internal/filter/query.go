package filter

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// Query is a compiled jq expression evaluated against test case JSON.
type Query struct {
	source string
	code   *gojq.Code
}

// ParseQuery compiles a jq expression.
func ParseQuery(expr string) (*Query, error) {
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq expression %s: %w", expr, err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression %s: %w", expr, err)
	}
	return &Query{source: expr, code: code}, nil
}

// Run evaluates the query against v and returns every result.
func (q *Query) Run(v interface{}) ([]interface{}, error) {
	var results []interface{}
	iter := q.code.Run(v)
	for {
		r, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := r.(error); ok {
			return nil, fmt.Errorf("error evaluating jq expression %s: %w", q.source, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Match reports whether the first result of the query is truthy in the jq
// sense: anything but false and null.
func (q *Query) Match(tc testcase.TestCase) (bool, error) {
	doc, err := ToJSONValue(tc)
	if err != nil {
		return false, err
	}
	iter := q.code.Run(doc)
	r, ok := iter.Next()
	if !ok {
		return false, nil
	}
	if err, ok := r.(error); ok {
		return false, fmt.Errorf("error evaluating jq expression %s on %s: %w", q.source, tc.ID, err)
	}
	return r != nil && r != false, nil
}

// ByQuery keeps the test cases the query matches.
func ByQuery(tests []testcase.TestCase, q *Query) ([]testcase.TestCase, error) {
	var out []testcase.TestCase
	for _, tc := range tests {
		ok, err := q.Match(tc)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, tc)
		}
	}
	return out, nil
}

// ToJSONValue converts v into the generic form gojq operates on.
func ToJSONValue(v interface{}) (interface{}, error) {
	blob, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(blob, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return out, nil
}
