package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rocketship-ai/casekit/internal/filter"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

// JSON writes tests as an indented JSON array. A non-nil query is applied
// to the array and every value it yields is written instead.
func JSON(w io.Writer, tests []testcase.TestCase, query *filter.Query) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if query == nil {
		if tests == nil {
			tests = []testcase.TestCase{}
		}
		return enc.Encode(tests)
	}

	input, err := filter.ToJSONValue(tests)
	if err != nil {
		return err
	}
	values, err := query.Run(input)
	if err != nil {
		return err
	}
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode query result: %w", err)
		}
	}
	return nil
}
