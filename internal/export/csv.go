// Package export writes test cases as CSV or JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// Columns is the CSV header.
var Columns = []string{
	"ID", "Category", "Title", "Tags", "Environments", "Components",
	"Targets", "Estimate", "Automation", "Link", "Runs link",
}

// CSV writes one row per test case. runsURL, when not empty, is the
// prefix of a search link listing the previous runs of a case; the
// escaped id is appended to it.
func CSV(w io.Writer, tests []testcase.TestCase, runsURL string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, t := range tests {
		estimate := ""
		if t.Estimate != nil {
			estimate = strconv.FormatFloat(*t.Estimate, 'f', -1, 64)
		}
		runs := ""
		if runsURL != "" {
			runs = runsURL + url.QueryEscape(t.ID)
		}

		row := []string{
			t.ID,
			t.Category,
			t.Title,
			strings.Join(t.Tags, ", "),
			strings.Join(t.Environments, ", "),
			strings.Join(t.Components, ", "),
			strings.Join(t.Targets, ", "),
			estimate,
			strings.Join(t.Automation, ", "),
			t.URL,
			runs,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
