package cli

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

func newListCmd(o *options) *cobra.Command {
	var f filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the selected test cases",
		Long: `Print the test cases matching the filters as a table.

Examples:
  casekit list --product rhoam --tags ^automated
  casekit list --filter components=monitoring --filter tags=^per-build
  casekit list --environment osd-fresh-install --target 1.4.0
  casekit list --where '.estimate > 0.5'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, err := o.selectCases(&f)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"ID", "Product", "Category", "Title", "Tags", "Targets", "Estimate"})
			for _, tc := range tests {
				t.AppendRow(table.Row{
					tc.ID,
					tc.Product,
					tc.Category,
					tc.Title,
					strings.Join(tc.Tags, ", "),
					strings.Join(tc.Targets, ", "),
					formatEstimate(tc),
				})
			}
			t.AppendFooter(table.Row{"", "", "", "Total", len(tests), "", totalEstimate(tests)})
			t.Render()
			return nil
		},
	}

	addFilterFlags(cmd, &f)
	return cmd
}

func formatEstimate(tc testcase.TestCase) string {
	if tc.Estimate == nil {
		return ""
	}
	return hours(*tc.Estimate)
}

func totalEstimate(tests []testcase.TestCase) string {
	var total float64
	for _, tc := range tests {
		if tc.Estimate != nil {
			total += *tc.Estimate
		}
	}
	return hours(total)
}

func hours(h float64) string {
	s := strconv.FormatFloat(h, 'f', 2, 64)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	if s == "" {
		s = "0"
	}
	return s + "h"
}
