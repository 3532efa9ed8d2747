package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rocketship-ai/casekit/internal/export"
	"github.com/rocketship-ai/casekit/internal/filter"
	"github.com/rocketship-ai/casekit/internal/publish"
)

func newExportCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selected test cases",
	}
	cmd.AddCommand(newExportCSVCmd(o), newExportJSONCmd(o))
	return cmd
}

func newExportCSVCmd(o *options) *cobra.Command {
	var f filterFlags
	var output string

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export test cases as CSV",
		Long: `Write the selected test cases as CSV with the columns ID, Category,
Title, Tags, Environments, Components, Targets, Estimate, Automation,
Link and Runs link.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, err := o.selectCases(&f)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return export.CSV(w, tests, o.runsURL())
			}, len(tests))
		},
	}

	addFilterFlags(cmd, &f)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newExportJSONCmd(o *options) *cobra.Command {
	var f filterFlags
	var output, query string

	cmd := &cobra.Command{
		Use:   "json",
		Short: "Export test cases as JSON",
		Long: `Write the selected test cases as a JSON array. --query runs a jq
expression over the array and writes its results instead.

Examples:
  casekit export json --product rhoam
  casekit export json --query 'map(.estimate // 0) | add'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var q *filter.Query
			if query != "" {
				var err error
				if q, err = filter.ParseQuery(query); err != nil {
					return err
				}
			}

			tests, err := o.selectCases(&f)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return export.JSON(w, tests, q)
			}, len(tests))
		},
	}

	addFilterFlags(cmd, &f)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&query, "query", "", "jq expression applied to the exported array")
	return cmd
}

// runsURL is the Jira search listing the tasks of a test case, minus the id.
func (o *options) runsURL() string {
	jql := fmt.Sprintf("labels = %s AND summary ~ ", publish.TaskLabel)
	return strings.TrimRight(o.cfg.Jira.URL, "/") + "/issues/?jql=" + url.QueryEscape(jql)
}

func writeOutput(stdout io.Writer, path string, write func(io.Writer) error, count int) error {
	if path == "" {
		return write(stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	Logger.Info("exported test cases", "count", count, "file", path)
	return nil
}
