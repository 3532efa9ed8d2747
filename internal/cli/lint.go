package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rocketship-ai/casekit/internal/lint"
)

func newLintCmd(o *options) *cobra.Command {
	var watch, listRules bool

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Validate every test case",
		Long: `Run every lint rule over the test case corpus and print one line per
violation. Exits with status 1 when any violation is found.

Examples:
  casekit lint                   # Lint the configured tests directory
  casekit lint --dir ./tests     # Lint another directory
  casekit lint --watch           # Lint again on every change
  casekit lint --list-rules      # Show the rules that are run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if listRules {
				for _, rule := range lint.Default(o.vocabulary()).Rules() {
					fmt.Fprintln(out, rule.Name())
				}
				return nil
			}
			if watch {
				return watchTree(cmd.Context(), o.cfg.TestsDir, func() {
					violations := o.lint()
					printViolations(out, violations)
				})
			}

			violations := o.lint()
			printViolations(out, violations)
			if len(violations) > 0 {
				return fmt.Errorf("found %d violation(s)", len(violations))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Lint again whenever a test case changes")
	cmd.Flags().BoolVar(&listRules, "list-rules", false, "Print the names of the lint rules and exit")
	return cmd
}

func (o *options) vocabulary() lint.Vocabulary {
	v := lint.DefaultVocabulary()
	if len(o.cfg.Products) > 0 {
		v.Products = o.cfg.Products
	}
	return v
}

// lint loads the corpus leniently so broken documents become violations.
func (o *options) lint() []lint.Violation {
	tests, errs := o.loader().LoadAll("")
	violations := lint.LoadViolations(errs)
	violations = append(violations, lint.Default(o.vocabulary()).Lint(tests)...)

	Logger.Info("lint complete", "files", countFiles(tests)+len(errs), "violations", len(violations))
	return violations
}

func printViolations(w io.Writer, violations []lint.Violation) {
	for _, v := range violations {
		fmt.Fprintln(w, v.String())
	}
	if len(violations) == 0 {
		fmt.Fprintf(w, "%s no violations\n", color.GreenString("✓"))
	}
}
