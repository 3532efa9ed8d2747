package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rocketship-ai/casekit/internal/plan"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

type planFlags struct {
	product string
	target  string
	dryRun  bool
}

func addPlanFlags(cmd *cobra.Command, f *planFlags) {
	cmd.Flags().StringVar(&f.product, "product", "", "Product to plan (default default_product)")
	cmd.Flags().StringVar(&f.target, "target", "", "Target version to add")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Print the additions without writing them")
	_ = cmd.MarkFlagRequired("target")
}

func newPlanCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Add release targets to test cases",
	}
	cmd.AddCommand(newPlanReleaseCmd(o), newPlanForCmd(o))
	return cmd
}

func newPlanReleaseCmd(o *options) *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Plan a minor release",
		Long: fmt.Sprintf(`Add the target to every manual test case of the product that was not
targeted in the last %d minor releases of the same major version.

Example:
  casekit plan release --product rhoam --target 1.4.0 --dry-run`, plan.Cycle),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := plan.ParseVersion(f.target)
			if err != nil {
				return testcase.Preconditionf("%v", err)
			}
			tests, err := o.loader().Load(o.product(f.product))
			if err != nil {
				return err
			}
			additions, err := plan.Release(tests, target, Logger)
			if err != nil {
				return err
			}
			return o.applyPlan(cmd.OutOrStdout(), additions, f.dryRun)
		},
	}

	addPlanFlags(cmd, &f)
	return cmd
}

func newPlanForCmd(o *options) *cobra.Command {
	var f planFlags
	var component string

	cmd := &cobra.Command{
		Use:   "for",
		Short: "Plan every test case of a component",
		Long: `Add the target to every manual test case of the product covering the
component.

Example:
  casekit plan for --product rhmi --target 2.1.0 --component product-3scale`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := plan.ParseVersion(f.target)
			if err != nil {
				return testcase.Preconditionf("%v", err)
			}
			tests, err := o.loader().Load(o.product(f.product))
			if err != nil {
				return err
			}
			return o.applyPlan(cmd.OutOrStdout(), plan.For(tests, target.String(), component), f.dryRun)
		},
	}

	addPlanFlags(cmd, &f)
	cmd.Flags().StringVar(&component, "component", "", "Component the test cases must cover")
	_ = cmd.MarkFlagRequired("component")
	return cmd
}

func (o *options) product(flag string) string {
	if flag != "" {
		return flag
	}
	return o.cfg.DefaultProduct
}

func (o *options) applyPlan(out io.Writer, additions []plan.Addition, dryRun bool) error {
	applier := &plan.Applier{
		Writer: testcase.FileWriter{},
		DryRun: dryRun,
		Logger: Logger,
		Report: func(a plan.Addition) {
			fmt.Fprintf(out, "add target %s to %s - %s (%s)\n", color.CyanString(a.Version), a.Test.ID, a.Test.Title, a.Test.File)
		},
	}
	if err := applier.Apply(additions); err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(out, "%d test case(s) would be updated\n", len(additions))
	} else {
		fmt.Fprintf(out, "%s %d test case(s) updated\n", color.GreenString("✓"), len(additions))
	}
	return nil
}
