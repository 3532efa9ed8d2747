package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rocketship-ai/casekit/internal/credential"
	"github.com/rocketship-ai/casekit/internal/filter"
	"github.com/rocketship-ai/casekit/internal/jira"
	"github.com/rocketship-ai/casekit/internal/publish"
)

// addJiraFlags registers the Jira credential flags.
func addJiraFlags(cmd *cobra.Command, creds *credential.Credentials) {
	cmd.Flags().StringVar(&creds.Token, "jira-token", "", "Jira personal access token (or JIRA_TOKEN)")
	cmd.Flags().StringVar(&creds.Username, "jira-username", "", "Jira username (or JIRA_USERNAME)")
	cmd.Flags().StringVar(&creds.Password, "jira-password", "", "Jira password (or JIRA_PASSWORD)")
}

func (o *options) jiraClient(ctx context.Context, flags credential.Credentials) (*jira.Client, error) {
	creds, err := o.jiraCredentials(ctx, flags)
	if err != nil {
		return nil, err
	}
	return jira.NewClient(ctx, jira.Config{
		BaseURL:  o.cfg.Jira.URL,
		Token:    creds.Token,
		Username: creds.Username,
		Password: creds.Password,
	}), nil
}

// findEpic fetches key and checks it is an epic.
func findEpic(ctx context.Context, client *jira.Client, key string) (*jira.Issue, error) {
	issue, err := client.FindIssue(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := jira.AssertEpic(issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func newJiraCmd(o *options) *cobra.Command {
	var (
		creds        credential.Credentials
		epicKey      string
		previousEpic string
		environment  string
		product      string
		dryRun       bool
		autoResolve  bool
	)

	cmd := &cobra.Command{
		Use:   "jira",
		Short: "Create a Jira task for each test case of a release",
		Long: `Create one task per test case of the release under the epic. The
release is the epic's Fix Version; the test cases are those of the
product and environment in that release.

Tasks are linked to the task of the same test case in --previous-epic.
With --auto-resolve, tasks whose previous run passed or was skipped are
resolved right away, unless the test case runs on every build.

Example:
  casekit jira --epic INTLY-1000 --previous-epic INTLY-900 --environment osd-fresh-install --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := o.jiraClient(ctx, creds)
			if err != nil {
				return err
			}

			issue, err := client.FindIssue(ctx, epicKey)
			if err != nil {
				return err
			}
			epic, err := jira.ReadEpic(issue, o.cfg.Jira.Fields.IDs())
			if err != nil {
				return err
			}

			var previousRuns []jira.TestRun
			if previousEpic != "" {
				prev, err := findEpic(ctx, client, previousEpic)
				if err != nil {
					return err
				}
				if previousRuns, err = jira.LoadTestRuns(ctx, client, jira.EpicJQL(prev.Key), Logger); err != nil {
					return err
				}
				Logger.Info("loaded previous runs", "epic", prev.Key, "runs", len(previousRuns))
			}

			tests, err := o.loader().Load(o.product(product))
			if err != nil {
				return err
			}
			tests = filter.Release(tests, environment, epic.FixVersion.Name)
			Logger.Info("selected test cases", "count", len(tests), "target", epic.FixVersion.Name, "environment", environment)

			out := cmd.OutOrStdout()
			publisher := &publish.Publisher{
				Tracker:           client,
				Epic:              epic,
				Fields:            o.cfg.Jira.Fields.IDs(),
				Project:           o.cfg.Jira.Project,
				Security:          o.cfg.Jira.Security,
				GuidelinesURL:     o.cfg.GuidelinesURL(),
				ResolveTransition: o.cfg.Jira.ResolveTransition,
				PreviousRuns:      previousRuns,
				AutoResolve:       autoResolve,
				DryRun:            dryRun,
				Logger:            Logger,
				Report: func(t publish.Task) {
					switch {
					case dryRun:
						fmt.Fprintf(out, "will create task '%s' in project '%s'\n", t.Summary, t.Project)
					case t.Resolved:
						fmt.Fprintf(out, "%s '%s' %s\n", color.GreenString(t.Key), t.Summary, color.YellowString("(resolved)"))
					default:
						fmt.Fprintf(out, "%s '%s'\n", color.GreenString(t.Key), t.Summary)
					}
				},
			}

			tasks, err := publisher.Publish(ctx, tests)
			if err != nil {
				return err
			}
			Logger.Info("jira sync complete", "tasks", len(tasks), "dry_run", dryRun)
			return nil
		},
	}

	addJiraFlags(cmd, &creds)
	cmd.Flags().StringVar(&epicKey, "epic", "", "Key of the epic the tasks are created under")
	cmd.Flags().StringVar(&previousEpic, "previous-epic", "", "Key of the previous release epic to link to")
	cmd.Flags().StringVar(&environment, "environment", "", "Environment used to select the test cases")
	cmd.Flags().StringVar(&product, "product", "", "Product used to select the test cases (default default_product)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the tasks without creating them")
	cmd.Flags().BoolVar(&autoResolve, "auto-resolve", false, "Resolve tasks whose previous run passed or was skipped")
	_ = cmd.MarkFlagRequired("epic")
	_ = cmd.MarkFlagRequired("environment")
	return cmd
}
