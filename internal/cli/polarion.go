package cli

import (
	"github.com/spf13/cobra"

	"github.com/rocketship-ai/casekit/internal/credential"
	"github.com/rocketship-ai/casekit/internal/jira"
	"github.com/rocketship-ai/casekit/internal/polarion"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

func addPolarionFlags(cmd *cobra.Command, creds *credential.Credentials, dumpOnly *bool) {
	cmd.Flags().StringVar(&creds.Username, "polarion-username", "", "Polarion username (or POLARION_USERNAME)")
	cmd.Flags().StringVar(&creds.Password, "polarion-password", "", "Polarion password (or POLARION_PASSWORD)")
	cmd.Flags().BoolVar(dumpOnly, "dump-only", false, "Print the XML document instead of uploading it")
}

func newPolarionCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "polarion",
		Short: "Upload test cases and test runs to Polarion",
	}
	cmd.AddCommand(newPolarionTestCaseCmd(o), newPolarionTestRunCmd(o))
	return cmd
}

func newPolarionTestCaseCmd(o *options) *cobra.Command {
	var creds credential.Credentials
	var dumpOnly bool

	cmd := &cobra.Command{
		Use:   "testcase",
		Short: "Upload all test cases to Polarion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, err := o.loader().Load("")
			if err != nil {
				return err
			}
			doc := polarion.NewTestCases(o.cfg.Polarion.ProjectID, uniqueIDs(tests))
			return o.upload(cmd, polarion.KindTestCase, doc, creds, dumpOnly)
		},
	}

	addPolarionFlags(cmd, &creds, &dumpOnly)
	return cmd
}

func newPolarionTestRunCmd(o *options) *cobra.Command {
	var creds, jiraCreds credential.Credentials
	var dumpOnly bool
	var epicKey string

	cmd := &cobra.Command{
		Use:   "testrun",
		Short: "Report the results of the manual tests of an epic to Polarion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := o.jiraClient(ctx, jiraCreds)
			if err != nil {
				return err
			}
			epic, err := findEpic(ctx, client, epicKey)
			if err != nil {
				return err
			}
			runs, err := jira.LoadTestRuns(ctx, client, jira.EpicJQL(epic.Key), Logger)
			if err != nil {
				return err
			}

			doc := polarion.NewTestRun(o.cfg.Polarion.ProjectID, epic.Fields.Summary, runs)
			if err := o.upload(cmd, polarion.KindXUnit, doc, creds, dumpOnly); err != nil {
				return err
			}
			if !dumpOnly {
				Logger.Warn("remember to set the Planned In version of the created test run")
			}
			return nil
		},
	}

	addPolarionFlags(cmd, &creds, &dumpOnly)
	addJiraFlags(cmd, &jiraCreds)
	cmd.Flags().StringVar(&epicKey, "epic", "", "Key of the epic containing the manual test tasks")
	_ = cmd.MarkFlagRequired("epic")
	return cmd
}

func (o *options) upload(cmd *cobra.Command, kind polarion.Kind, doc interface{}, flags credential.Credentials, dumpOnly bool) error {
	data, err := polarion.Marshal(doc)
	if err != nil {
		return err
	}
	if dumpOnly {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	ctx := cmd.Context()
	creds, err := o.polarionCredentials(ctx, flags)
	if err != nil {
		return err
	}
	return o.polarionClient(creds).Upload(ctx, kind, data)
}

func (o *options) polarionClient(creds credential.Credentials) *polarion.Client {
	c := polarion.NewClient(o.cfg.Polarion.URL, creds.Username, creds.Password)
	c.PollInterval = o.cfg.Polarion.PollInterval
	c.Logger = Logger
	return c
}

// uniqueIDs keeps the first record of each id, since a document shared by
// several products yields one record per product.
func uniqueIDs(tests []testcase.TestCase) []testcase.TestCase {
	seen := map[string]bool{}
	var out []testcase.TestCase
	for _, tc := range tests {
		if seen[tc.ID] {
			continue
		}
		seen[tc.ID] = true
		out = append(out, tc)
	}
	return out
}
