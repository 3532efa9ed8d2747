package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rocketship-ai/casekit/internal/credential"
)

type checkResult struct {
	name     string
	ok       bool
	critical bool
	messages []string
}

// newDoctorCmd creates a doctor subcommand that inspects the configuration,
// the test case directory and the available credentials.
func newDoctorCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose casekit environment issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := o.runDoctorChecks(cmd.Context())
			out := cmd.OutOrStdout()
			criticalIssues := 0

			for _, res := range results {
				switch {
				case res.ok:
					_, _ = fmt.Fprintf(out, "[PASS] %s\n", res.name)
				case res.critical:
					_, _ = fmt.Fprintf(out, "[FAIL] %s\n", res.name)
					criticalIssues++
				default:
					_, _ = fmt.Fprintf(out, "[WARN] %s\n", res.name)
				}

				for _, msg := range res.messages {
					_, _ = fmt.Fprintf(out, "    %s\n", msg)
				}
			}

			if criticalIssues > 0 {
				return fmt.Errorf("doctor found %d critical issue(s)", criticalIssues)
			}

			_, _ = fmt.Fprintln(out, "All checks passed.")
			return nil
		},
	}

	return cmd
}

func (o *options) runDoctorChecks(ctx context.Context) []checkResult {
	return []checkResult{
		o.checkConfig(),
		o.checkTestsDir(),
		o.checkCredentials(ctx, credential.Jira),
		o.checkCredentials(ctx, credential.Polarion),
	}
}

func (o *options) checkConfig() checkResult {
	res := checkResult{name: "Configuration", ok: true}
	if o.cfg.File == "" {
		res.messages = []string{"no config file found, using defaults", "looked for " + localConfigFile + " and " + DefaultConfigPath()}
		return res
	}
	res.messages = []string{"using " + o.cfg.File}
	return res
}

func (o *options) checkTestsDir() checkResult {
	res := checkResult{name: "Test case directory", critical: true}

	info, err := os.Stat(o.cfg.TestsDir)
	switch {
	case os.IsNotExist(err):
		res.messages = []string{fmt.Sprintf("%s does not exist; set tests_dir or pass --dir", o.cfg.TestsDir)}
		return res
	case err != nil:
		res.messages = []string{fmt.Sprintf("failed to inspect %s: %v", o.cfg.TestsDir, err)}
		return res
	case !info.IsDir():
		res.messages = []string{fmt.Sprintf("%s is not a directory", o.cfg.TestsDir)}
		return res
	}

	tests, errs := o.loader().LoadAll("")
	res.messages = append(res.messages, fmt.Sprintf("%d test case(s) in %d file(s) under %s", len(tests), countFiles(tests), o.cfg.TestsDir))
	if len(errs) > 0 {
		res.critical = false
		res.messages = append(res.messages, fmt.Sprintf("%d file(s) failed to load, run 'casekit lint' for details", len(errs)))
		return res
	}
	res.ok = true
	return res
}

func (o *options) checkCredentials(ctx context.Context, system credential.System) checkResult {
	res := checkResult{name: displayName(system) + " credentials"}

	var err error
	if system == credential.Jira {
		_, err = o.jiraCredentials(ctx, credential.Credentials{})
	} else {
		_, err = o.polarionCredentials(ctx, credential.Credentials{})
	}
	if err != nil {
		res.messages = []string{err.Error()}
		return res
	}
	res.ok = true
	return res
}
