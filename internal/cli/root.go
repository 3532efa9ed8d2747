package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rocketship-ai/casekit/internal/credential"
)

// options are shared by every command of one invocation.
type options struct {
	debug      bool
	configFile string
	envFile    string
	testsDir   string

	cfg         *Config
	credentials credential.Storage
}

// NewRootCmd creates a new root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{credentials: credential.NewKeyringStorage()})
}

func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "casekit",
		Short: "casekit manages manual test case documents",
		Long: `casekit lints, filters and plans the Markdown test case corpus and
publishes it to Jira and Polarion.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.debug {
				_ = os.Setenv(logEnv, "DEBUG")
			}

			if o.envFile != "" {
				env, err := loadEnvFile(o.envFile)
				if err != nil {
					return err
				}
				if err := setEnvironmentVariables(env); err != nil {
					return err
				}
			}

			InitLogging(cmd.ErrOrStderr())

			cfg, err := LoadConfig(o.configFile)
			if err != nil {
				return err
			}
			if o.testsDir != "" {
				cfg.TestsDir = o.testsDir
			}
			o.cfg = cfg
			Logger.Debug("configuration loaded", "file", cfg.File, "tests_dir", cfg.TestsDir)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&o.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&o.configFile, "config", "", "Config file (default .casekit.yaml, then $XDG_CONFIG_HOME/casekit/config.yaml)")
	cmd.PersistentFlags().StringVar(&o.envFile, "env-file", "", "Load environment variables from a dotenv file")
	cmd.PersistentFlags().StringVar(&o.testsDir, "dir", "", "Test case directory (overrides tests_dir)")

	cmd.AddCommand(
		NewVersionCmd(),
		newLintCmd(o),
		newRenameCmd(o),
		newListCmd(o),
		newExportCmd(o),
		newPlanCmd(o),
		newJiraCmd(o),
		newPolarionCmd(o),
		newAuthCmd(o),
		newDoctorCmd(o),
	)

	return cmd
}
