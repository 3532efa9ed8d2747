package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rocketship-ai/casekit/internal/jira"
	"github.com/rocketship-ai/casekit/internal/polarion"
)

const localConfigFile = ".casekit.yaml"

// Config is the casekit configuration.
type Config struct {
	TestsDir       string         `mapstructure:"tests_dir"`
	DefaultProduct string         `mapstructure:"default_product"`
	Products       []string       `mapstructure:"products"`
	RepoURL        string         `mapstructure:"repo_url"`
	Jira           JiraConfig     `mapstructure:"jira"`
	Polarion       PolarionConfig `mapstructure:"polarion"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type JiraConfig struct {
	URL               string     `mapstructure:"url"`
	Project           string     `mapstructure:"project"`
	Token             string     `mapstructure:"token"`
	Username          string     `mapstructure:"username"`
	Password          string     `mapstructure:"password"`
	Security          string     `mapstructure:"security"`
	ResolveTransition string     `mapstructure:"resolve_transition"`
	Fields            JiraFields `mapstructure:"fields"`
}

// JiraFields are the customfield_ ids of the Jira instance.
type JiraFields struct {
	EpicLink string `mapstructure:"epic_link"`
	FixBuild string `mapstructure:"fix_build"`
	Team     string `mapstructure:"team"`
	Sprint   string `mapstructure:"sprint"`
}

func (f JiraFields) IDs() jira.FieldIDs {
	return jira.FieldIDs{EpicLink: f.EpicLink, FixBuild: f.FixBuild, Team: f.Team, Sprint: f.Sprint}
}

type PolarionConfig struct {
	URL          string        `mapstructure:"url"`
	ProjectID    string        `mapstructure:"project_id"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// GuidelinesURL is the general testing guidelines page linked from every task.
func (c *Config) GuidelinesURL() string {
	return strings.TrimRight(c.RepoURL, "/") + "/test-cases/common/general-guidelines.md"
}

func setDefaults(v *viper.Viper) {
	fields := jira.DefaultFieldIDs()

	v.SetDefault("tests_dir", "test-cases/tests")
	v.SetDefault("default_product", "rhmi")
	v.SetDefault("products", []string{"rhmi", "rhoam"})
	v.SetDefault("repo_url", "https://github.com/integr8ly/integreatly-operator/tree/master")
	v.SetDefault("jira.url", "https://issues.redhat.com")
	v.SetDefault("jira.project", "INTLY")
	v.SetDefault("jira.token", "")
	v.SetDefault("jira.username", "")
	v.SetDefault("jira.password", "")
	v.SetDefault("jira.security", "Red Hat Employee")
	v.SetDefault("jira.resolve_transition", "Won't Do")
	v.SetDefault("jira.fields.epic_link", fields.EpicLink)
	v.SetDefault("jira.fields.fix_build", fields.FixBuild)
	v.SetDefault("jira.fields.team", fields.Team)
	v.SetDefault("jira.fields.sprint", fields.Sprint)
	v.SetDefault("polarion.url", "https://polarion.engineering.redhat.com/polarion")
	v.SetDefault("polarion.project_id", "RedHatManagedIntegration")
	v.SetDefault("polarion.username", "")
	v.SetDefault("polarion.password", "")
	v.SetDefault("polarion.poll_interval", polarion.DefaultPollInterval)
}

// legacyEnv are the variable names the credentials were always read from.
var legacyEnv = map[string]string{
	"jira.token":        "JIRA_TOKEN",
	"jira.username":     "JIRA_USERNAME",
	"jira.password":     "JIRA_PASSWORD",
	"polarion.username": "POLARION_USERNAME",
	"polarion.password": "POLARION_PASSWORD",
}

// DefaultConfigPath returns the user level config file,
// $XDG_CONFIG_HOME/casekit/config.yaml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "casekit", "config.yaml")
}

// LoadConfig reads the configuration using Viper. An explicit path must
// exist; otherwise .casekit.yaml and then DefaultConfigPath are tried and
// defaults are used when neither exists. Environment variables CASEKIT_*
// override the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("CASEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range legacyEnv {
		envKey := "CASEKIT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, name); err != nil {
			return nil, fmt.Errorf("binding %s: %w", name, err)
		}
	}

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}

	file := ""
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var pathErr *fs.PathError
			var notFound viper.ConfigFileNotFoundError
			switch {
			case explicit:
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			case errors.As(err, &pathErr), errors.As(err, &notFound):
			default:
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else {
			file = path
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.File = file
	return cfg, nil
}

func findConfigFile() string {
	if _, err := os.Stat(localConfigFile); err == nil {
		return localConfigFile
	}
	return DefaultConfigPath()
}
