package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty working and config directory with no
// credential variables set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, name := range legacyEnv {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.File)
	assert.Equal(t, "test-cases/tests", cfg.TestsDir)
	assert.Equal(t, "rhmi", cfg.DefaultProduct)
	assert.Equal(t, []string{"rhmi", "rhoam"}, cfg.Products)
	assert.Equal(t, "https://issues.redhat.com", cfg.Jira.URL)
	assert.Equal(t, "INTLY", cfg.Jira.Project)
	assert.Equal(t, "Won't Do", cfg.Jira.ResolveTransition)
	assert.Equal(t, "customfield_12311140", cfg.Jira.Fields.EpicLink)
	assert.Equal(t, "RedHatManagedIntegration", cfg.Polarion.ProjectID)
	assert.Equal(t, 2*time.Second, cfg.Polarion.PollInterval)
	assert.Equal(t, "https://github.com/integr8ly/integreatly-operator/tree/master/test-cases/common/general-guidelines.md", cfg.GuidelinesURL())
}

func TestLoadConfigLocalFile(t *testing.T) {
	dir := isolate(t)
	content := `tests_dir: cases
products: [rhoam]
jira:
  url: https://jira.example.com
  fields:
    team: customfield_1
polarion:
  poll_interval: 5s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, localConfigFile), []byte(content), 0644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, localConfigFile, cfg.File)
	assert.Equal(t, "cases", cfg.TestsDir)
	assert.Equal(t, []string{"rhoam"}, cfg.Products)
	assert.Equal(t, "https://jira.example.com", cfg.Jira.URL)
	assert.Equal(t, "customfield_1", cfg.Jira.Fields.Team)
	assert.Equal(t, "customfield_12310940", cfg.Jira.Fields.Sprint)
	assert.Equal(t, 5*time.Second, cfg.Polarion.PollInterval)
}

func TestLoadConfigUserFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "xdg", "casekit", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("default_product: rhoam\n"), 0644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "rhoam", cfg.DefaultProduct)
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	dir := isolate(t)
	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoadConfigEnvironment(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, localConfigFile), []byte("jira:\n  token: from-file\n"), 0644))

	t.Run("legacy variable overrides the file", func(t *testing.T) {
		t.Setenv("JIRA_TOKEN", "from-env")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Jira.Token)
	})

	t.Run("prefixed variable wins over the legacy one", func(t *testing.T) {
		t.Setenv("JIRA_TOKEN", "legacy")
		t.Setenv("CASEKIT_JIRA_TOKEN", "prefixed")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "prefixed", cfg.Jira.Token)
	})

	t.Run("automatic env for other keys", func(t *testing.T) {
		t.Setenv("CASEKIT_POLARION_PROJECT_ID", "Other")
		t.Setenv("POLARION_PASSWORD", "pw")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "Other", cfg.Polarion.ProjectID)
		assert.Equal(t, "pw", cfg.Polarion.Password)
		assert.Equal(t, "from-file", cfg.Jira.Token)
	})
}
