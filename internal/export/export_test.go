package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketship-ai/casekit/internal/filter"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

func sample() []testcase.TestCase {
	estimate := 0.25
	return []testcase.TestCase{
		{
			ID:           "A01",
			Category:     "alerts",
			Title:        "Verify, with commas",
			Tags:         []string{"per-build", "automated"},
			Environments: []string{"osd-fresh-install"},
			Components:   []string{"monitoring"},
			Targets:      []string{"1.1.0", "1.4.0"},
			Estimate:     &estimate,
			Automation:   []string{"INTLY-1"},
			URL:          "https://example.com/a01.md",
		},
		{ID: "B02", Category: "backup", Title: "No estimate"},
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sample(), "https://jira.example.com/issues/?jql=summary~"))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{
		"A01", "alerts", "Verify, with commas", "per-build, automated", "osd-fresh-install",
		"monitoring", "1.1.0, 1.4.0", "0.25", "INTLY-1", "https://example.com/a01.md",
		"https://jira.example.com/issues/?jql=summary~A01",
	}, rows[1])
	assert.Equal(t, "", rows[2][7])
	assert.Equal(t, "", rows[2][3])
}

func TestCSVWithoutRunsLink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sample()[:1], ""))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "", rows[1][10])
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sample(), nil))

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "A01", out[0]["id"])
	assert.Equal(t, 0.25, out[0]["estimate"])
	assert.Nil(t, out[1]["estimate"])
}

func TestJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, nil, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONQuery(t *testing.T) {
	q, err := filter.ParseQuery(`.[] | .id`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sample(), q))
	assert.Equal(t, "\"A01\"\n\"B02\"\n", buf.String())

	q, err = filter.ParseQuery(`map(.title) | length`)
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, JSON(&buf, sample(), q))
	assert.Equal(t, "2\n", buf.String())
}
