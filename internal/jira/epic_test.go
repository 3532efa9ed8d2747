package jira

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

func epicIssue(t *testing.T) *Issue {
	t.Helper()
	var issue Issue
	require.NoError(t, json.Unmarshal([]byte(`{
		"key": "INTLY-7",
		"fields": {
			"summary": "Release 1.4",
			"issuetype": {"name": "Epic"},
			"project": {"key": "INTLY"},
			"fixVersions": [{"id": "100", "name": "1.4.0"}],
			"customfield_12312442": {"id": "77"},
			"customfield_12313240": "team-a",
			"customfield_12310940": ["com.atlassian.greenhopper.service.sprint.Sprint@1[id=42,rapidViewId=1,state=ACTIVE]"]
		}
	}`), &issue))
	return &issue
}

func TestReadEpic(t *testing.T) {
	epic, err := ReadEpic(epicIssue(t), DefaultFieldIDs())
	require.NoError(t, err)
	assert.Equal(t, "INTLY-7", epic.Key)
	assert.Equal(t, "INTLY", epic.Project)
	assert.Equal(t, Version{ID: "100", Name: "1.4.0"}, epic.FixVersion)
	assert.Equal(t, "77", epic.FixBuildID())
	assert.JSONEq(t, `"team-a"`, string(epic.Team))
	require.NotNil(t, epic.SprintID)
	assert.Equal(t, 42, *epic.SprintID)
}

func TestReadEpicPreconditions(t *testing.T) {
	t.Run("not an epic", func(t *testing.T) {
		issue := epicIssue(t)
		issue.Fields.IssueType.Name = "Task"
		_, err := ReadEpic(issue, DefaultFieldIDs())
		require.Error(t, err)
		assert.True(t, testcase.IsPrecondition(err))
		assert.Contains(t, err.Error(), "is not an Epic but it is a Task")
	})

	t.Run("missing fix version", func(t *testing.T) {
		issue := epicIssue(t)
		issue.Fields.FixVersions = nil
		_, err := ReadEpic(issue, DefaultFieldIDs())
		require.Error(t, err)
		assert.True(t, testcase.IsPrecondition(err))
		assert.Contains(t, err.Error(), "does not have a Fix Version")
	})

	t.Run("missing fix build", func(t *testing.T) {
		issue := epicIssue(t)
		delete(issue.Fields.Custom, "customfield_12312442")
		_, err := ReadEpic(issue, DefaultFieldIDs())
		require.Error(t, err)
		assert.True(t, testcase.IsPrecondition(err))
		assert.Contains(t, err.Error(), "does not have a Fix Build")
	})
}

func TestExtractSprintID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *int
	}{
		{name: "serialized sprint", raw: `["Sprint@1[id=12,name=x]"]`, want: intPtr(12)},
		{name: "sprint objects", raw: `[{"id": 9, "name": "x"}]`, want: intPtr(9)},
		{name: "empty list", raw: `[]`},
		{name: "no id", raw: `["Sprint@1[name=x]"]`},
		{name: "unexpected type", raw: `5`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSprintID(json.RawMessage(tt.raw)))
		})
	}

	assert.Nil(t, ExtractSprintID(nil))
}

func intPtr(i int) *int { return &i }
