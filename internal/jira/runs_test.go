package jira

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	jql    string
	issues []Issue
}

func (f *fakeSearcher) SearchIssues(_ context.Context, jql string, _ []string) ([]Issue, error) {
	f.jql = jql
	return f.issues, nil
}

func (f *fakeSearcher) BrowseURL(key string) string {
	return "https://jira.example.com/browse/" + key
}

func run(key, summary, status, resolution string) Issue {
	issue := Issue{Key: key, Fields: IssueFields{Summary: summary}}
	if status != "" {
		issue.Fields.Status = &Status{Name: status}
	}
	if resolution != "" {
		issue.Fields.Resolution = &Resolution{Name: resolution}
	}
	return issue
}

func TestToResult(t *testing.T) {
	tests := []struct {
		status     string
		resolution string
		want       Result
	}{
		{status: "Open", want: ToDo},
		{status: "Blocked", want: Blocked},
		{resolution: "Done", want: Passed},
		{resolution: "Won't Do", want: Skipped},
		{resolution: "Obsolete", want: Skipped},
		{resolution: "Rejected", want: Failed},
		{resolution: "Failed", want: Failed},
		{resolution: "Deferred", want: Blocked},
		{resolution: "Blocked", want: Blocked},
		{resolution: "Cannot Reproduce", want: ToDo},
	}
	for _, tt := range tests {
		t.Run(tt.status+tt.resolution, func(t *testing.T) {
			assert.Equal(t, tt.want, ToResult(run("X-1", "", tt.status, tt.resolution), nil))
		})
	}
}

func TestLoadTestRuns(t *testing.T) {
	s := &fakeSearcher{issues: []Issue{
		run("INTLY-1", "A01 - cat - first", "Closed", "Done"),
		run("INTLY-2", "not a test case", "Open", ""),
		run("INTLY-3", "B02A - [DESTRUCTIVE] - cat - second", "Open", ""),
	}}

	runs, err := LoadTestRuns(context.Background(), s, EpicJQL("INTLY-7"), nil)
	require.NoError(t, err)
	assert.Equal(t, `"Epic Link" = INTLY-7`, s.jql)
	require.Len(t, runs, 2)

	assert.Equal(t, "A01", runs[0].ID)
	assert.Equal(t, "cat - first", runs[0].Title)
	assert.Equal(t, Passed, runs[0].Result)
	assert.Equal(t, "https://jira.example.com/browse/INTLY-1", runs[0].Link)

	assert.Equal(t, "B02A", runs[1].ID)
	assert.Equal(t, ToDo, runs[1].Result)

	r, ok := FindRun(runs, "B02A")
	assert.True(t, ok)
	assert.Equal(t, "INTLY-3", r.Issue.Key)
	_, ok = FindRun(runs, "C01")
	assert.False(t, ok)
}
