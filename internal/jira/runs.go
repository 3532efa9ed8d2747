package jira

import (
	"context"
	"log/slog"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// Result is the outcome of a manual test run task.
type Result string

const (
	Passed  Result = "Passed"
	Failed  Result = "Failed"
	Blocked Result = "Blocked"
	Skipped Result = "Skipped"
	ToDo    Result = "ToDo"
)

// TestRun is the task created for one test case in an epic, read back
// with its result.
type TestRun struct {
	ID     string
	Title  string
	Result Result
	Link   string
	Issue  Issue
}

// RunFields are the fields fetched when loading test runs.
var RunFields = []string{"summary", "status", "resolution", "issuetype"}

// Searcher finds issues by JQL.
type Searcher interface {
	SearchIssues(ctx context.Context, jql string, fields []string) ([]Issue, error)
	BrowseURL(key string) string
}

// EpicJQL selects every issue of an epic.
func EpicJQL(epicKey string) string {
	return `"Epic Link" = ` + epicKey
}

// LoadTestRuns returns the test runs matched by jql. Issues whose summary
// does not start with a test case id are skipped.
func LoadTestRuns(ctx context.Context, s Searcher, jql string, logger *slog.Logger) ([]TestRun, error) {
	if logger == nil {
		logger = slog.Default()
	}

	issues, err := s.SearchIssues(ctx, jql, RunFields)
	if err != nil {
		return nil, err
	}

	runs := make([]TestRun, 0, len(issues))
	for _, issue := range issues {
		id, title, err := testcase.ExtractID(issue.Fields.Summary)
		if err != nil {
			logger.Warn("skipping issue without test case id", "issue", issue.Key, "summary", issue.Fields.Summary)
			continue
		}
		runs = append(runs, TestRun{
			ID:     id,
			Title:  title,
			Result: ToResult(issue, logger),
			Link:   s.BrowseURL(issue.Key),
			Issue:  issue,
		})
	}
	return runs, nil
}

// ToResult maps the status and resolution of a run task to a Result.
func ToResult(issue Issue, logger *slog.Logger) Result {
	if issue.Fields.Resolution == nil {
		if issue.Fields.Status != nil && issue.Fields.Status.Name == "Blocked" {
			return Blocked
		}
		return ToDo
	}

	switch issue.Fields.Resolution.Name {
	case "Done":
		return Passed
	case "Won't Do", "Obsolete":
		return Skipped
	case "Rejected", "Failed":
		return Failed
	case "Blocked", "Deferred":
		return Blocked
	}

	if logger != nil {
		logger.Warn("unknown resolution, treating the run as not executed", "issue", issue.Key, "resolution", issue.Fields.Resolution.Name)
	}
	return ToDo
}

// FindRun returns the run for test case id.
func FindRun(runs []TestRun, id string) (TestRun, bool) {
	for _, r := range runs {
		if r.ID == id {
			return r, true
		}
	}
	return TestRun{}, false
}
