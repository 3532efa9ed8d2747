package publish

import (
	"fmt"

	"github.com/rocketship-ai/casekit/internal/jira"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

// Fixed values of every test case task.
const (
	TaskIssueType = "Task"
	TaskLabel     = "test-case"
	TaskComponent = "Testing"
)

// Summary is the task title: "ID - [DESTRUCTIVE] - category - title", the
// destructive marker only present for destructive cases.
func Summary(tc testcase.TestCase) string {
	title := tc.Category + " - " + tc.Title
	if tc.IsDestructive() {
		title = "[DESTRUCTIVE] - " + title
	}
	return tc.ID + " - " + title
}

// Description is the Markdown task body: an origin link to the document,
// the test case content and a pointer to the general testing guidelines.
func Description(tc testcase.TestCase, guidelinesURL string) string {
	content := fmt.Sprintf("**Origin:** [%s](%s)\n\n%s", tc.File, tc.URL, tc.Content)
	if guidelinesURL != "" {
		content += "\n## General guidelines for testing\n" + guidelinesURL
	}
	return content
}

// Priority derives the task priority from the previous run of the case.
func Priority(previous *jira.TestRun) string {
	if previous == nil {
		return "Major"
	}
	switch previous.Result {
	case jira.Failed:
		return "Blocker"
	case jira.Blocked:
		return "Critical"
	case jira.Passed:
		return "Normal"
	case jira.Skipped:
		return "Minor"
	default:
		return "Major"
	}
}

// ToIssue builds the task created for tc under the epic.
func (p *Publisher) ToIssue(tc testcase.TestCase, previous *jira.TestRun) (*jira.Issue, error) {
	epic := p.Epic
	project := epic.Project
	if project == "" {
		project = p.Project
	}

	version := jira.Version{ID: epic.FixVersion.ID}
	fields := jira.IssueFields{
		Summary:     Summary(tc),
		Description: jira.ToWiki(Description(tc, p.GuidelinesURL)),
		IssueType:   &jira.IssueType{Name: TaskIssueType},
		Project:     &jira.Project{Key: project},
		Priority:    &jira.Priority{Name: Priority(previous)},
		Labels:      []string{TaskLabel},
		Components:  []jira.Component{{Name: TaskComponent}},
		Versions:    []jira.Version{version},
		FixVersions: []jira.Version{version},
	}
	if p.Security != "" {
		fields.Security = &jira.Security{Name: p.Security}
	}

	custom := map[string]interface{}{
		p.Fields.EpicLink: epic.Key,
		p.Fields.FixBuild: map[string]string{"id": epic.FixBuildID()},
	}
	if epic.Team != nil {
		custom[p.Fields.Team] = epic.Team
	}
	if epic.SprintID != nil {
		custom[p.Fields.Sprint] = *epic.SprintID
	}
	for id, v := range custom {
		if id == "" {
			continue
		}
		if err := fields.SetCustom(id, v); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", id, err)
		}
	}

	return &jira.Issue{Fields: fields}, nil
}
