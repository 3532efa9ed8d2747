package jira

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// EpicIssueType is the issue type name of an epic.
const EpicIssueType = "Epic"

// FieldIDs maps the custom fields used by test case tasks to the
// customfield_ ids of a Jira instance.
type FieldIDs struct {
	EpicLink string
	FixBuild string
	Team     string
	Sprint   string
}

// DefaultFieldIDs are the custom field ids of issues.redhat.com.
func DefaultFieldIDs() FieldIDs {
	return FieldIDs{
		EpicLink: "customfield_12311140",
		FixBuild: "customfield_12312442",
		Team:     "customfield_12313240",
		Sprint:   "customfield_12310940",
	}
}

// Epic is the parent of a batch of test case tasks, with the values every
// task inherits from it.
type Epic struct {
	Key        string
	Summary    string
	Project    string
	FixVersion Version
	FixBuild   json.RawMessage
	Team       json.RawMessage
	SprintID   *int
}

// AssertEpic fails unless issue is an epic.
func AssertEpic(issue *Issue) error {
	name := ""
	if issue.Fields.IssueType != nil {
		name = issue.Fields.IssueType.Name
	}
	if name != EpicIssueType {
		return testcase.Preconditionf("the issue %s is not an Epic but it is a %s", issue.Key, name)
	}
	return nil
}

// ReadEpic checks that issue is an epic carrying a Fix Version and a Fix
// Build and extracts the values tasks inherit from it.
func ReadEpic(issue *Issue, fields FieldIDs) (*Epic, error) {
	if err := AssertEpic(issue); err != nil {
		return nil, err
	}
	if len(issue.Fields.FixVersions) == 0 {
		return nil, testcase.Preconditionf("the epic %s does not have a Fix Version", issue.Key)
	}

	fixBuild := issue.Fields.CustomValue(fields.FixBuild)
	if fixBuild == nil {
		return nil, testcase.Preconditionf("the epic %s does not have a Fix Build", issue.Key)
	}

	epic := &Epic{
		Key:        issue.Key,
		Summary:    issue.Fields.Summary,
		FixVersion: issue.Fields.FixVersions[0],
		FixBuild:   fixBuild,
		Team:       issue.Fields.CustomValue(fields.Team),
		SprintID:   ExtractSprintID(issue.Fields.CustomValue(fields.Sprint)),
	}
	if issue.Fields.Project != nil {
		epic.Project = issue.Fields.Project.Key
	}
	return epic, nil
}

// FixBuildID returns the id of the epic's Fix Build option.
func (e *Epic) FixBuildID() string {
	var option struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(e.FixBuild, &option) == nil {
		return option.ID
	}
	return ""
}

var sprintIDRegex = regexp.MustCompile(`id=(\d+)`)

// ExtractSprintID reads the id of the first sprint in a sprint field. The
// field is either a list of serialized sprint strings ("...[id=42,...]")
// or a list of sprint objects.
func ExtractSprintID(raw json.RawMessage) *int {
	if raw == nil {
		return nil
	}

	var encoded []string
	if json.Unmarshal(raw, &encoded) == nil {
		if len(encoded) == 0 {
			return nil
		}
		m := sprintIDRegex.FindStringSubmatch(encoded[0])
		if m == nil {
			return nil
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		return &id
	}

	var objects []struct {
		ID int `json:"id"`
	}
	if json.Unmarshal(raw, &objects) == nil && len(objects) > 0 {
		return &objects[0].ID
	}
	return nil
}
