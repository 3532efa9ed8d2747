package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketship-ai/casekit/internal/jira"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

type mockTracker struct {
	mock.Mock
}

func (m *mockTracker) CreateIssue(ctx context.Context, issue *jira.Issue) (*jira.Issue, error) {
	args := m.Called(ctx, issue)
	if v := args.Get(0); v != nil {
		return v.(*jira.Issue), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTracker) LinkIssues(ctx context.Context, link jira.IssueLink) error {
	return m.Called(ctx, link).Error(0)
}

func (m *mockTracker) ResolveIssue(ctx context.Context, key, transition string) error {
	return m.Called(ctx, key, transition).Error(0)
}

func (m *mockTracker) expectCreate(summary, key string) {
	m.On("CreateIssue", mock.Anything, mock.MatchedBy(func(i *jira.Issue) bool {
		return i.Fields.Summary == summary
	})).Return(&jira.Issue{Key: key}, nil).Once()
}

func (m *mockTracker) expectLink(kind, inward, outward string) {
	m.On("LinkIssues", mock.Anything, jira.NewLink(kind, inward, outward)).Return(nil).Once()
}

func newCase(id string, tags ...string) testcase.TestCase {
	return testcase.TestCase{
		ID:       id,
		Category: "cat",
		Title:    "title " + id,
		Content:  "## Steps\n\n1. do it\n",
		Tags:     tags,
		File:     "tests/cat/" + id + ".md",
		URL:      "https://example.com/tests/cat/" + id + ".md",
	}
}

func testEpic() *jira.Epic {
	sprint := 42
	return &jira.Epic{
		Key:        "INTLY-7",
		Project:    "INTLY",
		FixVersion: jira.Version{ID: "100", Name: "1.4.0"},
		FixBuild:   json.RawMessage(`{"id":"77"}`),
		Team:       json.RawMessage(`"team-a"`),
		SprintID:   &sprint,
	}
}

func newPublisher(tr Tracker) *Publisher {
	return &Publisher{
		Tracker:           tr,
		Epic:              testEpic(),
		Fields:            jira.DefaultFieldIDs(),
		Security:          "Red Hat Employee",
		GuidelinesURL:     "https://example.com/general-guidelines.md",
		ResolveTransition: "Won't Do",
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "A01 - cat - title A01", Summary(newCase("A01")))
	assert.Equal(t, "A02 - [DESTRUCTIVE] - cat - title A02", Summary(newCase("A02", testcase.DestructiveTag)))
}

func TestPriority(t *testing.T) {
	assert.Equal(t, "Major", Priority(nil))
	for result, want := range map[jira.Result]string{
		jira.Failed:  "Blocker",
		jira.Blocked: "Critical",
		jira.Passed:  "Normal",
		jira.Skipped: "Minor",
		jira.ToDo:    "Major",
	} {
		assert.Equal(t, want, Priority(&jira.TestRun{Result: result}), result)
	}
}

func TestToIssue(t *testing.T) {
	p := newPublisher(nil)
	issue, err := p.ToIssue(newCase("A01"), &jira.TestRun{Result: jira.Failed})
	require.NoError(t, err)

	data, err := json.Marshal(issue)
	require.NoError(t, err)

	var body struct {
		Fields map[string]interface{} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	f := body.Fields

	assert.Equal(t, "A01 - cat - title A01", f["summary"])
	assert.Equal(t, map[string]interface{}{"name": "Task"}, f["issuetype"])
	assert.Equal(t, map[string]interface{}{"key": "INTLY"}, f["project"])
	assert.Equal(t, map[string]interface{}{"name": "Blocker"}, f["priority"])
	assert.Equal(t, map[string]interface{}{"name": "Red Hat Employee"}, f["security"])
	assert.Equal(t, []interface{}{"test-case"}, f["labels"])
	assert.Equal(t, []interface{}{map[string]interface{}{"name": "Testing"}}, f["components"])
	assert.Equal(t, []interface{}{map[string]interface{}{"id": "100"}}, f["fixVersions"])
	assert.Equal(t, []interface{}{map[string]interface{}{"id": "100"}}, f["versions"])
	assert.Equal(t, "INTLY-7", f["customfield_12311140"])
	assert.Equal(t, map[string]interface{}{"id": "77"}, f["customfield_12312442"])
	assert.Equal(t, "team-a", f["customfield_12313240"])
	assert.Equal(t, float64(42), f["customfield_12310940"])

	desc := f["description"].(string)
	assert.Contains(t, desc, "*Origin:* [tests/cat/A01.md|https://example.com/tests/cat/A01.md]")
	assert.Contains(t, desc, "h2. Steps")
	assert.Contains(t, desc, "h2. General guidelines for testing")
}

func TestOrder(t *testing.T) {
	t.Run("destructive first, stable", func(t *testing.T) {
		tests := []testcase.TestCase{
			newCase("A01"),
			newCase("A02", testcase.DestructiveTag),
			newCase("A03"),
			newCase("A04", testcase.DestructiveTag),
		}
		ordered, err := Order(tests)
		require.NoError(t, err)
		assert.Equal(t, []string{"A02", "A04", "A01", "A03"}, caseIDs(ordered))
	})

	t.Run("required cases come first", func(t *testing.T) {
		a := newCase("A01")
		a.Require = []string{"A03"}
		tests := []testcase.TestCase{a, newCase("A02"), newCase("A03")}
		ordered, err := Order(tests)
		require.NoError(t, err)
		assert.Equal(t, []string{"A02", "A03", "A01"}, caseIDs(ordered))
	})

	t.Run("unknown requirement", func(t *testing.T) {
		a := newCase("A01")
		a.Require = []string{"Z99"}
		_, err := Order([]testcase.TestCase{a})
		require.Error(t, err)
		assert.True(t, testcase.IsPrecondition(err))
		assert.Contains(t, err.Error(), "Z99")
	})

	t.Run("cycle", func(t *testing.T) {
		a, b := newCase("A01"), newCase("A02")
		a.Require = []string{"A02"}
		b.Require = []string{"A01"}
		_, err := Order([]testcase.TestCase{a, b})
		require.Error(t, err)
		assert.True(t, testcase.IsPrecondition(err))
	})
}

func caseIDs(tests []testcase.TestCase) []string {
	out := make([]string, 0, len(tests))
	for _, tc := range tests {
		out = append(out, tc.ID)
	}
	return out
}

func TestPublishDestructiveChain(t *testing.T) {
	tr := &mockTracker{}
	tr.expectCreate("D01 - [DESTRUCTIVE] - cat - title D01", "INTLY-1")
	tr.expectCreate("D02 - [DESTRUCTIVE] - cat - title D02", "INTLY-2")
	tr.expectCreate("A01 - cat - title A01", "INTLY-3")
	tr.expectCreate("A02 - cat - title A02", "INTLY-4")
	tr.expectLink(jira.LinkBlocks, "INTLY-1", "INTLY-2")
	tr.expectLink(jira.LinkBlocks, "INTLY-3", "INTLY-1")
	tr.expectLink(jira.LinkBlocks, "INTLY-4", "INTLY-1")

	tests := []testcase.TestCase{
		newCase("A01"),
		newCase("D01", testcase.DestructiveTag),
		newCase("A02"),
		newCase("D02", testcase.DestructiveTag),
	}

	var reported []string
	p := newPublisher(tr)
	p.Report = func(task Task) { reported = append(reported, task.Key) }

	tasks, err := p.Publish(context.Background(), tests)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
	assert.Equal(t, []string{"INTLY-1", "INTLY-2", "INTLY-3", "INTLY-4"}, reported)
	tr.AssertExpectations(t)
}

func TestPublishRequireLinks(t *testing.T) {
	tr := &mockTracker{}
	tr.expectCreate("A02 - cat - title A02", "INTLY-1")
	tr.expectCreate("A01 - cat - title A01", "INTLY-2")
	tr.expectLink(jira.LinkBlocks, "INTLY-1", "INTLY-2")

	a := newCase("A01")
	a.Require = []string{"A02"}

	_, err := newPublisher(tr).Publish(context.Background(), []testcase.TestCase{a, newCase("A02")})
	require.NoError(t, err)
	tr.AssertExpectations(t)
}

func TestPublishPreviousRuns(t *testing.T) {
	runs := []jira.TestRun{
		{ID: "A01", Result: jira.Passed, Issue: jira.Issue{Key: "OLD-1"}},
		{ID: "A02", Result: jira.Failed, Issue: jira.Issue{Key: "OLD-2"}},
		{ID: "A03", Result: jira.Skipped, Issue: jira.Issue{Key: "OLD-3"}},
	}

	t.Run("links and auto-resolves", func(t *testing.T) {
		tr := &mockTracker{}
		tr.expectCreate("A01 - cat - title A01", "INTLY-1")
		tr.expectCreate("A02 - cat - title A02", "INTLY-2")
		tr.expectCreate("A03 - cat - title A03", "INTLY-3")
		tr.expectLink(jira.LinkSequence, "INTLY-1", "OLD-1")
		tr.expectLink(jira.LinkSequence, "INTLY-2", "OLD-2")
		tr.expectLink(jira.LinkSequence, "INTLY-3", "OLD-3")
		tr.On("ResolveIssue", mock.Anything, "INTLY-1", "Won't Do").Return(nil).Once()

		p := newPublisher(tr)
		p.PreviousRuns = runs
		p.AutoResolve = true

		tasks, err := p.Publish(context.Background(), []testcase.TestCase{
			newCase("A01"),
			newCase("A02"),
			newCase("A03", testcase.PerBuildTag),
		})
		require.NoError(t, err)
		assert.True(t, tasks[0].Resolved)
		assert.False(t, tasks[1].Resolved)
		assert.False(t, tasks[2].Resolved)
		tr.AssertExpectations(t)
	})

	t.Run("no auto-resolve without the option", func(t *testing.T) {
		tr := &mockTracker{}
		tr.expectCreate("A01 - cat - title A01", "INTLY-1")
		tr.expectLink(jira.LinkSequence, "INTLY-1", "OLD-1")

		p := newPublisher(tr)
		p.PreviousRuns = runs

		_, err := p.Publish(context.Background(), []testcase.TestCase{newCase("A01")})
		require.NoError(t, err)
		tr.AssertNotCalled(t, "ResolveIssue", mock.Anything, mock.Anything, mock.Anything)
		tr.AssertExpectations(t)
	})
}

func TestPublishDryRun(t *testing.T) {
	tr := &mockTracker{}
	p := newPublisher(tr)
	p.DryRun = true

	tasks, err := p.Publish(context.Background(), []testcase.TestCase{newCase("A01"), newCase("D01", testcase.DestructiveTag)})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "D01 - [DESTRUCTIVE] - cat - title D01", tasks[0].Summary)
	assert.Equal(t, "INTLY", tasks[0].Project)
	assert.Empty(t, tasks[0].Key)
	tr.AssertNotCalled(t, "CreateIssue", mock.Anything, mock.Anything)
}

func TestPublishStopsOnError(t *testing.T) {
	tr := &mockTracker{}
	tr.expectCreate("A01 - cat - title A01", "INTLY-1")
	tr.On("CreateIssue", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

	tasks, err := newPublisher(tr).Publish(context.Background(), []testcase.TestCase{newCase("A01"), newCase("A02"), newCase("A03")})
	require.Error(t, err)
	assert.Len(t, tasks, 1)
	tr.AssertNumberOfCalls(t, "CreateIssue", 2)
}
