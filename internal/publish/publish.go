// Package publish creates one Jira task per test case of a release under
// an epic, linked the way the manual test cycle runs them.
package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketship-ai/casekit/internal/jira"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

// Tracker is the part of the Jira API used to publish tasks.
type Tracker interface {
	CreateIssue(ctx context.Context, issue *jira.Issue) (*jira.Issue, error)
	LinkIssues(ctx context.Context, link jira.IssueLink) error
	ResolveIssue(ctx context.Context, key, transition string) error
}

// Task is a task created, or planned in a dry run, for a test case.
type Task struct {
	Test     testcase.TestCase
	Key      string
	Summary  string
	Project  string
	Resolved bool
}

// Publisher creates the tasks of a release epic.
type Publisher struct {
	Tracker Tracker
	Epic    *jira.Epic
	Fields  jira.FieldIDs

	// Project is used when the epic does not report one.
	Project           string
	Security          string
	GuidelinesURL     string
	ResolveTransition string

	// PreviousRuns are the runs of the previous epic; each new task is
	// linked to the run of the same test case.
	PreviousRuns []jira.TestRun
	AutoResolve  bool
	DryRun       bool

	Logger *slog.Logger
	Report func(Task)
}

// Publish creates a task for every test case. Creation is sequential;
// on failure the tasks already created are kept.
func (p *Publisher) Publish(ctx context.Context, tests []testcase.TestCase) ([]Task, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ordered, err := Order(tests)
	if err != nil {
		return nil, err
	}

	var (
		tasks            []Task
		keys             = map[string]string{}
		firstDestructive string
		lastDestructive  string
		waiting          []string
	)

	block := func(blocker, blocked string) error {
		if err := p.Tracker.LinkIssues(ctx, jira.NewLink(jira.LinkBlocks, blocker, blocked)); err != nil {
			return err
		}
		logger.Info("blocked", "issue", blocked, "by", blocker)
		return nil
	}

	for _, tc := range ordered {
		var previous *jira.TestRun
		if run, ok := jira.FindRun(p.PreviousRuns, tc.ID); ok {
			previous = &run
		}

		issue, err := p.ToIssue(tc, previous)
		if err != nil {
			return tasks, err
		}
		task := Task{Test: tc, Summary: issue.Fields.Summary, Project: issue.Fields.Project.Key}

		if p.DryRun {
			logger.Info("will create task", "summary", task.Summary, "project", task.Project)
			tasks = append(tasks, task)
			p.report(task)
			continue
		}

		created, err := p.Tracker.CreateIssue(ctx, issue)
		if err != nil {
			return tasks, err
		}
		task.Key = created.Key
		keys[tc.ID] = created.Key
		logger.Info("created task", "issue", created.Key, "summary", task.Summary)

		for _, r := range tc.Require {
			if r == tc.ID {
				continue
			}
			if err := block(keys[r], created.Key); err != nil {
				return tasks, err
			}
		}

		if tc.IsDestructive() {
			if firstDestructive == "" {
				firstDestructive = created.Key
				for _, k := range waiting {
					if err := block(k, firstDestructive); err != nil {
						return tasks, err
					}
				}
				waiting = nil
			} else {
				if err := block(lastDestructive, created.Key); err != nil {
					return tasks, err
				}
			}
			lastDestructive = created.Key
		} else if firstDestructive != "" {
			if err := block(created.Key, firstDestructive); err != nil {
				return tasks, err
			}
		} else {
			waiting = append(waiting, created.Key)
		}

		if previous != nil {
			if err := p.Tracker.LinkIssues(ctx, jira.NewLink(jira.LinkSequence, created.Key, previous.Issue.Key)); err != nil {
				return tasks, err
			}
			logger.Info("linked to previous run", "issue", created.Key, "previous", previous.Issue.Key)

			if p.AutoResolve && !tc.IsPerBuild() && (previous.Result == jira.Passed || previous.Result == jira.Skipped) {
				if err := p.Tracker.ResolveIssue(ctx, created.Key, p.ResolveTransition); err != nil {
					return tasks, fmt.Errorf("failed to resolve %s: %w", created.Key, err)
				}
				task.Resolved = true
				logger.Info("automatically resolved", "issue", created.Key, "transition", p.ResolveTransition)
			}
		}

		tasks = append(tasks, task)
		p.report(task)
	}

	return tasks, nil
}

func (p *Publisher) report(t Task) {
	if p.Report != nil {
		p.Report(t)
	}
}
