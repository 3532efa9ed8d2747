package plan

import (
	"fmt"
	"log/slog"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// TargetWriter persists a new target list for a test case.
type TargetWriter interface {
	UpdateTargets(tc testcase.TestCase, targets []string) error
}

// Applier reports planned additions and, unless DryRun is set, writes them.
type Applier struct {
	Writer TargetWriter
	DryRun bool
	Logger *slog.Logger
	// Report is called for every addition before it is applied.
	Report func(a Addition)
}

// Apply reports and persists every addition in order. The first write
// failure stops the run; additions already written stay written.
func (ap *Applier) Apply(additions []Addition) error {
	logger := ap.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, a := range additions {
		if ap.Report != nil {
			ap.Report(a)
		}
		logger.Info("add target", "target", a.Version, "id", a.Test.ID, "title", a.Test.Title, "file", a.Test.File)

		if ap.DryRun {
			continue
		}
		if err := ap.Writer.UpdateTargets(a.Test, a.Targets()); err != nil {
			return fmt.Errorf("failed to add target %s to %s: %w", a.Version, a.Test.File, err)
		}
	}
	return nil
}
