package testcase

import "slices"

// Tags with a meaning for filtering, planning and publishing.
const (
	PerBuildTag        = "per-build"
	PerReleaseTag      = "per-release"
	AutomatedTag       = "automated"
	DestructiveTag     = "destructive"
	ManualSelectionTag = "manual-selection"
)

// StepsSection is the level-2 heading every manual test case must have.
const StepsSection = "Steps"

// TestCase is one product-scoped record built from a test case document.
// Records expanded from the same document share no slices.
type TestCase struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Estimate     *float64 `json:"estimate"`
	Tags         []string `json:"tags"`
	Targets      []string `json:"targets"`
	Environments []string `json:"environments"`
	Components   []string `json:"components"`
	Automation   []string `json:"automation"`
	Require      []string `json:"require"`
	Product      string   `json:"product"`
	File         string   `json:"file"`
	URL          string   `json:"url"`

	// Variant is set when the record was rendered from a variants entry.
	Variant bool `json:"variant,omitempty"`
}

// HasTag reports whether the test case carries tag.
func (t TestCase) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

func (t TestCase) IsAutomated() bool {
	return t.HasTag(AutomatedTag)
}

func (t TestCase) IsPerBuild() bool {
	return t.HasTag(PerBuildTag)
}

func (t TestCase) IsPerRelease() bool {
	return t.HasTag(PerReleaseTag)
}

func (t TestCase) IsDestructive() bool {
	return t.HasTag(DestructiveTag)
}

// IsManualSelection reports whether the case is only ever picked by hand.
func (t TestCase) IsManualSelection() bool {
	return t.HasTag(ManualSelectionTag)
}

// Clone returns a deep copy of the test case.
func (t TestCase) Clone() TestCase {
	c := t
	c.Tags = cloneStrings(t.Tags)
	c.Targets = cloneStrings(t.Targets)
	c.Environments = cloneStrings(t.Environments)
	c.Components = cloneStrings(t.Components)
	c.Automation = cloneStrings(t.Automation)
	c.Require = cloneStrings(t.Require)
	if t.Estimate != nil {
		e := *t.Estimate
		c.Estimate = &e
	}
	return c
}

// cloneStrings copies s, turning nil into an empty slice.
func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
