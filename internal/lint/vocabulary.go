package lint

import "github.com/rocketship-ai/casekit/internal/testcase"

// Vocabulary holds the closed value sets the membership rules check against.
// Keep README.md and the test case template in sync when changing them.
type Vocabulary struct {
	Categories   []string
	Components   []string
	Environments []string
	Tags         []string
	Products     []string
	Sections     []string
}

// DefaultVocabulary returns the built-in value sets.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Categories: []string{
			"alerts",
			"authorization",
			"backup-restore",
			"dashboards",
			"documentation",
			"high-availability",
			"installation",
			"monitoring",
			"performance",
			"products",
			"upgrade",
			"walkthroughs",
			"uninstallation",
		},
		Components: []string{
			"monitoring",
			"product-ups",
			"product-codeready",
			"product-apicurito",
			"product-amq",
			"product-3scale",
			"product-sso",
			"product-fuse",
			"product-data-sync",
		},
		Environments: []string{
			"osd-fresh-install",
			"osd-post-upgrade",
			"osd-private-post-upgrade",
			"rhpds",
			"external",
		},
		Tags: []string{
			testcase.PerBuildTag,
			testcase.PerReleaseTag,
			testcase.AutomatedTag,
			testcase.DestructiveTag,
			testcase.ManualSelectionTag,
		},
		Products: []string{"rhmi", "rhoam"},
		Sections: []string{testcase.StepsSection, "Description", "Prerequisites"},
	}
}
