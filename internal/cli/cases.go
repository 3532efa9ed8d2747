package cli

import (
	"github.com/spf13/cobra"

	"github.com/rocketship-ai/casekit/internal/filter"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

func (o *options) loader() *testcase.Loader {
	return &testcase.Loader{
		Dir:            o.cfg.TestsDir,
		DefaultProduct: o.cfg.DefaultProduct,
		RepoURL:        o.cfg.RepoURL,
	}
}

// filterFlags are the test case selection flags shared by list and export.
type filterFlags struct {
	product     string
	tags        string
	fields      []string
	filterFile  string
	where       string
	environment string
	target      string
}

func addFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().StringVar(&f.product, "product", "", "Only test cases of this product (default all)")
	cmd.Flags().StringVar(&f.tags, "tags", "", "Comma separated tags; ^tag excludes")
	cmd.Flags().StringArrayVar(&f.fields, "filter", nil, "Field filter field=value or field=^value (repeatable)")
	cmd.Flags().StringVar(&f.filterFile, "filter-file", "", "YAML file mapping fields to include/exclude lists")
	cmd.Flags().StringVar(&f.where, "where", "", "jq expression selecting test cases")
	cmd.Flags().StringVar(&f.environment, "environment", "", "Release filter environment (requires --target)")
	cmd.Flags().StringVar(&f.target, "target", "", "Release filter target version (requires --environment)")
}

func (f *filterFlags) set() (filter.Set, error) {
	s := filter.Set{
		Tags:        filter.ParseTagList(f.tags),
		Environment: f.environment,
		Target:      f.target,
	}

	fields, err := filter.ParseFieldFlags(f.fields)
	if err != nil {
		return s, err
	}
	if f.filterFile != "" {
		fromFile, err := filter.LoadFieldsFile(f.filterFile)
		if err != nil {
			return s, err
		}
		fields = fields.Merge(fromFile)
	}
	s.Fields = fields

	if f.where != "" {
		q, err := filter.ParseQuery(f.where)
		if err != nil {
			return s, err
		}
		s.Query = q
	}
	return s, s.Validate()
}

// selectCases loads every test case strictly and applies the filters.
func (o *options) selectCases(f *filterFlags) ([]testcase.TestCase, error) {
	s, err := f.set()
	if err != nil {
		return nil, err
	}
	tests, err := o.loader().Load(f.product)
	if err != nil {
		return nil, err
	}
	return s.Apply(tests)
}

func countFiles(tests []testcase.TestCase) int {
	files := map[string]bool{}
	for _, tc := range tests {
		files[tc.File] = true
	}
	return len(files)
}
