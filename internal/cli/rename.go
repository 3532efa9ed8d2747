package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rocketship-ai/casekit/internal/testcase"
)

// Rename moves a document to its canonical file name.
type Rename struct {
	From string
	To   string
}

// plannedRenames lists the documents whose file name differs from the
// canonical one, once per file.
func plannedRenames(tests []testcase.TestCase) []Rename {
	seen := map[string]bool{}
	var out []Rename
	for _, tc := range tests {
		if tc.Variant || seen[tc.File] {
			continue
		}
		seen[tc.File] = true

		desired := testcase.DesiredFileName(tc)
		if filepath.Base(tc.File) == desired {
			continue
		}
		out = append(out, Rename{From: tc.File, To: filepath.Join(filepath.Dir(tc.File), desired)})
	}
	return out
}

// apply renames without replacing an existing file.
func (r Rename) apply() error {
	if _, err := os.Stat(r.To); err == nil {
		return fmt.Errorf("cannot rename %s: %s already exists", r.From, r.To)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.Rename(r.From, r.To)
}

func newRenameCmd(o *options) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename test case files to their canonical name",
		Long: `Print the renames needed for every file name to match its test case id
and title. With --write the files are renamed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, err := o.loader().Load("")
			if err != nil {
				return err
			}

			renames := plannedRenames(tests)
			out := cmd.OutOrStdout()
			for _, r := range renames {
				fmt.Fprintf(out, "%s -> %s\n", r.From, color.CyanString(r.To))
				if !write {
					continue
				}
				if err := r.apply(); err != nil {
					return err
				}
				Logger.Info("renamed", "from", r.From, "to", r.To)
			}

			if len(renames) == 0 {
				fmt.Fprintf(out, "%s all file names are canonical\n", color.GreenString("✓"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Rename the files instead of printing the plan")
	return cmd
}
