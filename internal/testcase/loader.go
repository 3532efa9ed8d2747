package testcase

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"
)

var importRegex = regexp.MustCompile(`^@\s*\[.*\]\((.*)\)\s*$`)

// Loader turns the markdown files under Dir into test case records.
type Loader struct {
	// Dir is the root of the test case tree.
	Dir string
	// DefaultProduct owns documents written in the single-product layout.
	DefaultProduct string
	// RepoURL is the web URL the working directory is published under.
	RepoURL string
	// BaseDir is the directory file URLs are relative to; the working
	// directory when empty.
	BaseDir string
}

// Files lists the markdown files under Dir in lexical order.
func (l *Loader) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(l.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".md") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", l.Dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Load returns the records for product, or for every product when product
// is empty. The first broken document aborts the load.
func (l *Loader) Load(product string) ([]TestCase, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}

	var tests []TestCase
	for _, file := range files {
		records, err := l.LoadFile(file)
		if err != nil {
			return nil, err
		}
		tests = append(tests, filterProduct(records, product)...)
	}
	return tests, nil
}

// LoadAll is like Load but keeps going past broken documents and returns
// their errors alongside the records that did load.
func (l *Loader) LoadAll(product string) ([]TestCase, []error) {
	files, err := l.Files()
	if err != nil {
		return nil, []error{err}
	}

	var tests []TestCase
	var errs []error
	for _, file := range files {
		records, err := l.LoadFile(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tests = append(tests, filterProduct(records, product)...)
	}
	return tests, errs
}

// LoadFile parses one document into its records. Errors are *DocumentError.
func (l *Loader) LoadFile(file string) ([]TestCase, error) {
	records, err := l.loadFile(file)
	if err != nil {
		var de *DocumentError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, &DocumentError{File: file, Err: err}
	}
	return records, nil
}

func (l *Loader) loadFile(file string) ([]TestCase, error) {
	doc, err := ReadDocument(file)
	if err != nil {
		return nil, err
	}
	raw, err := doc.Raw()
	if err != nil {
		return nil, err
	}
	variants, err := expandVariants(raw, doc.Body)
	if err != nil {
		return nil, err
	}

	category := filepath.Base(filepath.Dir(file))
	url := l.fileURL(file)

	var records []TestCase
	for _, v := range variants {
		title, body, err := ExtractTitle(v.content)
		if err != nil {
			return nil, err
		}
		id, title, err := ExtractID(title)
		if err != nil {
			return nil, err
		}
		body, err = expandImports(body, file)
		if err != nil {
			return nil, err
		}

		meta, err := decodeMetadata(v.data)
		if err != nil {
			return nil, err
		}

		var estimate *float64
		if meta.Estimate != "" {
			e, err := ParseEstimate(meta.Estimate)
			if err != nil {
				return nil, err
			}
			estimate = &e
		}

		tags := cloneStrings(meta.Tags)

		automation := cloneStrings(meta.Automation)
		automation = append(automation, meta.AutomationJiras...)

		base := TestCase{
			ID:         id,
			Category:   category,
			Title:      title,
			Content:    body,
			Estimate:   estimate,
			Tags:       tags,
			Components: cloneStrings(meta.Components),
			Automation: automation,
			Require:    cloneStrings(meta.Require),
			File:       file,
			URL:        url,
			Variant:    v.spread,
		}

		records = append(records, expandProducts(base, meta, l.DefaultProduct, v.spread)...)
	}

	return records, nil
}

// expandProducts produces one record per declared product. Documents in the
// single-product layout yield one record for defaultProduct. With
// perRelease, a record whose product declares no target list is tagged
// per-release.
func expandProducts(base TestCase, meta Metadata, defaultProduct string, perRelease bool) []TestCase {
	record := func(product string, targets, environments []string) TestCase {
		tc := base.Clone()
		tc.Product = product
		tc.Targets = cloneStrings(targets)
		tc.Environments = cloneStrings(environments)
		if perRelease && targets == nil && !slices.Contains(tc.Tags, PerReleaseTag) {
			tc.Tags = append(tc.Tags, PerReleaseTag)
		}
		return tc
	}

	if len(meta.Products) == 0 {
		return []TestCase{record(defaultProduct, meta.Targets, meta.Environments)}
	}

	records := make([]TestCase, 0, len(meta.Products))
	for _, p := range meta.Products {
		records = append(records, record(p.Name, p.Targets, p.Environments))
	}
	return records
}

// expandImports replaces every "@ [label](path)" line with the content of
// the referenced file. Imported content is not scanned again.
func expandImports(content string, file string) (string, error) {
	dir := filepath.Dir(file)
	lines := strings.Split(content, "\n")
	expanded := make([]string, 0, len(lines))
	for _, line := range lines {
		m := importRegex.FindStringSubmatch(line)
		if m == nil {
			expanded = append(expanded, line)
			continue
		}
		imported, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(m[1])))
		if err != nil {
			return "", fmt.Errorf("%w: failed to import %s: %v", ErrMalformedDocument, m[1], err)
		}
		expanded = append(expanded, string(imported))
	}
	return strings.Join(expanded, "\n"), nil
}

func (l *Loader) fileURL(file string) string {
	if l.RepoURL == "" {
		return ""
	}
	base := l.BaseDir
	if base == "" {
		base = "."
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return ""
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		rel = file
	}
	return strings.TrimRight(l.RepoURL, "/") + "/" + path.Clean(filepath.ToSlash(rel))
}

func filterProduct(records []TestCase, product string) []TestCase {
	if product == "" {
		return records
	}
	var out []TestCase
	for _, r := range records {
		if r.Product == product {
			out = append(out, r)
		}
	}
	return out
}
