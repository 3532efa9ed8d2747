package testcase

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	yaml "gopkg.in/yaml.v3"
)

// FileWriter persists target changes back into the documents.
type FileWriter struct{}

// UpdateTargets implements the planner's writer on top of UpdateTargets.
func (FileWriter) UpdateTargets(tc TestCase, targets []string) error {
	return UpdateTargets(tc, targets)
}

// UpdateTargets replaces the target list of tc's product in its document.
// The file is replaced atomically, so a failed write leaves it untouched.
func UpdateTargets(tc TestCase, targets []string) error {
	if tc.Variant {
		return Preconditionf("%s: test cases rendered from variants can not be updated automatically", tc.File)
	}

	doc, err := ReadDocument(tc.File)
	if err != nil {
		return &DocumentError{File: tc.File, Err: err}
	}
	root, err := doc.Node()
	if err != nil {
		return &DocumentError{File: tc.File, Err: err}
	}
	meta := root.Content[0]

	if mapValue(meta, "variants") != nil {
		return Preconditionf("%s: test cases rendered from variants can not be updated automatically", tc.File)
	}

	owner := meta
	if products := mapValue(meta, "products"); products != nil && len(products.Content) > 0 {
		owner = findProduct(products, tc.Product)
		if owner == nil {
			return Preconditionf("%s: product %s is not declared", tc.File, tc.Product)
		}
	}
	setSequence(owner, "targets", targets)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("failed to encode front matter of %s: %w", tc.File, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode front matter of %s: %w", tc.File, err)
	}
	doc.FrontMatter = buf.Bytes()

	return replaceFile(tc.File, doc.Bytes())
}

func mapValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func findProduct(products *yaml.Node, name string) *yaml.Node {
	if products.Kind != yaml.SequenceNode {
		return nil
	}
	for _, p := range products.Content {
		if n := mapValue(p, "name"); n != nil && n.Value == name {
			return p
		}
	}
	return nil
}

// setSequence sets key in mapping m to a string sequence, keeping the style
// of an existing sequence.
func setSequence(m *yaml.Node, key string, values []string) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range values {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
	}

	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			seq.Style = m.Content[i+1].Style
			seq.LineComment = m.Content[i+1].LineComment
			m.Content[i+1] = seq
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		seq,
	)
}

// replaceFile replaces path atomically, keeping its permissions.
func replaceFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	return nil
}
