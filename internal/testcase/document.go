package testcase

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// Document is a markdown file split into its front matter and body.
type Document struct {
	Path        string
	FrontMatter []byte
	Body        string
}

// Metadata is the canonical front matter schema. The top-level Targets and
// Environments belong to the single-product layout and are kept so that
// older documents still load.
type Metadata struct {
	Tags            []string          `yaml:"tags"`
	Estimate        string            `yaml:"estimate"`
	Components      []string          `yaml:"components"`
	Automation      []string          `yaml:"automation"`
	AutomationJiras []string          `yaml:"automation_jiras"`
	Require         []string          `yaml:"require"`
	Targets         []string          `yaml:"targets"`
	Environments    []string          `yaml:"environments"`
	Products        []ProductMetadata `yaml:"products"`
}

// ProductMetadata holds the product-specific part of the front matter.
type ProductMetadata struct {
	Name         string   `yaml:"name"`
	Targets      []string `yaml:"targets"`
	Environments []string `yaml:"environments"`
}

// ReadDocument reads and splits the file at path.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseDocument(path, data)
}

// ParseDocument splits data into front matter and body. A document without a
// leading delimiter has an empty front matter.
func ParseDocument(path string, data []byte) (*Document, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	doc := &Document{Path: path}
	if !strings.HasPrefix(content, frontMatterDelimiter+"\n") {
		doc.Body = content
		return doc, nil
	}

	rest := content[len(frontMatterDelimiter)+1:]
	lines := strings.SplitAfter(rest, "\n")
	offset := 0
	for _, line := range lines {
		if strings.TrimRight(line, "\n") == frontMatterDelimiter {
			doc.FrontMatter = []byte(rest[:offset])
			doc.Body = rest[offset+len(line):]
			return doc, nil
		}
		offset += len(line)
	}

	return nil, fmt.Errorf("%w: front matter is not terminated", ErrMalformedDocument)
}

// Raw decodes the front matter into generic maps. An empty front matter
// decodes to an empty map.
func (d *Document) Raw() (map[string]interface{}, error) {
	raw := map[string]interface{}{}
	if len(bytes.TrimSpace(d.FrontMatter)) == 0 {
		return raw, nil
	}
	if err := yaml.Unmarshal(d.FrontMatter, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal front matter: %v", ErrMalformedDocument, err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}

// Node decodes the front matter into a yaml node tree for in-place edits.
func (d *Document) Node() (*yaml.Node, error) {
	var root yaml.Node
	if len(bytes.TrimSpace(d.FrontMatter)) > 0 {
		if err := yaml.Unmarshal(d.FrontMatter, &root); err != nil {
			return nil, fmt.Errorf("%w: failed to unmarshal front matter: %v", ErrMalformedDocument, err)
		}
	}
	if root.Kind == 0 {
		root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: front matter is not a mapping", ErrMalformedDocument)
	}
	return &root, nil
}

// Bytes reassembles the document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	if len(d.FrontMatter) > 0 {
		buf.WriteString(frontMatterDelimiter + "\n")
		buf.Write(d.FrontMatter)
		if !bytes.HasSuffix(d.FrontMatter, []byte("\n")) {
			buf.WriteString("\n")
		}
		buf.WriteString(frontMatterDelimiter + "\n")
	}
	buf.WriteString(d.Body)
	return buf.Bytes()
}

// decodeMetadata converts a generic front matter map into Metadata by
// round-tripping it through YAML.
func decodeMetadata(raw map[string]interface{}) (Metadata, error) {
	var meta Metadata
	blob, err := yaml.Marshal(raw)
	if err != nil {
		return meta, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if err := yaml.Unmarshal(blob, &meta); err != nil {
		return meta, fmt.Errorf("%w: front matter does not match the test case schema: %v", ErrMalformedDocument, err)
	}
	return meta, nil
}
