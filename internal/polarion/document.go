// Package polarion builds Polarion importer documents and uploads them.
package polarion

import (
	"encoding/xml"
	"fmt"

	"github.com/rocketship-ai/casekit/internal/jira"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

// LookupMethod tells the importer to match records by their custom id.
const LookupMethod = "custom"

type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type Properties struct {
	Properties []Property `xml:"property"`
}

type CustomField struct {
	Content string `xml:"content,attr"`
	ID      string `xml:"id,attr"`
}

type CustomFields struct {
	Fields []CustomField `xml:"custom-field"`
}

// TestCase is one <testcase> of a test case import.
type TestCase struct {
	ID           string       `xml:"id,attr"`
	Title        string       `xml:"title"`
	Description  string       `xml:"description"`
	CustomFields CustomFields `xml:"custom-fields"`
}

// TestCases is the test case importer document.
type TestCases struct {
	XMLName    xml.Name   `xml:"testcases"`
	ProjectID  string     `xml:"project-id,attr"`
	Properties Properties `xml:"properties"`
	TestCases  []TestCase `xml:"testcase"`
}

// Message carries the link to the run of a failed or blocked case.
type Message struct {
	Message string `xml:"message,attr"`
}

// XUnitCase is one <testcase> of an xunit import.
type XUnitCase struct {
	Name       string     `xml:"name,attr"`
	Properties Properties `xml:"properties"`
	Failure    *Message   `xml:"failure,omitempty"`
	Error      *Message   `xml:"error,omitempty"`
}

type TestSuite struct {
	Tests     int         `xml:"tests,attr"`
	TestCases []XUnitCase `xml:"testcase"`
}

// TestSuites is the xunit importer document.
type TestSuites struct {
	XMLName    xml.Name   `xml:"testsuites"`
	Properties Properties `xml:"properties"`
	TestSuite  TestSuite  `xml:"testsuite"`
}

// caseFields are the custom fields every imported test case carries.
var caseFields = []CustomField{
	{ID: "caselevel", Content: "component"},
	{ID: "casecomponent", Content: "-"},
	{ID: "testtype", Content: "functional"},
	{ID: "subtype1", Content: "-"},
	{ID: "subtype2", Content: "-"},
	{ID: "caseposneg", Content: "positive"},
	{ID: "caseimportance", Content: "high"},
	{ID: "caseautomation", Content: "automated"},
}

// NewTestCases builds the test case import of tests.
func NewTestCases(projectID string, tests []testcase.TestCase) *TestCases {
	doc := &TestCases{
		ProjectID:  projectID,
		Properties: Properties{Properties: []Property{{Name: "lookup-method", Value: LookupMethod}}},
		TestCases:  make([]TestCase, 0, len(tests)),
	}
	for _, t := range tests {
		doc.TestCases = append(doc.TestCases, TestCase{
			ID:           t.ID,
			Title:        fmt.Sprintf("%s - %s - %s", t.ID, t.Category, t.Title),
			Description:  t.URL,
			CustomFields: CustomFields{Fields: caseFields},
		})
	}
	return doc
}

// NewTestRun builds the xunit import reporting runs under title. Skipped
// runs are left out.
func NewTestRun(projectID, title string, runs []jira.TestRun) *TestSuites {
	cases := make([]XUnitCase, 0, len(runs))
	for _, r := range runs {
		if r.Result == jira.Skipped {
			continue
		}

		c := XUnitCase{
			Name:       r.Title,
			Properties: Properties{Properties: []Property{{Name: "polarion-testcase-id", Value: r.ID}}},
		}
		switch r.Result {
		case jira.Failed:
			c.Failure = &Message{Message: r.Link}
		case jira.Blocked:
			c.Error = &Message{Message: r.Link}
		}
		cases = append(cases, c)
	}

	return &TestSuites{
		Properties: Properties{Properties: []Property{
			{Name: "polarion-project-id", Value: projectID},
			{Name: "polarion-testrun-title", Value: title},
			{Name: "polarion-lookup-method", Value: LookupMethod},
		}},
		TestSuite: TestSuite{Tests: len(cases), TestCases: cases},
	}
}

// Marshal encodes doc as an indented XML document.
func Marshal(doc interface{}) ([]byte, error) {
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}
