package jira

import (
	"encoding/json"
	"strings"
)

const customFieldPrefix = "customfield_"

// SearchResponse is the response from POST /rest/api/2/search.
type SearchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// Issue is a Jira issue as read from or sent to the REST API.
type Issue struct {
	ID     string      `json:"id,omitempty"`
	Key    string      `json:"key,omitempty"`
	Self   string      `json:"self,omitempty"`
	Fields IssueFields `json:"fields"`
}

// IssueFields holds the standard fields of an issue. Instance specific
// custom fields live in Custom, keyed by their customfield_ id.
type IssueFields struct {
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description,omitempty"`
	IssueType   *IssueType  `json:"issuetype,omitempty"`
	Project     *Project    `json:"project,omitempty"`
	Status      *Status     `json:"status,omitempty"`
	Resolution  *Resolution `json:"resolution,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	Security    *Security   `json:"security,omitempty"`
	Labels      []string    `json:"labels,omitempty"`
	Components  []Component `json:"components,omitempty"`
	Versions    []Version   `json:"versions,omitempty"`
	FixVersions []Version   `json:"fixVersions,omitempty"`

	Custom map[string]json.RawMessage `json:"-"`
}

type issueFieldsAlias IssueFields

func (f IssueFields) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(issueFieldsAlias(f))
	if err != nil || len(f.Custom) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range f.Custom {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (f *IssueFields) UnmarshalJSON(data []byte) error {
	var alias issueFieldsAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k, v := range all {
		if !strings.HasPrefix(k, customFieldPrefix) {
			continue
		}
		if alias.Custom == nil {
			alias.Custom = map[string]json.RawMessage{}
		}
		alias.Custom[k] = v
	}

	*f = IssueFields(alias)
	return nil
}

// SetCustom stores v under the custom field id.
func (f *IssueFields) SetCustom(id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if f.Custom == nil {
		f.Custom = map[string]json.RawMessage{}
	}
	f.Custom[id] = data
	return nil
}

// CustomValue returns the raw value of a custom field, or nil when it is
// absent or null.
func (f IssueFields) CustomValue(id string) json.RawMessage {
	v, ok := f.Custom[id]
	if !ok || string(v) == "null" {
		return nil
	}
	return v
}

type IssueType struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type Project struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

type Status struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type Resolution struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type Priority struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type Security struct {
	Name string `json:"name"`
}

type Component struct {
	Name string `json:"name"`
}

// Version is a project version, as used by Fix Version and Affects Version.
type Version struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IssueRef refers to an issue by key.
type IssueRef struct {
	Key string `json:"key"`
}

// IssueLinkType names a link type such as Blocks or Sequence.
type IssueLinkType struct {
	Name string `json:"name"`
}

// IssueLink is the body of POST /rest/api/2/issueLink.
type IssueLink struct {
	Type         IssueLinkType `json:"type"`
	InwardIssue  IssueRef      `json:"inwardIssue"`
	OutwardIssue IssueRef      `json:"outwardIssue"`
}

// Link types used when publishing test cases.
const (
	LinkBlocks   = "Blocks"
	LinkSequence = "Sequence"
)

// NewLink builds a link of type name from inward to outward.
func NewLink(name, inward, outward string) IssueLink {
	return IssueLink{
		Type:         IssueLinkType{Name: name},
		InwardIssue:  IssueRef{Key: inward},
		OutwardIssue: IssueRef{Key: outward},
	}
}

// ErrorResponse is the standard Jira error response format.
type ErrorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

// Transition is a workflow transition available on an issue.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TransitionsResponse wraps the list of transitions returned by the API.
type TransitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}
