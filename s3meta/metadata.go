package s3meta

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Author is one entry in a metadata object's authors list.
type Author struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Approval records who approved the document and when.
type Approval struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// PipelineLevel is the module's pipeline level. Published metadata carries
// it either as an integer or as a string with an "L" prefix ("L2").
type PipelineLevel int

func (p *PipelineLevel) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*p = PipelineLevel(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("pipeline level must be an int or string: %s", data)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "L"))
	if err != nil {
		return fmt.Errorf("invalid pipeline level %q: %w", s, err)
	}
	*p = PipelineLevel(n)
	return nil
}

// Metadata is the per-project metadata object published alongside each
// document build. It is the superset of all category-specific fields;
// fields a category doesn't publish decode to their zero value.
type Metadata struct {
	Title                string   `json:"title"`
	CanonicalURL         string   `json:"canonical_url"`
	Identifier           string   `json:"identifier"`
	DocumentHandlePrefix string   `json:"document_handle_prefix"`
	RepositoryURL        string   `json:"repository_url"`
	Authors              []Author `json:"authors"`

	Approval *Approval `json:"approval,omitempty"`

	// Module-spec fields.
	DiagramIndex  int           `json:"diagram_index,omitempty"`
	PipelineLevel PipelineLevel `json:"pipeline_level,omitempty"`
	Difficulty    string        `json:"difficulty,omitempty"`

	// Interface fields.
	InterfacePartner string `json:"interface_partner,omitempty"`

	// Test-report fields.
	VADoorsID  string `json:"va_doors_id,omitempty"`
	ReqDoorsID string `json:"req_doors_id,omitempty"`
	IPACJiraID string `json:"ipac_jira_id,omitempty"`
}

// AuthorWithRole returns the name of the first author carrying the given
// role tag, or the empty string when none matches.
func (m *Metadata) AuthorWithRole(role string) string {
	for _, author := range m.Authors {
		if author.Role == role {
			return author.Name
		}
	}
	return ""
}
