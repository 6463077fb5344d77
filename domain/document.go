package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultOrganizationID is the organization identifier used when the source
// does not supply one.
const DefaultOrganizationID = "spherex"

// jiraBrowseURL is the base URL for IPAC Jira ticket links.
const jiraBrowseURL = "https://jira.ipac.caltech.edu/browse/"

// IssueCount summarizes open GitHub issues and pull requests. The value is
// always fully populated: when the source host is unavailable the counts are
// zero and the URLs are derived from the repository URL.
type IssueCount struct {
	OpenIssueCount int    `json:"open_issue_count"`
	OpenPRCount    int    `json:"open_pr_count"`
	IssueURL       string `json:"issue_url"`
	PRURL          string `json:"pr_url"`
}

// DefaultIssueCount returns the zero-count placeholder with URLs derived
// from the repository URL.
func DefaultIssueCount(repoURL string) IssueCount {
	repoURL = strings.TrimSuffix(repoURL, "/")
	return IssueCount{
		IssueURL: repoURL + "/issues",
		PRURL:    repoURL + "/pulls",
	}
}

// Release summarizes the latest published GitHub release.
type Release struct {
	Tag         string    `json:"tag"`
	DateCreated time.Time `json:"date_created"`
}

// NewRelease constructs a Release with the creation time normalized to UTC.
func NewRelease(tag string, dateCreated time.Time) Release {
	return Release{Tag: tag, DateCreated: UTC(dateCreated)}
}

// Keyed is implemented by entities addressable in the category store.
type Keyed interface {
	Key() string
}

// Document carries the fields shared by every category variant: the base
// project identity, the source-host metadata and the document identity.
type Document struct {
	URL            string `json:"url"`
	Title          string `json:"title"`
	ProjectID      string `json:"project_id"`
	OrganizationID string `json:"organization_id"`

	GitHubURL        string     `json:"github_url"`
	GitHubIssues     IssueCount `json:"github_issues"`
	LatestCommitDate time.Time  `json:"latest_commit_datetime"`
	GitHubRelease    *Release   `json:"github_release,omitempty"`

	Series         string `json:"series"`
	Handle         string `json:"handle"`
	SSDCAuthorName string `json:"ssdc_author_name"`
}

// Key returns the store key. (ProjectID, OrganizationID) is the natural key;
// within one category's namespace ProjectID alone is unique.
func (d Document) Key() string {
	return d.ProjectID
}

// ModuleSpecDocument is a module specification (SSDC-MS).
type ModuleSpecDocument struct {
	Document

	ProjectContactName string `json:"project_contact_name"`
	DiagramIndex       int    `json:"diagram_index"`
	PipelineLevel      int    `json:"pipeline_level"`
	Approval           string `json:"approval_str,omitempty"`
	Difficulty         string `json:"difficulty"`
}

// DiagramRef renders the module's pipeline diagram reference, e.g. "L2.7".
func (d ModuleSpecDocument) DiagramRef() string {
	return fmt.Sprintf("L%d.%d", d.PipelineLevel, d.DiagramIndex)
}

// SortableDiagramRef renders the diagram reference with a zero-padded index
// so lexical ordering matches numeric ordering, e.g. "L2.07".
func (d ModuleSpecDocument) SortableDiagramRef() string {
	return fmt.Sprintf("L%d.%02d", d.PipelineLevel, d.DiagramIndex)
}

// ProjectManagementDocument is a project management document (SSDC-PM).
type ProjectManagementDocument struct {
	Document

	Approval string `json:"approval_str,omitempty"`
}

// InterfaceDocument is an interface document (SSDC-IF).
type InterfaceDocument struct {
	Document

	Approval             string `json:"approval_str,omitempty"`
	InterfacePartnerName string `json:"interface_partner_name"`
}

// DataProductDocument is a data product document (SSDC-DP).
type DataProductDocument struct {
	Document

	Approval string `json:"approval_str,omitempty"`
}

// TestReportDocument is a test report (SSDC-TR).
type TestReportDocument struct {
	Document

	Approval   string `json:"approval_str,omitempty"`
	VADoorsID  string `json:"va_doors_id,omitempty"`
	ReqDoorsID string `json:"req_doors_id,omitempty"`
	IPACJiraID string `json:"ipac_jira_id,omitempty"`
}

// HasVerificationIDs reports whether any verification identifier is set.
func (d TestReportDocument) HasVerificationIDs() bool {
	return d.VADoorsID != "" || d.ReqDoorsID != "" || d.IPACJiraID != ""
}

// TicketURL returns the external ticket URL for the report's Jira ID, or the
// empty string when no Jira ID is recorded.
func (d TestReportDocument) TicketURL() string {
	if d.IPACJiraID == "" {
		return ""
	}
	return jiraBrowseURL + d.IPACJiraID
}

// TechnicalNoteDocument is a technical note (SSDC-TN).
type TechnicalNoteDocument struct {
	Document
}

// OperationsNoteDocument is an operations note (SSDC-OP).
type OperationsNoteDocument struct {
	Document
}
