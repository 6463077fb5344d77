package ingest

import (
	"github.com/spherex/doc-portal/domain"
	"github.com/spherex/doc-portal/ltdapi"
	"github.com/spherex/doc-portal/s3meta"
)

// Author role tags scanned for in metadata author lists.
const (
	roleIPACLead    = "IPAC Lead"
	roleSPHERExLead = "SPHEREx Lead"
)

// formatApproval renders an approval record as "{date}, {name}", or ""
// when the document has no approval on file.
func formatApproval(a *s3meta.Approval) string {
	if a == nil {
		return ""
	}
	return a.Date + ", " + a.Name
}

// repositoryURL picks the document's source repository URL, preferring
// the published metadata over the hosting record.
func repositoryURL(p ltdapi.ProjectModel, meta *s3meta.Metadata) string {
	if meta.RepositoryURL != "" {
		return meta.RepositoryURL
	}
	return p.SourceRepoURL
}

// newDocument builds the common block shared by every category variant.
func newDocument(org *ltdapi.OrganizationModel, p ltdapi.ProjectModel, meta *s3meta.Metadata, gh gitHubMetadata) domain.Document {
	orgID := org.Slug
	if orgID == "" {
		orgID = domain.DefaultOrganizationID
	}
	return domain.Document{
		URL:            meta.CanonicalURL,
		Title:          meta.Title,
		ProjectID:      p.Slug,
		OrganizationID: orgID,

		GitHubURL:        repositoryURL(p, meta),
		GitHubIssues:     gh.Issues,
		LatestCommitDate: gh.CommitDate,
		GitHubRelease:    gh.Release,

		Series:         meta.DocumentHandlePrefix,
		Handle:         meta.Identifier,
		SSDCAuthorName: meta.AuthorWithRole(roleIPACLead),
	}
}

func newModuleSpec(doc domain.Document, meta *s3meta.Metadata) domain.ModuleSpecDocument {
	return domain.ModuleSpecDocument{
		Document:           doc,
		ProjectContactName: meta.AuthorWithRole(roleSPHERExLead),
		DiagramIndex:       meta.DiagramIndex,
		PipelineLevel:      int(meta.PipelineLevel),
		Approval:           formatApproval(meta.Approval),
		Difficulty:         meta.Difficulty,
	}
}

func newProjectManagement(doc domain.Document, meta *s3meta.Metadata) domain.ProjectManagementDocument {
	return domain.ProjectManagementDocument{
		Document: doc,
		Approval: formatApproval(meta.Approval),
	}
}

func newInterface(doc domain.Document, meta *s3meta.Metadata) domain.InterfaceDocument {
	return domain.InterfaceDocument{
		Document:             doc,
		Approval:             formatApproval(meta.Approval),
		InterfacePartnerName: meta.InterfacePartner,
	}
}

func newDataProduct(doc domain.Document, meta *s3meta.Metadata) domain.DataProductDocument {
	return domain.DataProductDocument{
		Document: doc,
		Approval: formatApproval(meta.Approval),
	}
}

func newTestReport(doc domain.Document, meta *s3meta.Metadata) domain.TestReportDocument {
	return domain.TestReportDocument{
		Document:   doc,
		Approval:   formatApproval(meta.Approval),
		VADoorsID:  meta.VADoorsID,
		ReqDoorsID: meta.ReqDoorsID,
		IPACJiraID: meta.IPACJiraID,
	}
}

func newTechnicalNote(doc domain.Document) domain.TechnicalNoteDocument {
	return domain.TechnicalNoteDocument{Document: doc}
}

func newOperationsNote(doc domain.Document) domain.OperationsNoteDocument {
	return domain.OperationsNoteDocument{Document: doc}
}
