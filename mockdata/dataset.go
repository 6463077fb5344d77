// Package mockdata seeds the category store from a YAML dataset so the
// portal can run without upstream credentials. The dataset mirrors the
// shape of real ingested documents; fields left out of an entry get
// derived defaults.
package mockdata

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spherex/doc-portal/domain"
	"github.com/spherex/doc-portal/storage"
)

const (
	docsBaseURL  = "https://spherex-docs.ipac.caltech.edu/"
	githubOrgURL = "https://github.com/SPHEREx/"
)

// BaseEntry carries the fields shared by every dataset entry. Only
// handle and title are required; url and github_url default to the
// standard published and repository locations for the handle.
type BaseEntry struct {
	Handle     string `yaml:"handle"`
	Title      string `yaml:"title"`
	URL        string `yaml:"url"`
	GitHubURL  string `yaml:"github_url"`
	Issues     int    `yaml:"issues"`
	PRs        int    `yaml:"prs"`
	Tag        string `yaml:"tag"`
	TagDate    string `yaml:"tag_date"`
	CommitDate string `yaml:"commit_date"`
	SSDCAuthor string `yaml:"ssdc_author"`
}

// document expands an entry into the common document block.
func (e BaseEntry) document(category domain.Category) (domain.Document, error) {
	if e.Handle == "" {
		return domain.Document{}, fmt.Errorf("dataset entry in %q has no handle", category)
	}
	projectID := strings.ToLower(e.Handle)

	url := e.URL
	if url == "" {
		url = docsBaseURL + projectID
	}
	githubURL := e.GitHubURL
	if githubURL == "" {
		githubURL = githubOrgURL + projectID
	}

	issues := domain.DefaultIssueCount(githubURL)
	issues.OpenIssueCount = e.Issues
	issues.OpenPRCount = e.PRs

	doc := domain.Document{
		URL:            url,
		Title:          e.Title,
		ProjectID:      projectID,
		OrganizationID: domain.DefaultOrganizationID,
		GitHubURL:      githubURL,
		GitHubIssues:   issues,
		Series:         category.Series(),
		Handle:         e.Handle,
		SSDCAuthorName: e.SSDCAuthor,
	}

	if e.CommitDate != "" {
		commit, err := domain.ParseTimestamp(e.CommitDate)
		if err != nil {
			return domain.Document{}, fmt.Errorf("entry %q: commit_date: %w", e.Handle, err)
		}
		doc.LatestCommitDate = commit
	}

	if e.Tag != "" && e.TagDate != "" {
		tagDate, err := domain.ParseTimestamp(e.TagDate)
		if err != nil {
			return domain.Document{}, fmt.Errorf("entry %q: tag_date: %w", e.Handle, err)
		}
		rel := domain.NewRelease(e.Tag, tagDate)
		doc.GitHubRelease = &rel
	}
	return doc, nil
}

// DocumentEntry is a dataset entry for categories with no extra fields
// beyond an optional approval line.
type DocumentEntry struct {
	BaseEntry `yaml:",inline"`

	Approval string `yaml:"approval"`
}

// ModuleSpecEntry is a dataset entry for module specifications.
type ModuleSpecEntry struct {
	BaseEntry `yaml:",inline"`

	ProjectAuthor string `yaml:"project_author"`
	Approval      string `yaml:"approval"`
	Difficulty    string `yaml:"difficulty"`
	PipelineLevel int    `yaml:"pipeline_level"`
	DiagramIndex  int    `yaml:"diagram_index"`
}

// InterfaceEntry is a dataset entry for interface documents.
type InterfaceEntry struct {
	BaseEntry `yaml:",inline"`

	Approval         string `yaml:"approval"`
	InterfacePartner string `yaml:"interface_partner"`
}

// TestReportEntry is a dataset entry for test reports.
type TestReportEntry struct {
	BaseEntry `yaml:",inline"`

	Approval   string `yaml:"approval"`
	VADoorsID  string `yaml:"va_doors_id"`
	ReqDoorsID string `yaml:"req_doors_id"`
	IPACJiraID string `yaml:"ipac_jira_id"`
}

// Dataset is a full mock dataset, one list per document category.
type Dataset struct {
	ModuleSpecs       []ModuleSpecEntry `yaml:"ssdc-ms"`
	ProjectManagement []DocumentEntry   `yaml:"ssdc-pm"`
	Interfaces        []InterfaceEntry  `yaml:"ssdc-if"`
	DataProducts      []DocumentEntry   `yaml:"ssdc-dp"`
	TestReports       []TestReportEntry `yaml:"ssdc-tr"`
	TechnicalNotes    []DocumentEntry   `yaml:"ssdc-tn"`
	OperationsNotes   []DocumentEntry   `yaml:"ssdc-op"`
}

// Load reads and parses a dataset file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return &ds, nil
}

// Bootstrap upserts every dataset entry into the repository.
func (d *Dataset) Bootstrap(ctx context.Context, repo *storage.Repository) error {
	for _, e := range d.ModuleSpecs {
		doc, err := e.document(domain.CategoryModuleSpec)
		if err != nil {
			return err
		}
		err = repo.ModuleSpecs.Upsert(ctx, domain.ModuleSpecDocument{
			Document:           doc,
			ProjectContactName: e.ProjectAuthor,
			DiagramIndex:       e.DiagramIndex,
			PipelineLevel:      e.PipelineLevel,
			Approval:           e.Approval,
			Difficulty:         e.Difficulty,
		})
		if err != nil {
			return err
		}
	}

	for _, e := range d.ProjectManagement {
		doc, err := e.document(domain.CategoryProjectManagement)
		if err != nil {
			return err
		}
		err = repo.ProjectManagement.Upsert(ctx, domain.ProjectManagementDocument{
			Document: doc,
			Approval: e.Approval,
		})
		if err != nil {
			return err
		}
	}

	for _, e := range d.Interfaces {
		doc, err := e.document(domain.CategoryInterface)
		if err != nil {
			return err
		}
		err = repo.Interfaces.Upsert(ctx, domain.InterfaceDocument{
			Document:             doc,
			Approval:             e.Approval,
			InterfacePartnerName: e.InterfacePartner,
		})
		if err != nil {
			return err
		}
	}

	for _, e := range d.DataProducts {
		doc, err := e.document(domain.CategoryDataProduct)
		if err != nil {
			return err
		}
		err = repo.DataProducts.Upsert(ctx, domain.DataProductDocument{
			Document: doc,
			Approval: e.Approval,
		})
		if err != nil {
			return err
		}
	}

	for _, e := range d.TestReports {
		doc, err := e.document(domain.CategoryTestReport)
		if err != nil {
			return err
		}
		err = repo.TestReports.Upsert(ctx, domain.TestReportDocument{
			Document:   doc,
			Approval:   e.Approval,
			VADoorsID:  e.VADoorsID,
			ReqDoorsID: e.ReqDoorsID,
			IPACJiraID: e.IPACJiraID,
		})
		if err != nil {
			return err
		}
	}

	for _, e := range d.TechnicalNotes {
		doc, err := e.document(domain.CategoryTechnicalNote)
		if err != nil {
			return err
		}
		if err := repo.TechnicalNotes.Upsert(ctx, domain.TechnicalNoteDocument{Document: doc}); err != nil {
			return err
		}
	}

	for _, e := range d.OperationsNotes {
		doc, err := e.document(domain.CategoryOperationsNote)
		if err != nil {
			return err
		}
		if err := repo.OperationsNotes.Upsert(ctx, domain.OperationsNoteDocument{Document: doc}); err != nil {
			return err
		}
	}

	return nil
}
