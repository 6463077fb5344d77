package domain

import (
	"testing"
	"time"
)

func TestDiagramRef(t *testing.T) {
	doc := ModuleSpecDocument{PipelineLevel: 2, DiagramIndex: 7}
	if ref := doc.DiagramRef(); ref != "L2.7" {
		t.Errorf("expected L2.7, got %s", ref)
	}
	if ref := doc.SortableDiagramRef(); ref != "L2.07" {
		t.Errorf("expected L2.07, got %s", ref)
	}

	doc = ModuleSpecDocument{PipelineLevel: 3, DiagramIndex: 12}
	if ref := doc.SortableDiagramRef(); ref != "L3.12" {
		t.Errorf("expected L3.12, got %s", ref)
	}
}

func TestDefaultIssueCount(t *testing.T) {
	ic := DefaultIssueCount("https://github.com/SPHEREx/ssdc-ms-001/")
	if ic.OpenIssueCount != 0 || ic.OpenPRCount != 0 {
		t.Errorf("expected zero counts, got %d/%d", ic.OpenIssueCount, ic.OpenPRCount)
	}
	if ic.IssueURL != "https://github.com/SPHEREx/ssdc-ms-001/issues" {
		t.Errorf("unexpected issue URL: %s", ic.IssueURL)
	}
	if ic.PRURL != "https://github.com/SPHEREx/ssdc-ms-001/pulls" {
		t.Errorf("unexpected PR URL: %s", ic.PRURL)
	}
}

func TestTestReportDerivedFields(t *testing.T) {
	t.Run("verification flag", func(t *testing.T) {
		doc := TestReportDocument{}
		if doc.HasVerificationIDs() {
			t.Error("expected no verification IDs")
		}
		doc.ReqDoorsID = "REQ-123"
		if !doc.HasVerificationIDs() {
			t.Error("expected verification IDs")
		}
	})

	t.Run("ticket URL", func(t *testing.T) {
		doc := TestReportDocument{IPACJiraID: "SSDC-456"}
		expected := "https://jira.ipac.caltech.edu/browse/SSDC-456"
		if u := doc.TicketURL(); u != expected {
			t.Errorf("expected %s, got %s", expected, u)
		}
		if u := (TestReportDocument{}).TicketURL(); u != "" {
			t.Errorf("expected empty ticket URL, got %s", u)
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Run("naive timestamp assumed UTC", func(t *testing.T) {
		ts, err := ParseTimestamp("2024-01-01T00:00:00")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		if !ts.Equal(expected) {
			t.Errorf("expected %s, got %s", expected, ts)
		}
		if ts.Location() != time.UTC {
			t.Errorf("expected UTC location, got %s", ts.Location())
		}
	})

	t.Run("zone-aware timestamp preserved", func(t *testing.T) {
		ts, err := ParseTimestamp("2024-01-01T05:00:00+05:00")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		if !ts.Equal(expected) {
			t.Errorf("expected %s, got %s", expected, ts)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := ParseTimestamp("not a time"); err == nil {
			t.Error("expected error")
		}
	})
}

func TestNewRelease(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	r := NewRelease("v1.2.0", time.Date(2024, 3, 1, 7, 0, 0, 0, est))
	if r.DateCreated.Location() != time.UTC {
		t.Errorf("expected UTC, got %s", r.DateCreated.Location())
	}
	if r.DateCreated.Hour() != 12 {
		t.Errorf("expected 12:00 UTC, got %s", r.DateCreated)
	}
}
