package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, logger, err := loadConfig("", "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if logger == nil {
		t.Fatal("expected a logger")
	}
	if !cfg.UseMockData {
		t.Error("default config should use mock data")
	}
}

func TestLoadConfigLogLevelOverride(t *testing.T) {
	cfg, _, err := loadConfig("", "DEBUG")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := writeTestConfig(t, "log_level: loud\n")
	if _, _, err := loadConfig(path, ""); err == nil {
		t.Error("expected validation error for bad log level")
	}
}

func TestAppStartMockMode(t *testing.T) {
	cfg, logger, err := loadConfig("", "")
	if err != nil {
		t.Fatal(err)
	}
	app := NewApp(cfg, logger)
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer app.Shutdown()

	if app.repo == nil {
		t.Fatal("expected an in-memory repository")
	}
	if app.ingest != nil {
		t.Error("mock-data mode should not build an ingestion service")
	}
}

func TestSeedFromDataset(t *testing.T) {
	dataset := writeTestConfig(t, "ssdc-tn:\n  - handle: SSDC-TN-001\n    title: Note\n")

	cfg, logger, err := loadConfig("", "")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Dataset.Path = dataset

	app := NewApp(cfg, logger)
	if err := app.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer app.Shutdown()

	if err := seedFromDataset(context.Background(), app); err != nil {
		t.Fatalf("seedFromDataset: %v", err)
	}
	notes, err := app.repo.TechnicalNotes.GetAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Handle != "SSDC-TN-001" {
		t.Errorf("unexpected notes: %+v", notes)
	}
}
