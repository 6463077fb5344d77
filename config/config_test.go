package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if !cfg.UseMockData {
		t.Error("default config should run in mock-data mode")
	}
	if cfg.Refresh.Schedule != "*/15 * * * *" {
		t.Errorf("unexpected default schedule: %s", cfg.Refresh.Schedule)
	}
}

func TestConfigValidate(t *testing.T) {
	live := func(c *Config) {
		c.UseMockData = false
		c.LTD.Password = "secret"
		c.S3.AccessKeyID = "AKID"
		c.S3.SecretAccessKey = "SECRET"
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid live mode",
			modify:  live,
			wantErr: false,
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
		},
		{
			name:    "missing http addr",
			modify:  func(c *Config) { c.HTTP.Addr = "" },
			wantErr: true,
		},
		{
			name:    "mock mode without dataset",
			modify:  func(c *Config) { c.Dataset.Path = "" },
			wantErr: true,
		},
		{
			name: "live mode without credentials",
			modify: func(c *Config) {
				live(c)
				c.LTD.Password = ""
			},
			wantErr: true,
		},
		{
			name: "live mode without aws keys",
			modify: func(c *Config) {
				live(c)
				c.S3.SecretAccessKey = ""
			},
			wantErr: true,
		},
		{
			name: "live mode without schedule",
			modify: func(c *Config) {
				live(c)
				c.Refresh.Schedule = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("PORTAL_LTD_PASSWORD", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
name: portal-test
log_level: debug
use_mock_data: false
ltd:
  password: ${PORTAL_LTD_PASSWORD}
s3:
  access_key_id: ${PORTAL_AWS_KEY:-fallback-key}
  secret_access_key: literal-secret
github:
  installations:
    - repository: SPHEREx/ssdc-ms-001
      token: tok-ms
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Name != "portal-test" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.LTD.Organization != "spherex" {
		t.Errorf("defaults should fill unset fields, got organization %q", cfg.LTD.Organization)
	}
	if cfg.LTD.Password != "from-env" {
		t.Errorf("env expansion failed, password = %q", cfg.LTD.Password)
	}
	if cfg.S3.AccessKeyID != "fallback-key" {
		t.Errorf("default expansion failed, access key = %q", cfg.S3.AccessKeyID)
	}

	tokens := cfg.GitHubTokens()
	if tokens["SPHEREx/ssdc-ms-001"] != "tok-ms" {
		t.Errorf("GitHubTokens() = %v", tokens)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestGitHubTokensEmpty(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GitHubTokens() != nil {
		t.Error("no installations should yield a nil token map")
	}
}
