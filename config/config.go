// Package config provides configuration loading and management for the
// document portal.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the complete portal configuration
type Config struct {
	// Name identifies the service in logs.
	Name string `yaml:"name"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// UseMockData serves documents from the dataset file instead of
	// ingesting from upstream sources.
	UseMockData bool `yaml:"use_mock_data"`

	HTTP    HTTPConfig    `yaml:"http"`
	NATS    NATSConfig    `yaml:"nats"`
	Dataset DatasetConfig `yaml:"dataset"`
	LTD     LTDConfig     `yaml:"ltd"`
	S3      S3Config      `yaml:"s3"`
	GitHub  GitHubConfig  `yaml:"github"`
	Refresh RefreshConfig `yaml:"refresh"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	// Addr is the listen address (default ":8080")
	Addr string `yaml:"addr"`
}

// NATSConfig configures the NATS connection backing the document store
type NATSConfig struct {
	// URL is the NATS server URL (empty = in-memory store, single process)
	URL string `yaml:"url"`
}

// DatasetConfig configures the mock dataset
type DatasetConfig struct {
	// Path is the dataset YAML file
	Path string `yaml:"path"`
	// Watch reloads the dataset when the file changes
	Watch bool `yaml:"watch"`
}

// LTDConfig configures the documentation-host API
type LTDConfig struct {
	// URL is the API base URL
	URL string `yaml:"url"`
	// Organization is the organization slug to ingest
	Organization string `yaml:"organization"`
	// Username and Password are exchanged for an access token
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// S3Config configures metadata-object reads from the documentation bucket
type S3Config struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	// Endpoint overrides the object-store endpoint (MinIO, test doubles)
	Endpoint string `yaml:"endpoint"`
}

// GitHubConfig configures the repository-host API
type GitHubConfig struct {
	// BaseURL is the API base URL
	BaseURL string `yaml:"base_url"`
	// Installations lists the repositories the portal may query,
	// with their installation tokens
	Installations []InstallationConfig `yaml:"installations"`
}

// InstallationConfig is one repository's installation token
type InstallationConfig struct {
	// Repository is "owner/name"
	Repository string `yaml:"repository"`
	Token      string `yaml:"token"`
}

// RefreshConfig configures scheduled ingestion
type RefreshConfig struct {
	// Schedule is a cron expression (default: every 15 minutes)
	Schedule string `yaml:"schedule"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Name:        "docportal",
		LogLevel:    "info",
		UseMockData: true,
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		NATS: NATSConfig{
			URL: "", // In-memory store
		},
		Dataset: DatasetConfig{
			Path:  "dataset.example.yaml",
			Watch: false,
		},
		LTD: LTDConfig{
			URL:          "https://docs-api.ipac.caltech.edu",
			Organization: "spherex",
			Username:     "spherex-portal",
		},
		S3: S3Config{
			Region: "us-west-1",
		},
		GitHub: GitHubConfig{
			BaseURL: "https://api.github.com",
		},
		Refresh: RefreshConfig{
			Schedule: "*/15 * * * *",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.UseMockData {
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset.path is required in mock-data mode")
		}
		return nil
	}
	if c.LTD.URL == "" {
		return fmt.Errorf("ltd.url is required")
	}
	if c.LTD.Organization == "" {
		return fmt.Errorf("ltd.organization is required")
	}
	if c.LTD.Username == "" || c.LTD.Password == "" {
		return fmt.Errorf("ltd.username and ltd.password are required")
	}
	if c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "" {
		return fmt.Errorf("s3.access_key_id and s3.secret_access_key are required")
	}
	if c.Refresh.Schedule == "" {
		return fmt.Errorf("refresh.schedule is required")
	}
	return nil
}

// GitHubTokens returns the installation tokens keyed by "owner/name".
func (c *Config) GitHubTokens() map[string]string {
	if len(c.GitHub.Installations) == 0 {
		return nil
	}
	tokens := make(map[string]string, len(c.GitHub.Installations))
	for _, inst := range c.GitHub.Installations {
		tokens[inst.Repository] = inst.Token
	}
	return tokens
}

// envPattern matches ${VAR} and ${VAR:-default} references.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandEnv substitutes ${VAR} references in the raw config with
// environment values so credentials can stay out of the file. An unset
// variable expands to its ${VAR:-default} fallback or the empty string.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		groups := envPattern.FindSubmatch(match)
		if value, ok := os.LookupEnv(string(groups[1])); ok {
			return []byte(value)
		}
		return groups[2]
	})
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(expandEnv(data), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
