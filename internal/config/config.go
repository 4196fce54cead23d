package config

import (
	"fmt"
	"os"

	"api-contract-validator/internal/logger"

	"gopkg.in/yaml.v3"
)

// Config holds the run configuration.
type Config struct {
	OpenAPIURL string `yaml:"openapi_url"`
	BaseURL    string `yaml:"base_url"`

	Auth      AuthConfig      `yaml:"auth"`
	Run       RunConfig       `yaml:"run"`
	Reporting ReportingConfig `yaml:"reporting"`
	Seed      SeedConfig      `yaml:"seed"`
	LLM       LLMConfig       `yaml:"llm"`
	Log       logger.Config   `yaml:"log"`
}

// AuthConfig carries a static auth header applied to every request.
type AuthConfig struct {
	Type  string `yaml:"type"`
	Token string `yaml:"token"`
}

// Headers renders the configured auth as request headers.
func (a AuthConfig) Headers() map[string]string {
	if a.Token == "" {
		return nil
	}
	switch a.Type {
	case "", "bearer":
		return map[string]string{"Authorization": "Bearer " + a.Token}
	case "header":
		return map[string]string{"Authorization": a.Token}
	default:
		return nil
	}
}

// RunConfig holds request execution settings.
type RunConfig struct {
	TimeoutSeconds int     `yaml:"timeout"`
	MaxFanout      int     `yaml:"max_fanout"`
	LatencySeconds float64 `yaml:"latency_threshold"`
	SchemaDir      string  `yaml:"schema_dir"`
}

// ReportingConfig holds report output settings.
type ReportingConfig struct {
	Format    []string `yaml:"format"`
	OutputDir string   `yaml:"output_dir"`
	Detailed  bool     `yaml:"detailed"`
}

// SeedConfig describes optional database seeding of the context store.
type SeedConfig struct {
	Enabled  bool        `yaml:"enabled"`
	Type     string      `yaml:"type"`
	Host     string      `yaml:"host"`
	Port     int         `yaml:"port"`
	Database string      `yaml:"database"`
	User     string      `yaml:"user"`
	Password string      `yaml:"password"`
	Tables   []SeedTable `yaml:"tables"`
}

// SeedTable names one identifier column to pull into the context store.
// Key defaults to the column name when empty.
type SeedTable struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column"`
	Key    string `yaml:"key"`
	Limit  int    `yaml:"limit"`
}

// LLMConfig describes optional LLM-drafted write payloads.
type LLMConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Provider    string  `yaml:"provider"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Load reads the YAML configuration at path, applies environment overrides
// for secrets, and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Secrets prefer the environment over the file.
	if token := os.Getenv("AUTH_TOKEN"); token != "" {
		cfg.Auth.Token = token
	}
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if pw := os.Getenv("SEED_DB_PASSWORD"); pw != "" {
		cfg.Seed.Password = pw
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration usable without a config file, for the
// single-URL probe mode.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Run.TimeoutSeconds == 0 {
		c.Run.TimeoutSeconds = 10
	}
	if c.Run.MaxFanout == 0 {
		c.Run.MaxFanout = 50
	}
	if c.Run.LatencySeconds == 0 {
		c.Run.LatencySeconds = 2.0
	}
	if c.Run.SchemaDir == "" {
		c.Run.SchemaDir = "api_schemas"
	}
	if len(c.Reporting.Format) == 0 {
		c.Reporting.Format = []string{"html"}
	}
	if c.Reporting.OutputDir == "" {
		c.Reporting.OutputDir = "reports"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1000
	}
}
