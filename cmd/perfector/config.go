package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/perfector/docpipe"
)

// Config is the top-level perfector configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// LibraryDB is the path to the SQLite document library.
	LibraryDB string `yaml:"library_db"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// AuthPasswordHash enables HTTP basic auth when set: a bcrypt hash of
	// the shared editor password.
	AuthPasswordHash string `yaml:"auth_password_hash"`

	// MCPTransport selects an MCP serving mode ("stdio") instead of HTTP.
	MCPTransport string `yaml:"mcp_transport"`

	// Docpipe configures the import pipeline.
	Docpipe docpipe.Config `yaml:"docpipe"`
}

// LoadConfig reads a YAML configuration file. A missing file yields the
// defaults; environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Listen = ":" + v
	}
	if v := os.Getenv("LIBRARY_DB"); v != "" {
		cfg.LibraryDB = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("AUTH_PASSWORD_HASH"); v != "" {
		cfg.AuthPasswordHash = v
	}
	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		cfg.MCPTransport = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8087"
	}
	if c.LibraryDB == "" {
		c.LibraryDB = "db/library.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
