package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/ledger"
	ConfigFileName    = "ledger.yml"
)

// Supported store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ValidDrivers is the list of valid store drivers
var ValidDrivers = []string{DriverPostgres, DriverSQLite}

// ValidLogLevels is the list of valid log levels
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// LedgerConfig holds all ledger configuration settings
type LedgerConfig struct {
	// DatabaseURL is the store connection string
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// Driver selects the store dialect (postgres or sqlite)
	Driver string `yaml:"driver" json:"driver"`

	// MaxOpenConns caps the connection pool
	MaxOpenConns int `yaml:"max_open_conns" json:"max_open_conns"`

	// MaxIdleConns caps idle connections kept in the pool
	MaxIdleConns int `yaml:"max_idle_conns" json:"max_idle_conns"`

	// ConnMaxLifetimeSeconds recycles pooled connections after this many seconds
	ConnMaxLifetimeSeconds int `yaml:"conn_max_lifetime_seconds" json:"conn_max_lifetime_seconds"`

	// StatementTimeoutMS bounds every mutation round trip; 0 disables it
	StatementTimeoutMS int `yaml:"statement_timeout_ms" json:"statement_timeout_ms"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`

	// AuditEnabled writes an audit line for every attempted mutation
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// AuditDatabaseURL persists audit events to PostgreSQL when set
	AuditDatabaseURL string `yaml:"audit_database_url" json:"audit_database_url"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *LedgerConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *LedgerConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *LedgerConfig {
	return &LedgerConfig{
		Driver:                 DriverPostgres,
		MaxOpenConns:           20,
		MaxIdleConns:           5,
		ConnMaxLifetimeSeconds: 1800,
		StatementTimeoutMS:     5000,
		LogLevel:               "info",
		AuditEnabled:           true,
		sources:                make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*LedgerConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("LEDGER_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig LedgerConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"database_url", "driver", "max_open_conns", "max_idle_conns",
		"conn_max_lifetime_seconds", "statement_timeout_ms", "log_level",
		"audit_enabled", "audit_database_url",
	}
}

func (c *LedgerConfig) applyFileConfig(file *LedgerConfig) {
	if file.DatabaseURL != "" {
		c.DatabaseURL = file.DatabaseURL
		c.sources["database_url"] = "file"
	}
	if file.Driver != "" {
		c.Driver = file.Driver
		c.sources["driver"] = "file"
	}
	if file.MaxOpenConns != 0 {
		c.MaxOpenConns = file.MaxOpenConns
		c.sources["max_open_conns"] = "file"
	}
	if file.MaxIdleConns != 0 {
		c.MaxIdleConns = file.MaxIdleConns
		c.sources["max_idle_conns"] = "file"
	}
	if file.ConnMaxLifetimeSeconds != 0 {
		c.ConnMaxLifetimeSeconds = file.ConnMaxLifetimeSeconds
		c.sources["conn_max_lifetime_seconds"] = "file"
	}
	if file.StatementTimeoutMS != 0 {
		c.StatementTimeoutMS = file.StatementTimeoutMS
		c.sources["statement_timeout_ms"] = "file"
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		c.sources["log_level"] = "file"
	}
	if file.AuditDatabaseURL != "" {
		c.AuditDatabaseURL = file.AuditDatabaseURL
		c.sources["audit_database_url"] = "file"
	}
}

func (c *LedgerConfig) applyEnvConfig() {
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.DatabaseURL = val
		c.sources["database_url"] = "environment"
	}
	if val := os.Getenv("LEDGER_DRIVER"); val != "" {
		c.Driver = val
		c.sources["driver"] = "environment"
	}
	if val := os.Getenv("LEDGER_MAX_OPEN_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.MaxOpenConns = i
			c.sources["max_open_conns"] = "environment"
		}
	}
	if val := os.Getenv("LEDGER_MAX_IDLE_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.MaxIdleConns = i
			c.sources["max_idle_conns"] = "environment"
		}
	}
	if val := os.Getenv("LEDGER_CONN_MAX_LIFETIME_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.ConnMaxLifetimeSeconds = i
			c.sources["conn_max_lifetime_seconds"] = "environment"
		}
	}
	if val := os.Getenv("LEDGER_STATEMENT_TIMEOUT_MS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.StatementTimeoutMS = i
			c.sources["statement_timeout_ms"] = "environment"
		}
	}
	if val := os.Getenv("LEDGER_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("LEDGER_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = "environment"
	}
	if val := os.Getenv("LEDGER_AUDIT_DATABASE_URL"); val != "" {
		c.AuditDatabaseURL = val
		c.sources["audit_database_url"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *LedgerConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *LedgerConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// StatementTimeout returns the per-mutation timeout, zero when disabled
func (c *LedgerConfig) StatementTimeout() time.Duration {
	return time.Duration(c.StatementTimeoutMS) * time.Millisecond
}

// ConnMaxLifetime returns the pooled connection lifetime
func (c *LedgerConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeSeconds) * time.Second
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info
func (c *LedgerConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the configuration
func (c *LedgerConfig) Validate() error {
	if !contains(ValidDrivers, c.Driver) {
		return fmt.Errorf("invalid driver: %s", c.Driver)
	}
	if !contains(ValidLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return fmt.Errorf("connection pool sizes must not be negative")
	}
	if c.MaxOpenConns > 0 && c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) exceeds max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	if c.StatementTimeoutMS < 0 {
		return fmt.Errorf("invalid statement_timeout_ms: %d", c.StatementTimeoutMS)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *LedgerConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "database_url", Value: redact(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "driver", Value: c.Driver, Source: c.Source("driver")},
		{Name: "max_open_conns", Value: strconv.Itoa(c.MaxOpenConns), Source: c.Source("max_open_conns")},
		{Name: "max_idle_conns", Value: strconv.Itoa(c.MaxIdleConns), Source: c.Source("max_idle_conns")},
		{Name: "conn_max_lifetime_seconds", Value: strconv.Itoa(c.ConnMaxLifetimeSeconds), Source: c.Source("conn_max_lifetime_seconds")},
		{Name: "statement_timeout_ms", Value: strconv.Itoa(c.StatementTimeoutMS), Source: c.Source("statement_timeout_ms")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "audit_database_url", Value: redact(c.AuditDatabaseURL), Source: c.Source("audit_database_url")},
	}
}

// FormatText returns a text representation of the configuration
func (c *LedgerConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *LedgerConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// redact hides the password of a connection URL
func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
