package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/notes/config"
	ConfigFileName    = "notes.yml"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// NotesConfig holds all server configuration settings
type NotesConfig struct {
	// StoreBackend selects where devices, secrets and notes live
	StoreBackend string `yaml:"store_backend" json:"store_backend"`

	// SnapshotPath is the memory backend snapshot file; empty disables persistence
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`

	// SnapshotInterval is the time between snapshots in seconds
	SnapshotInterval int `yaml:"snapshot_interval" json:"snapshot_interval"`

	// TokenTTL is the lifetime of issued bearer tokens in seconds
	TokenTTL int `yaml:"token_ttl" json:"token_ttl"`

	// MaxNoteBytes caps note ciphertext size; 0 disables the limit
	MaxNoteBytes int `yaml:"max_note_bytes" json:"max_note_bytes"`

	// TrustedProxies is a list of CIDR ranges for trusted proxies
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// AuditEnabled turns audit logging on or off
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors NotesConfig with pointers so explicit zero values in
// the file are distinguishable from absent keys.
type fileConfig struct {
	StoreBackend     *string  `yaml:"store_backend"`
	SnapshotPath     *string  `yaml:"snapshot_path"`
	SnapshotInterval *int     `yaml:"snapshot_interval"`
	TokenTTL         *int     `yaml:"token_ttl"`
	MaxNoteBytes     *int     `yaml:"max_note_bytes"`
	TrustedProxies   []string `yaml:"trusted_proxies"`
	AuditEnabled     *bool    `yaml:"audit_enabled"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *NotesConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *NotesConfig {
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
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment. The current
// configuration is kept when the new one fails to load or validate.
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *NotesConfig {
	return &NotesConfig{
		StoreBackend:     BackendMemory,
		SnapshotPath:     "",
		SnapshotInterval: 60,
		TokenTTL:         3600,
		MaxNoteBytes:     1 << 20,
		TrustedProxies:   []string{},
		AuditEnabled:     true,
		sources:          make(map[string]string),
	}
}

// Path returns the config file location derived from NOTES_CONFIG_PATH.
func Path() string {
	configPath := os.Getenv("NOTES_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return filepath.Join(configPath, ConfigFileName)
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*NotesConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	config.configFilePath = Path()

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"store_backend", "snapshot_path", "snapshot_interval", "token_ttl",
		"max_note_bytes", "trusted_proxies", "audit_enabled",
	}
}

func (c *NotesConfig) applyFileConfig(file *fileConfig) {
	if file.StoreBackend != nil {
		c.StoreBackend = *file.StoreBackend
		c.sources["store_backend"] = "file"
	}
	if file.SnapshotPath != nil {
		c.SnapshotPath = *file.SnapshotPath
		c.sources["snapshot_path"] = "file"
	}
	if file.SnapshotInterval != nil {
		c.SnapshotInterval = *file.SnapshotInterval
		c.sources["snapshot_interval"] = "file"
	}
	if file.TokenTTL != nil {
		c.TokenTTL = *file.TokenTTL
		c.sources["token_ttl"] = "file"
	}
	if file.MaxNoteBytes != nil {
		c.MaxNoteBytes = *file.MaxNoteBytes
		c.sources["max_note_bytes"] = "file"
	}
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = "file"
	}
}

func (c *NotesConfig) applyEnvConfig() error {
	if val := os.Getenv("NOTES_STORE_BACKEND"); val != "" {
		c.StoreBackend = val
		c.sources["store_backend"] = "environment"
	}
	if val := os.Getenv("NOTES_SNAPSHOT_PATH"); val != "" {
		c.SnapshotPath = val
		c.sources["snapshot_path"] = "environment"
	}
	ints := []struct {
		env  string
		name string
		dest *int
	}{
		{"NOTES_SNAPSHOT_INTERVAL", "snapshot_interval", &c.SnapshotInterval},
		{"NOTES_TOKEN_TTL", "token_ttl", &c.TokenTTL},
		{"NOTES_MAX_NOTE_BYTES", "max_note_bytes", &c.MaxNoteBytes},
	}
	for _, i := range ints {
		val := os.Getenv(i.env)
		if val == "" {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", i.env, err)
		}
		*i.dest = n
		c.sources[i.name] = "environment"
	}
	if val := os.Getenv("NOTES_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("NOTES_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = "environment"
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *NotesConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *NotesConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// SnapshotEvery returns the snapshot interval as a duration
func (c *NotesConfig) SnapshotEvery() time.Duration {
	return time.Duration(c.SnapshotInterval) * time.Second
}

// TokenLifetime returns the token TTL as a duration
func (c *NotesConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *NotesConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *NotesConfig) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("invalid store_backend: %q (want %s or %s)", c.StoreBackend, BackendMemory, BackendPostgres)
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if c.SnapshotInterval < 0 {
		return fmt.Errorf("invalid snapshot_interval: %d", c.SnapshotInterval)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid token_ttl: %d", c.TokenTTL)
	}
	if c.MaxNoteBytes < 0 {
		return fmt.Errorf("invalid max_note_bytes: %d", c.MaxNoteBytes)
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *NotesConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "store_backend", Value: c.StoreBackend, Source: c.Source("store_backend")},
		{Name: "snapshot_path", Value: c.SnapshotPath, Source: c.Source("snapshot_path")},
		{Name: "snapshot_interval", Value: strconv.Itoa(c.SnapshotInterval), Source: c.Source("snapshot_interval")},
		{Name: "token_ttl", Value: strconv.Itoa(c.TokenTTL), Source: c.Source("token_ttl")},
		{Name: "max_note_bytes", Value: strconv.Itoa(c.MaxNoteBytes), Source: c.Source("max_note_bytes")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
	}
}

// FormatText returns a text representation of the configuration
func (c *NotesConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *NotesConfig) FormatJSON() (string, error) {
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

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
