// Package settings manages persistent user settings for the iosrecon CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/amalmborg97/cisco.ios/pkg/diff"
)

const (
	defaultRedisAddr = "127.0.0.1:6379"
	defaultAuditLog  = "/var/log/iosrecon/audit.log"
)

// Settings holds persistent user preferences
type Settings struct {
	// DefaultState is the reconcile state used when a task names none
	DefaultState string `json:"default_state,omitempty"`

	// RedisAddr is the snapshot store address
	RedisAddr string `json:"redis_addr,omitempty"`

	// RedisDB selects the snapshot store database
	RedisDB int `json:"redis_db,omitempty"`

	// AuditLog is the audit log file
	AuditLog string `json:"audit_log,omitempty"`

	// MetricsFile receives run metrics in the text exposition format
	MetricsFile string `json:"metrics_file,omitempty"`

	// LenientParse skips unrecognized running-config lines
	LenientParse bool `json:"lenient_parse,omitempty"`
}

// Keys lists the setting names accepted by Set and Get.
var Keys = []string{"default_state", "redis_addr", "redis_db", "audit_log", "metrics_file", "lenient_parse"}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "iosrecon_settings.json"
	}
	return filepath.Join(home, ".iosrecon", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetDefaultState returns the default reconcile state (with fallback)
func (s *Settings) GetDefaultState() diff.Mode {
	if m, err := diff.ParseMode(s.DefaultState); err == nil {
		return m
	}
	return diff.Merged
}

// GetRedisAddr returns the snapshot store address (with fallback)
func (s *Settings) GetRedisAddr() string {
	if s.RedisAddr != "" {
		return s.RedisAddr
	}
	return defaultRedisAddr
}

// GetAuditLog returns the audit log path (with fallback)
func (s *Settings) GetAuditLog() string {
	if s.AuditLog != "" {
		return s.AuditLog
	}
	return defaultAuditLog
}

// Set assigns a setting by name. Values are validated before they are stored.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "default_state", "state":
		m, err := diff.ParseMode(value)
		if err != nil {
			return err
		}
		s.DefaultState = string(m)
	case "redis_addr", "redis":
		s.RedisAddr = value
	case "redis_db":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("redis_db must be a non-negative number, got %q", value)
		}
		s.RedisDB = n
	case "audit_log":
		s.AuditLog = value
	case "metrics_file":
		s.MetricsFile = value
	case "lenient_parse", "lenient":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("lenient_parse must be true or false, got %q", value)
		}
		s.LenientParse = b
	default:
		return fmt.Errorf("unknown setting: %s (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// Get returns a setting by name as stored, "" when unset.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "default_state", "state":
		return s.DefaultState, nil
	case "redis_addr", "redis":
		return s.RedisAddr, nil
	case "redis_db":
		if s.RedisDB == 0 {
			return "", nil
		}
		return strconv.Itoa(s.RedisDB), nil
	case "audit_log":
		return s.AuditLog, nil
	case "metrics_file":
		return s.MetricsFile, nil
	case "lenient_parse", "lenient":
		if !s.LenientParse {
			return "", nil
		}
		return "true", nil
	}
	return "", fmt.Errorf("unknown setting: %s (valid: %s)", key, strings.Join(Keys, ", "))
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
