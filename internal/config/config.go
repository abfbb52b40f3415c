package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/semmy-space/auth/internal/codec"
)

// Defaults applied when a key is unset.
const (
	DefaultBackend = "file"
	DefaultIssuer  = "auth"
)

// Config holds the CLI configuration. Every field can be overridden by the
// environment variable in its env tag; overrides are never written back.
type Config struct {
	Backend       string `json:"backend,omitempty" env:"AUTH_BACKEND" validate:"omitempty,oneof=file keyring auto"`
	DataDir       string `json:"data_dir,omitempty" env:"AUTH_DATABASE_DIR"`
	DecodeMode    string `json:"decode_mode,omitempty" env:"AUTH_DECODE_MODE" validate:"omitempty,oneof=base32 raw"`
	DefaultOutput string `json:"default_output,omitempty" env:"AUTH_OUTPUT" validate:"omitempty,oneof=auto json plain rich"`
	Issuer        string `json:"issuer,omitempty" env:"AUTH_ISSUER"`
	LogLevel      string `json:"log_level,omitempty" env:"AUTH_LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`

	path string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads config from the XDG path, returns defaults if the file doesn't
// exist.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads config from path. A missing file yields an empty Config
// that saves to path.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// WithEnv returns a copy of c with environment overrides applied.
func (c *Config) WithEnv() (*Config, error) {
	out := *c
	if err := env.Parse(&out); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	return &out, nil
}

// Validate checks enumerated keys.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		key := jsonKey(fe.StructField())
		return fmt.Errorf("%s must be one of [%s], got %q", key, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	}
	return err
}

// Path returns the file the config is saved to.
func (c *Config) Path() string {
	if c.path == "" {
		return ConfigPath()
	}
	return c.path
}

// Save writes the config to its path
func (c *Config) Save() error {
	path := c.Path()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// JSON is valid JSON5
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Keys returns every config key in sorted order.
func Keys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if k := jsonKey(t.Field(i).Name); k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Get retrieves a config value by key name
func (c *Config) Get(key string) (string, error) {
	f, err := c.field(key)
	if err != nil {
		return "", err
	}
	return f.String(), nil
}

// Set sets a config value by key name and saves
func (c *Config) Set(key, value string) error {
	f, err := c.field(key)
	if err != nil {
		return err
	}
	prev := f.String()
	f.SetString(value)
	if err := c.Validate(); err != nil {
		f.SetString(prev)
		return err
	}
	return c.Save()
}

// Unset sets a config value to its zero value and saves
func (c *Config) Unset(key string) error {
	f, err := c.field(key)
	if err != nil {
		return err
	}
	f.SetString("")
	return c.Save()
}

func (c *Config) field(key string) (reflect.Value, error) {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if name := jsonKey(t.Field(i).Name); name != "" && name == key {
			return v.Field(i), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("unknown config key: %s", key)
}

// jsonKey maps a struct field name to its JSON key, or "" for fields that
// are not serialised.
func jsonKey(fieldName string) string {
	field, ok := reflect.TypeOf(Config{}).FieldByName(fieldName)
	if !ok {
		return ""
	}
	tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if tag == "-" {
		return ""
	}
	return tag
}

// ResolvedBackend returns the storage backend kind.
func (c *Config) ResolvedBackend() string {
	if c.Backend == "" {
		return DefaultBackend
	}
	return c.Backend
}

// ResolvedDataDir returns the directory holding the entries file.
func (c *Config) ResolvedDataDir() string {
	if c.DataDir == "" {
		return DataDir()
	}
	return c.DataDir
}

// ResolvedDecodeMode returns how secrets are turned into keys.
func (c *Config) ResolvedDecodeMode() (codec.Mode, error) {
	return codec.ParseMode(c.DecodeMode)
}

// ResolvedIssuer returns the issuer used when exporting URIs.
func (c *Config) ResolvedIssuer() string {
	if c.Issuer == "" {
		return DefaultIssuer
	}
	return c.Issuer
}
