package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable pointing at an optional YAML config file.
const FileEnv = "CONFIG_FILE"

// Load reads configuration in three layers: tag defaults, the YAML file named
// by CONFIG_FILE (if any), then environment variables. The result is validated.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(FileEnv))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if err := walkStruct(reflect.ValueOf(cfg).Elem(), applyDefault); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := walkStruct(reflect.ValueOf(cfg).Elem(), applyEnv); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

type fieldFunc func(field reflect.StructField, value reflect.Value) error

var timeType = reflect.TypeOf(time.Time{})

// walkStruct calls fn for every settable field with an env tag, descending
// into nested section structs.
func walkStruct(v reflect.Value, fn fieldFunc) error {
	for i := 0; i < v.NumField(); i++ {
		sf, fv := v.Type().Field(i), v.Field(i)
		switch {
		case !fv.CanSet():
		case sf.Type.Kind() == reflect.Struct && sf.Type != timeType:
			if err := walkStruct(fv, fn); err != nil {
				return err
			}
		case sf.Tag.Get("env") != "":
			if err := fn(sf, fv); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyDefault sets a field from its default tag.
func applyDefault(field reflect.StructField, value reflect.Value) error {
	def := field.Tag.Get("default")
	if def == "" {
		return nil
	}
	if err := setField(value, def); err != nil {
		return fmt.Errorf("invalid default for %s=%q: %w", field.Tag.Get("env"), def, err)
	}
	return nil
}

// applyEnv overrides a field from its environment variable, falling back to
// the envAlt name.
func applyEnv(field reflect.StructField, value reflect.Value) error {
	name := field.Tag.Get("env")
	raw, used := os.Getenv(name), name
	if alt := field.Tag.Get("envAlt"); raw == "" && alt != "" {
		raw, used = os.Getenv(alt), alt
	}

	if raw == "" {
		if field.Tag.Get("required") == "true" && value.IsZero() {
			return fmt.Errorf("required environment variable %s is not set", name)
		}
		return nil
	}
	if err := setField(value, raw); err != nil {
		return fmt.Errorf("invalid value for %s=%q: %w", used, raw, err)
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// setField parses raw into field according to the field's type.
func setField(field reflect.Value, raw string) error {
	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
	case field.Kind() == reflect.String:
		field.SetString(raw)
	case field.Kind() == reflect.Int, field.Kind() == reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
		field.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}
	return nil
}

// splitList splits a comma-separated value, dropping blank items.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// problems accumulates validation failures so they are reported together.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var p problems

	p.check(c.Server.Port > 0 && c.Server.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	p.check(c.Server.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	p.check(c.Server.RequestTimeout > 0, "SERVER_REQUEST_TIMEOUT must be positive")

	p.check(c.Hunter.BaseURL != "", "HUNTER_BASE_URL is required")
	p.check(c.Hunter.Timeout > 0, "HUNTER_TIMEOUT must be positive")
	p.check(c.Hunter.RequestsPerSecond > 0, "HUNTER_REQUESTS_PER_SECOND must be positive")
	p.check(c.Hunter.Burst > 0, "HUNTER_BURST must be positive")

	p.check(c.Search.MaxConcurrent > 0, "SEARCH_MAX_CONCURRENT must be positive")
	p.check(c.Search.MaxWaitTime > 0, "SEARCH_MAX_WAIT_TIME must be positive")
	p.check(strings.TrimSpace(c.Artifacts.Dir) != "", "OUTPUT_DIR must not be empty")

	switch strings.ToLower(c.Catalog.Driver) {
	case "memory", "sqlite":
	case "postgres":
		p.check(c.Catalog.DSN != "", "CATALOG_DSN (or DATABASE_URL) is required when CATALOG_DRIVER=postgres")
		p.check(c.Catalog.MaxConns > 0, "CATALOG_MAX_CONNS must be positive")
	default:
		p.check(false, "CATALOG_DRIVER (%q) must be one of: memory, sqlite, postgres", c.Catalog.Driver)
	}

	if c.Rate.Enabled {
		p.check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(c.Rate.SearchLimit > 0, "RATE_LIMIT_SEARCH must be positive when rate limiting is enabled")
	}

	p.check(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty")

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.check(false, "LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		p.check(false, "LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(p) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like the API key and catalog DSN are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Hunter: {BaseURL: %q, APIKey: %s, Timeout: %s}, ",
		c.Hunter.BaseURL, mask(c.Hunter.APIKey), c.Hunter.Timeout))
	b.WriteString(fmt.Sprintf("Search: {MaxConcurrent: %d}, ", c.Search.MaxConcurrent))
	b.WriteString(fmt.Sprintf("Artifacts: {Dir: %q}, ", c.Artifacts.Dir))
	b.WriteString(fmt.Sprintf("Catalog: {Driver: %q, DSN: %s}, ", c.Catalog.Driver, mask(c.Catalog.DSN)))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
