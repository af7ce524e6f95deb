// Package config loads client settings from defaults, TOML files, and the
// environment. Flags are applied last by the CLI layer.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultBaseURL        = "http://localhost:3000/todos"
	DefaultTimeoutSeconds = 10
	DefaultLogLevel       = "info"
	DefaultTheme          = "classic"

	userDirName        = ".tada"
	userConfigFileName = "config.toml"
	projectConfigFile  = ".tada.toml"
	defaultLogFileName = "tada.log"
)

// Config holds every tunable of the client.
type Config struct {
	BaseURL        string `toml:"base_url" validate:"required"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=0"`
	LogFile        string `toml:"log_file"`
	LogLevel       string `toml:"log_level" validate:"omitempty,oneof=debug info warn warning error off disabled none"`
	Theme          string `toml:"theme" validate:"oneof=classic neon mono"`
}

var validate = newValidator()

// newValidator reports fields by their TOML key.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
	})
	return v
}

// Timeout converts TimeoutSeconds; zero means no per-request timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	cfg := &Config{
		BaseURL:        DefaultBaseURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
		LogLevel:       DefaultLogLevel,
		Theme:          DefaultTheme,
	}
	if dir, err := UserDir(); err == nil {
		cfg.LogFile = filepath.Join(dir, defaultLogFileName)
	}
	return cfg
}

// UserDir is ~/.tada, shared with the credentials file.
func UserDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, userDirName), nil
}

// Load builds the config in priority order:
// 1. Defaults
// 2. User config file (~/.tada/config.toml)
// 3. Project config file (./.tada.toml), or explicitPath when set
// 4. Environment variables
func Load(explicitPath string) (*Config, error) {
	cfg := Defaults()

	if explicitPath != "" {
		if err := loadFile(cfg, expandPath(explicitPath)); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", explicitPath, err)
		}
	} else {
		for _, p := range candidateFiles() {
			if err := loadFileIfExists(cfg, p); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", p, err)
			}
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func candidateFiles() []string {
	var out []string
	if dir, err := UserDir(); err == nil {
		out = append(out, filepath.Join(dir, userConfigFileName))
	}
	if wd, err := os.Getwd(); err == nil {
		out = append(out, filepath.Join(wd, projectConfigFile))
	}
	return out
}

func loadFileIfExists(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return loadFile(cfg, path)
}

// loadFile decodes path over cfg; keys absent from the file keep their
// current values.
func loadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TADA_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TADA_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TADA_TIMEOUT_SECONDS: not a number: %s", v)
		}
		cfg.TimeoutSeconds = n
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
	return nil
}

// Finalize normalizes paths and validates values. The CLI calls it again
// after applying flags.
func (c *Config) Finalize() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https, got %q", u.Scheme)
	}
	c.LogFile = expandPath(c.LogFile)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: invalid value %v (want %s %s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
		}
		return err
	}
	return nil
}

// expandPath expands a leading ~/ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded[1:], "/"))
	}
	return expanded
}
