package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// CLINICALFORMS_API_BASE_URL for api.base_url.
const EnvPrefix = "CLINICALFORMS"

const defaultTheme = "clinic"

// Config is the CLI configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Log    LogConfig    `mapstructure:"log"`
	Render RenderConfig `mapstructure:"render"`
	Form   FormConfig   `mapstructure:"form"`
}

type APIConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Token        string        `mapstructure:"token"`
	RefreshToken string        `mapstructure:"refresh_token"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RenderConfig struct {
	Theme   string `mapstructure:"theme"`
	Variant string `mapstructure:"variant"`
}

type FormConfig struct {
	// CheckboxRequired is "checked" (a required checkbox must be ticked) or
	// "answered" (an explicit false also satisfies it).
	CheckboxRequired string `mapstructure:"checkbox_required"`
}

var keys = []string{
	"api.base_url",
	"api.token",
	"api.refresh_token",
	"api.timeout",
	"log.level",
	"log.format",
	"render.theme",
	"render.variant",
	"form.checkbox_required",
}

// New returns a viper instance with defaults and env bindings in place.
// Callers may bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("render.theme", defaultTheme)
	v.SetDefault("form.checkbox_required", "checked")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the optional YAML file at path into v and decodes the result.
// An empty path skips the file.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = New()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the CLI cannot act on.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("config: log.format %q: want console or json", c.Log.Format))
	}
	switch strings.ToLower(c.Form.CheckboxRequired) {
	case "checked", "answered":
	default:
		errs = append(errs, fmt.Errorf("config: form.checkbox_required %q: want checked or answered", c.Form.CheckboxRequired))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("config: api.timeout %s is negative", c.API.Timeout))
	}
	return errors.Join(errs...)
}

// CheckboxAnswered reports whether an explicit false satisfies a required
// checkbox.
func (c *Config) CheckboxAnswered() bool {
	return strings.EqualFold(c.Form.CheckboxRequired, "answered")
}
