// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"devs-cli/internal/catalog"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultPluginPrefix prefixes component names to find their plugin binaries.
	DefaultPluginPrefix = "devs-component-"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidCatalogURL is returned when catalog.url is not an absolute http(s) URL.
	ErrInvalidCatalogURL = errors.New("invalid catalog url")
	// ErrInvalidPluginPrefix is returned for a blank or path-like plugin prefix.
	ErrInvalidPluginPrefix = errors.New("invalid plugin prefix")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnknownKey is returned by Config.Set for keys outside the schema.
	ErrUnknownKey = errors.New("unknown config key")
)

type (
	// ColorScheme selects the palette used for styled output.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Config is the devs CLI configuration.
	Config struct {
		Catalog  CatalogConfig  `json:"catalog" mapstructure:"catalog"`
		History  HistoryConfig  `json:"history" mapstructure:"history"`
		UI       UIConfig       `json:"ui" mapstructure:"ui"`
		Delegate DelegateConfig `json:"delegate" mapstructure:"delegate"`
	}

	// CatalogConfig configures the remote command description catalog.
	CatalogConfig struct {
		URL string `json:"url" mapstructure:"url"`
	}

	// HistoryConfig configures invocation history recording.
	HistoryConfig struct {
		Enabled bool `json:"enabled" mapstructure:"enabled"`
	}

	// UIConfig configures output.
	UIConfig struct {
		// ColorScheme sets the color scheme ("auto", "dark", "light").
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging for every invocation.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// DelegateConfig configures how project commands reach component plugins.
	DelegateConfig struct {
		// PluginPrefix is prepended to a component name to form the plugin
		// executable looked up on PATH.
		PluginPrefix string `json:"plugin_prefix" mapstructure:"plugin_prefix"`
	}

	// InvalidConfigError collects field errors found by Config.IsValid.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// Keys lists every settable configuration key.
var Keys = []string{"catalog.url", "history.enabled", "ui.verbose", "ui.color_scheme", "delegate.plugin_prefix"}

func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// IsValid checks every field and returns the collected errors.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if ok, fieldErrs := c.UI.ColorScheme.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if u, err := url.Parse(c.Catalog.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidCatalogURL, c.Catalog.URL))
	}
	if p := c.Delegate.PluginPrefix; strings.TrimSpace(p) == "" || strings.ContainsAny(p, `/\`) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidPluginPrefix, p))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Set assigns a configuration value by dotted key, parsing booleans as needed.
func (c *Config) Set(key, value string) error {
	switch key {
	case "catalog.url":
		c.Catalog.URL = value
	case "history.enabled":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.History.Enabled = b
	case "ui.verbose":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.UI.Verbose = b
	case "ui.color_scheme":
		c.UI.ColorScheme = ColorScheme(value)
	case "delegate.plugin_prefix":
		c.Delegate.PluginPrefix = value
	default:
		return fmt.Errorf("%w: %q (known: %s)", ErrUnknownKey, key, strings.Join(Keys, ", "))
	}
	return nil
}

func parseBool(key, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%s: expected a boolean, got %q", key, value)
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog:  CatalogConfig{URL: catalog.DefaultBaseURL},
		History:  HistoryConfig{Enabled: true},
		UI:       UIConfig{ColorScheme: ColorSchemeAuto},
		Delegate: DelegateConfig{PluginPrefix: DefaultPluginPrefix},
	}
}
