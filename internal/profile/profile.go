// SPDX-License-Identifier: MPL-2.0

// Package profile reads and writes the user profile file (set-config.yml),
// which holds per-user preferences such as the display locale.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// FileName is the profile file name inside the config directory.
	FileName = "set-config.yml"
	// DefaultLocale is used when the profile has no locale.
	DefaultLocale = "en"

	// KeyLocale is the profile key for the display locale.
	KeyLocale = "locale"
)

// ErrUnknownKey is returned by Set for keys the profile does not support.
var ErrUnknownKey = errors.New("unknown profile key")

type (
	// Profile holds the values read from the profile file.
	Profile struct {
		Locale string `mapstructure:"locale"`
	}

	// Store reads and writes a profile file at Path.
	Store struct {
		Path string
	}

	// LocaleSource yields the locale used for remote lookups and messages.
	LocaleSource interface {
		Locale() (string, error)
	}
)

// NewStore returns a Store for the profile file inside dir.
func NewStore(dir string) *Store {
	return &Store{Path: filepath.Join(dir, FileName)}
}

// Load reads the profile. A missing file yields an empty Profile and no error.
func (s *Store) Load() (Profile, error) {
	v, err := s.read()
	if err != nil {
		return Profile{}, err
	}

	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile %s: %w", s.Path, err)
	}
	return p, nil
}

// Locale returns the profile locale, or DefaultLocale when unset. A read error
// is returned alongside DefaultLocale so callers may ignore it.
func (s *Store) Locale() (string, error) {
	p, err := s.Load()
	if err != nil {
		return DefaultLocale, err
	}
	if p.Locale == "" {
		return DefaultLocale, nil
	}
	return p.Locale, nil
}

// Set updates key and writes the profile back, creating it if needed.
func (s *Store) Set(key, value string) error {
	switch key {
	case KeyLocale:
	default:
		return fmt.Errorf("%w: %s (valid keys: %s)", ErrUnknownKey, key, KeyLocale)
	}

	v, err := s.read()
	if err != nil {
		return err
	}
	v.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}
	if err := v.WriteConfigAs(s.Path); err != nil {
		return fmt.Errorf("write profile %s: %w", s.Path, err)
	}
	return nil
}

func (s *Store) read() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(s.Path)
	v.SetConfigType("yaml")

	if _, err := os.Stat(s.Path); errors.Is(err, os.ErrNotExist) {
		return v, nil
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read profile %s: %w", s.Path, err)
	}
	return v, nil
}
