// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"devs-cli/internal/catalog"
	"devs-cli/internal/config"
	"devs-cli/internal/delegate"
	"devs-cli/internal/history"
	"devs-cli/internal/profile"
	"devs-cli/internal/template"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every command tree is built from an App, and services
	// that depend on the loaded configuration (catalog, delegate) are created per
	// invocation when the App does not supply them.
	App struct {
		Config    ConfigProvider
		Catalog   catalog.Fetcher
		Templates TemplateLoader
		Delegate  delegate.Handler
		History   HistoryRecorder
		Profile   ProfileStore
		Logger    *log.Logger
		LookupEnv func(string) (string, bool)
		Getwd     func() (string, error)
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp or, for config-dependent
	// services, when the command tree is built.
	Dependencies struct {
		Config    ConfigProvider
		Catalog   catalog.Fetcher
		Templates TemplateLoader
		Delegate  delegate.Handler
		History   HistoryRecorder
		Profile   ProfileStore
		Logger    *log.Logger
		LookupEnv func(string) (string, bool)
		Getwd     func() (string, error)
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// TemplateLoader parses and variable-resolves a template file.
	TemplateLoader interface {
		Load(path string) (*template.Document, error)
	}

	// HistoryRecorder persists and lists invocations.
	HistoryRecorder interface {
		Record(argv []string) error
		Entries(limit int) ([]history.Entry, error)
	}

	// ProfileStore reads and writes user preferences such as the catalog locale.
	ProfileStore interface {
		Locale() (string, error)
		Set(key, value string) error
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Logger == nil {
		deps.Logger = log.NewWithOptions(deps.Stderr, log.Options{Prefix: config.AppName})
	}
	if deps.LookupEnv == nil {
		deps.LookupEnv = os.LookupEnv
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Templates == nil {
		deps.Templates = template.Loader{LookupEnv: deps.LookupEnv}
	}

	if deps.History == nil || deps.Profile == nil {
		cfgDir, err := config.ConfigDir()
		if err != nil {
			return nil, err
		}
		if deps.History == nil {
			deps.History = history.NewRecorder(cfgDir)
		}
		if deps.Profile == nil {
			deps.Profile = profile.NewStore(cfgDir)
		}
	}

	return &App{
		Config:    deps.Config,
		Catalog:   deps.Catalog,
		Templates: deps.Templates,
		Delegate:  deps.Delegate,
		History:   deps.History,
		Profile:   deps.Profile,
		Logger:    deps.Logger,
		LookupEnv: deps.LookupEnv,
		Getwd:     deps.Getwd,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}, nil
}

// catalogFor returns the App's fetcher or a catalog client configured by cfg
// that reports failed lookups to onError.
func (a *App) catalogFor(cfg *config.Config, onError func(error)) catalog.Fetcher {
	if a.Catalog != nil {
		return a.Catalog
	}
	return catalog.NewClient(
		catalog.WithBaseURL(cfg.Catalog.URL),
		catalog.WithLocaleSource(a.Profile),
		catalog.WithUserAgent(config.AppName+"/"+Version),
		catalog.WithLogger(a.Logger),
		catalog.WithErrorHandler(onError),
	)
}

// delegateFor returns the App's handler or a component runner configured by cfg.
func (a *App) delegateFor(cfg *config.Config) delegate.Handler {
	if a.Delegate != nil {
		return a.Delegate
	}
	return &delegate.ComponentRunner{
		Templates:    a.Templates,
		PluginPrefix: cfg.Delegate.PluginPrefix,
		Stdin:        os.Stdin,
		Stdout:       a.stdout,
		Stderr:       a.stderr,
		Logger:       a.Logger,
	}
}
