// Package app provides the application context and dependency wiring
// for the credtally CLI: configuration, logging, and the scanner and
// registry instances the commands share.
package app

import (
	"github.com/rs/zerolog"

	"github.com/credtally/credtally/pkg/errors"
	"github.com/credtally/credtally/pkg/registry"
	"github.com/credtally/credtally/pkg/scan"
)

// App represents the credtally application with its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "failed to load configuration", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version string.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// NewScanner builds a scanner from the configuration and the given
// per-command switches.
func (a *App) NewScanner(withRegistry, withLicenses bool, vendorPatterns []string) *scan.Scanner {
	var opts []scan.Option
	if withLicenses {
		opts = append(opts, scan.WithLicenseExtraction())
	}
	if withRegistry {
		var regOpts []registry.Option
		if a.config.RegistryURL != "" {
			regOpts = append(regOpts, registry.WithBaseURL(a.config.RegistryURL))
		}
		opts = append(opts, scan.WithRegistry(registry.New(regOpts...)))
	}
	if len(vendorPatterns) > 0 {
		opts = append(opts, scan.WithVendorDirNames(vendorPatterns...))
	}
	return scan.New(opts...)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
