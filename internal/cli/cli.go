// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/knowme-tui/internal/app"
	"github.com/jeranaias/knowme-tui/internal/config"
	"github.com/jeranaias/knowme-tui/internal/logging"
	"github.com/jeranaias/knowme-tui/internal/ui"
)

// App carries what every command needs. The root command's
// PersistentPreRunE loads the config and logger; the store is opened on
// first use so commands that never touch it stay cheap.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// OpenStore builds the store from configuration.
	OpenStore func(cfg *config.Config, log *zap.Logger) (*app.Store, error)

	configPath string
	apiURL     string
	verbose    bool
	jsonMode   bool

	// forceInteractive lets tests answer prompts from In.
	forceInteractive bool

	cfg   *config.Config
	log   *zap.Logger
	store *app.Store
}

// NewApp wires the process's standard streams.
func NewApp() *App {
	return &App{
		In:        os.Stdin,
		Out:       os.Stdout,
		Err:       os.Stderr,
		OpenStore: app.Open,
		log:       zap.NewNop(),
	}
}

// Main runs the CLI with args and returns the process exit code.
func Main(ctx context.Context, args []string) int {
	a := NewApp()
	defer a.Close()
	return a.Execute(ctx, args)
}

// Execute runs one command line against a.
func (a *App) Execute(ctx context.Context, args []string) int {
	root := NewRootCommand(a)
	root.SetArgs(args)
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	if err := root.ExecuteContext(ctx); err != nil {
		a.log.Debug("command failed", zap.Error(err))
		DisplayError(a.Err, err, a.jsonMode)
		return ExitCode(err)
	}
	return ExitSuccess
}

// NewRootCommand builds the command tree. Running it bare opens the TUI.
func NewRootCommand(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "knowme",
		Short: "A personal assistant that remembers your story",
		Long: `KnowMe answers questions from the documents you upload and the
personality profile you fill in. Run it without arguments for the
full-screen interface, or use the commands below from scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.knowme/config.toml)")
	flags.StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.jsonMode, "json", false, "print machine-readable JSON")

	root.AddCommand(
		newTUICommand(a),
		newAskCommand(a),
		newChatCommand(a),
		newDocsCommand(a),
		newProfileCommand(a),
		newStatusCommand(a),
	)
	return root
}

func newTUICommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen interface (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads configuration and builds the logger for cmd.
func (a *App) setup(cmd *cobra.Command) error {
	var cfg *config.Config
	var err error
	if a.configPath != "" {
		cfg, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return &ConfigError{Path: a.configPath, Err: err}
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(a.apiURL, "/")
	}
	a.cfg = cfg

	opts := logging.Options{
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}
	if path, err := cfg.LogPath(); err == nil {
		opts.Path = path
	}
	if a.verbose {
		opts.Level = "debug"
		if !isTUICommand(cmd) {
			opts.Console = a.Err
		}
	}
	log, err := logging.New(opts)
	if err != nil {
		return &ConfigError{Path: a.configPath, Err: err}
	}
	a.log = log.With(zap.String("command", cmd.Name()))
	return nil
}

func isTUICommand(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || !cmd.HasParent()
}

// Store opens the application store on first use.
func (a *App) Store() (*app.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := a.OpenStore(a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// Close releases the store and flushes the log.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.log != nil {
		a.log.Sync()
	}
}

func (a *App) interactive() bool {
	return a.forceInteractive || isTerminal(a.In)
}

// requestContext bounds a one-shot command by the configured timeout.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg == nil || a.cfg.API.TimeoutSeconds <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(a.cfg.API.TimeoutSeconds)*time.Second)
}

// =============================================================================
// TUI
// =============================================================================

func (a *App) runTUI(ctx context.Context) error {
	if !isTerminal(a.In) || !isTerminal(a.Out) {
		return &TTYRequiredError{Operation: "open the interface (try 'knowme ask')"}
	}
	store, err := a.Store()
	if err != nil {
		return err
	}

	opts := ui.Options{
		GlamourStyle:   a.cfg.UI.GlamourStyle,
		ShowTimer:      a.cfg.UI.ShowTimer,
		WrapWidth:      a.cfg.UI.Width,
		BaseURL:        a.cfg.API.BaseURL,
		ProfileBackend: a.cfg.Profile.Backend,
	}
	a.log.Info("starting tui", zap.String("api", a.cfg.API.BaseURL))
	return ui.Run(ctx, store, opts, a.cfg.Profile.Watch, a.log)
}
