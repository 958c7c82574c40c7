// Package cli implements the gitswitch command surface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/config"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
	"github.com/ericfisherdev/gitswitch/internal/style"
)

// Command groups for organized help output.
const (
	GroupIdentity  = "identity"
	GroupRepo      = "repo"
	GroupWorkspace = "workspace"
)

// App holds the services commands operate on. It is built once per
// invocation by a Wire function after configuration is loaded.
type App struct {
	Config     *config.Config
	VCS        driven.VersionControl
	Identities *application.IdentityRegistry
	Bindings   *application.BindingStore
	Engine     *application.ReconciliationEngine
	Session    *application.Session
	Status     *application.StatusService
	Verifier   *application.TokenVerifier

	// Close releases resources held by the wiring, such as the database.
	Close func() error
}

// Wire builds an App from configuration.
type Wire func(ctx context.Context, cfg *config.Config) (*App, error)

var (
	wire Wire
	app  *App

	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "gitswitch",
	Short: "Manage git identities per repository",
	Long: `gitswitch keeps named git identities (name, email and SSH key) and binds
them to repositories, so every commit uses the right author and every push the
right key.

Examples:
  gitswitch identity add --label Work --name "Jane Doe" --email jane@corp.example --ssh-key ~/.ssh/id_work
  gitswitch switch Work        # apply and bind in the current repository
  gitswitch scan ~/src         # reconcile every repository under ~/src
  gitswitch serve              # settings page on http://127.0.0.1:7317`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupIdentity, Title: "Identities:"},
		&cobra.Group{ID: GroupRepo, Title: "Current Repository:"},
		&cobra.Group{ID: GroupWorkspace, Title: "Workspace:"},
	)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $GITSWITCH_CONFIG or <config dir>/gitswitch/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, w Wire) int {
	wire = w
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "%s %s\n", style.ErrorPrefix, err)
		_ = teardown()
		return 1
	}
	return 0
}

// longRunning commands log at info unless a level is configured.
var longRunning = map[string]bool{"serve": true, "watch": true}

func setup(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.LogLevel == "" && longRunning[cmd.Name()] {
		level = slog.LevelInfo
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))

	if app != nil {
		// Already wired, as in tests.
		return nil
	}
	if wire == nil {
		return errors.New("command line not wired")
	}

	app, err = wire(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	app.Session.AddRoots(cfg.Roots...)
	slog.Debug("config loaded", "file", cfg.File, "db_path", cfg.DBPath, "roots", cfg.Roots)
	return nil
}

func teardown() error {
	if app == nil || app.Close == nil {
		return nil
	}
	closeFn := app.Close
	app.Close = nil
	return closeFn()
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// requireSubcommand is the RunE of parent commands.
func requireSubcommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
}

// workingDir returns path, or the current directory when path is empty.
func workingDir(path string) (string, error) {
	if path != "" {
		return application.NormalizePath(path), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return wd, nil
}
