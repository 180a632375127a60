// Package commands implements the CLI commands for bbs.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/trezero/bookmark-bar-switcher/cmd"
	"github.com/trezero/bookmark-bar-switcher/internal/app"
	"github.com/trezero/bookmark-bar-switcher/internal/auth"
	"github.com/trezero/bookmark-bar-switcher/internal/config"
	"github.com/trezero/bookmark-bar-switcher/internal/errors"
	"github.com/trezero/bookmark-bar-switcher/internal/logging"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// loadedConfig and configLoadErr hold the outcome of config loading.
var (
	loadedConfig  *config.Config
	configLoadErr error
)

// openApp builds the components a command runs against. Tests replace it.
var openApp = func(c *cobra.Command) (*app.App, error) {
	if configLoadErr != nil {
		return nil, errors.NewConfigError(configLoadErr)
	}
	if errs := config.Validate(loadedConfig); len(errs) > 0 {
		return nil, errors.NewConfigError(errors.Mark(errors.Wrap(errors.Join(errs...), "invalid configuration"), errors.ErrInvalidConfig))
	}

	ctx := c.Context()
	a, err := app.New(ctx, loadedConfig,
		app.WithLogger(logging.FromContext(ctx)),
		app.WithPrompter(auth.TerminalPrompter(c.InOrStdin(), c.ErrOrStderr())),
		app.WithVersion(cmd.BackupVersion()),
	)
	if errors.Is(err, errors.ErrInvalidConfig) {
		return nil, errors.NewConfigError(err)
	}
	if err != nil {
		return nil, errors.NewSystemError(err, "Check the tree and state settings with: bbs config")
	}
	return a, nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./config.yaml or $XDG_CONFIG_HOME/bbs/config.yaml)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("bbs version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		configLoadErr = err
		return
	}
	config.Init()
	loadedConfig, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "bbs",
	Short: "Switch between multiple bookmark bars",
	Long: `bbs keeps several named bookmark bars and swaps one of them into the
browser's bookmarks bar at a time.

Every bar lives in a folder under "Other bookmarks/Bookmark Bars". Switching
moves the visible bar's bookmarks back into its folder and the chosen bar's
bookmarks into the bookmarks bar. A backup is taken before every switch and
can be mirrored to Google Drive.`,
	Example: `  # Create the bar container on first use
  bbs install

  # List bars and switch to one
  bbs bar list
  bbs bar switch Work

  # Keep Drive backups after every switch
  bbs drive connect
  bbs drive auto on

  See Also: bbs bar, bbs backup, bbs drive`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("BBS_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2
				case "2":
					v = 3
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{Level: level}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case logging.FormatText, "":
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	default:
		return errors.NewUserError(errors.Newf("unknown log format %q", logFormat),
			"Use --log-format text or --log-format json")
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: logging.RedactAttr,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// withApp opens the app for the duration of fn.
func withApp(fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				logging.FromContext(cmd.Context()).Warn("closing app", "error", err)
			}
		}()
		return classify(fn(cmd, a, args))
	}
}

// Execute runs the root command.
func Execute() error {
	return errors.Wrap(rootCmd.Execute(), "executing root command")
}
