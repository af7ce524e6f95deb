// Package cli is the cobra command tree: the interactive TUI at the root and
// one-shot subcommands against the same backend.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/transport"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitRuntime = 1
	ExitUsage   = 2
)

// App carries flag values and what PersistentPreRunE builds from them.
type App struct {
	ConfigPath string
	URL        string
	Timeout    int
	LogLevel   string
	LogFile    string
	Theme      string

	cfg     *config.Config
	log     zerolog.Logger
	logFile io.Closer
	creds   auth.Store
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func errUsage(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// usageArgs marks positional-argument failures as usage errors.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	}
}

// ExitCode maps an Execute error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ue usageError
	var ie *model.InvalidIDError
	if errors.As(err, &ue) || errors.As(err, &ie) {
		return ExitUsage
	}
	return ExitRuntime
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Terminal client for a todo REST backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.NoArgs),
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  todo

  # Scriptable commands
  todo add "Buy milk"
  todo ls --group
  todo done 3
  todo export --out todos.html
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), app.client(), app.log)
		},
	}

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// The TUI owns the terminal, so it logs to a file; subcommands log to stderr.
		return app.setup(c, c == c.Root())
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	f := cmd.PersistentFlags()
	f.StringVar(&app.ConfigPath, "config", "", "Path to a TOML config file (skips ~/.tada/config.toml and ./.tada.toml)")
	f.StringVar(&app.URL, "url", "", "Collection URL of the backend (default "+config.DefaultBaseURL+")")
	f.IntVar(&app.Timeout, "timeout", config.DefaultTimeoutSeconds, "Per-request timeout in seconds (0: none)")
	f.StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error|off)")
	f.StringVar(&app.LogFile, "log-file", "", "Log file used by the TUI (default ~/.tada/tada.log)")
	f.StringVar(&app.Theme, "theme", "", "Color theme (classic|neon|mono)")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newAuthCmd(app))

	return cmd
}

// Execute runs the command tree on args and returns the exit code. Errors
// are printed to stderr.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := &App{}
	defer app.close()

	cmd := newRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		ui.Fail(stderr, err.Error())
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stderr, "Run 'todo --help' for usage.")
		}
	}
	return ExitCode(err)
}

// setup layers flags over the loaded config and builds the logger.
func (app *App) setup(cmd *cobra.Command, tuiMode bool) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.BaseURL = app.URL
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = app.Timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = app.LogLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = app.LogFile
	}
	if flags.Changed("theme") {
		cfg.Theme = app.Theme
	}
	if err := cfg.Finalize(); err != nil {
		return usageError{err: err}
	}
	app.cfg = cfg
	ui.SetTheme(cfg.Theme)

	dir, err := config.UserDir()
	if err != nil {
		return err
	}
	app.creds = auth.Store{Dir: dir}

	if tuiMode {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return err
		}
		app.logFile = f
		app.log = logging.New(logging.Options{Writer: f, Level: cfg.LogLevel})
	} else {
		app.log = logging.New(logging.Options{Writer: cmd.ErrOrStderr(), Level: cfg.LogLevel, Console: true})
	}
	app.log.Debug().
		Str("base_url", cfg.BaseURL).
		Dur("timeout", cfg.Timeout()).
		Str("theme", cfg.Theme).
		Msg("config loaded")
	return nil
}

func (app *App) close() {
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}

func (app *App) client() *api.Client {
	tr := transport.New(
		transport.WithTimeout(app.cfg.Timeout()),
		transport.WithToken(app.creds.Token),
		transport.WithLogger(app.log),
	)
	return api.New(app.cfg.BaseURL, tr)
}
