package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dynobject/internal/logger"
	"github.com/mesh-intelligence/dynobject/internal/paths"
	"github.com/mesh-intelligence/dynobject/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the exit code for an error returned by a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	logLevel  string
	jsonMode  bool
}

// app is the state shared by subcommands after the root pre-run.
type app struct {
	flags     rootFlags
	configDir string
	dataDir   string
	cfg       types.Config
	log       logger.Logger
}

// NewRootCmd creates the top-level "dynobject" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "dynobject",
		Short: "Run processors over a shared dynamic object",
		Long: `dynobject runs the counter processor scenario: independent processors
share one dynamic object and take exclusive access to it one step at a time.
Runs are recorded in a journal in the data directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.dynobject-data)")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newRunCmd(a))
	root.AddCommand(newHistoryCmd(a))

	return root
}

// setup resolves directories, loads config.yaml and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return userError("load config: %w", err)
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return userError("invalid config: %w", err)
	}

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return sysError("resolve data dir: %w", err)
	}

	opts := logger.FromEnv()
	opts.Level = cfg.LogLevel
	opts.Writer = cmd.ErrOrStderr()

	a.configDir = configDir
	a.dataDir = dataDir
	a.cfg = cfg
	logger.Init(opts)
	a.log = logger.Get().With().Str("component", "cli").Logger()
	return nil
}

// Execute runs the root command with args and returns the process exit code.
func Execute(args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	return exitCode(root.ErrOrStderr(), root.Execute())
}

// exitCode prints err and maps it to an exit code. Errors that are not
// exitErrors come from cobra itself (bad flags, unknown commands).
func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
