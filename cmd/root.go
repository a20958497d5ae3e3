// Package cmd implements the tasktracker CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/config"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
	flagVerbose bool
	flagLogFile string
)

// logger is shared by every command. Its level and output are finalised in
// loadConfig once the config is known.
var logger = newLogger(os.Stderr)

// configuredFormat is view.format from the loaded config.
var configuredFormat string

var rootCmd = &cobra.Command{
	Use:   "tasktracker",
	Short: "Keep a to-do list with deadlines",
	Long: `tasktracker keeps an ordered to-do list with optional deadlines.
Run tasktracker with no arguments to open the interactive list, or use the
subcommands to script it.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || termenv.EnvNoColor() {
			output.DisableColor()
		}
		if flagVerbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to the tasktracker directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "write logs to this file")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	if outputFormat() == output.FormatJSON {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

func newLogger(w io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetLevel(log.WarnLevel)
	l.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	return l
}

// configureLogger applies the config's level and log file. When quiet is set
// (the TUI owns the terminal) stderr output is dropped unless a file is given.
func configureLogger(cfg *config.Config, quiet bool) (closeFn func(), err error) {
	if !flagVerbose {
		logger.SetLevel(cfg.LogLevel())
	}

	path := flagLogFile
	if path == "" {
		path = cfg.LogFile()
	}
	if path == "" {
		if quiet {
			logger.SetOutput(io.Discard)
		}
		return func() {}, nil
	}

	const logFileMode = 0o600
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFileMode) //nolint:gosec // user-chosen log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(f)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	return func() { _ = f.Close() }, nil
}

// resolveDir returns the tasktracker directory: --dir, else the nearest
// .tasktracker above the working directory, else the global directory.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}
	return config.GlobalDirPath()
}

// loadConfig finds and loads the config. The global directory is created
// with defaults on first use; an explicit --dir must already exist.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	global, err := config.GlobalDirPath()
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if filepath.Clean(dir) == filepath.Clean(global) {
		cfg, err = config.LoadOrInit(dir)
	} else {
		cfg, err = config.Load(dir)
	}
	if errors.Is(err, config.ErrNotFound) {
		return nil, clierr.Newf(clierr.ConfigNotFound,
			"no config.yml in %s (run 'tasktracker init' first)", dir).
			WithDetails(map[string]any{"dir": dir})
	}
	if err != nil {
		return nil, err
	}
	configuredFormat = cfg.View.Format
	return cfg, nil
}

// outputFormat returns the format picked by flags, TASKTRACKER_OUTPUT and
// view.format, in that order.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact, configuredFormat)
}

// printWarnings writes load warnings to stderr.
func printWarnings(warnings []task.ReadWarning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: skipping stored task %s\n", w.String())
	}
}

// persistOutcome turns a mutation error into the command result once the
// output has been printed. A failed persist is a warning: the change was
// made but not saved, so the command exits 1 without repeating the output.
func persistOutcome(err error) error {
	if err == nil || !clierr.IsWarning(err) {
		return err
	}
	fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	return &clierr.SilentError{Code: 1}
}

// logActivity appends an entry to the activity log. Errors are silently
// discarded because logging should never fail a command.
func logActivity(cfg *config.Config, action string, taskID int, detail string) {
	board.LogMutation(cfg.Dir(), action, taskID, detail)
}

// parseIDs splits a comma-separated ID string into deduplicated int IDs.
func parseIDs(arg string) ([]int, error) {
	return board.ParseIDs(arg)
}

// runBatch executes fn for each ID and collects results. Returns a SilentError
// with exit code 1 if any operation failed (after outputting results).
// Persist warnings count as successes that are reported on stderr.
func runBatch(ids []int, fn func(int) error) error {
	results := make([]output.BatchResult, 0, len(ids))
	anyFailed := false
	var persistErr error

	for _, id := range ids {
		err := fn(id)
		switch {
		case err == nil:
			results = append(results, output.BatchResult{ID: id, OK: true})
		case clierr.IsWarning(err):
			persistErr = err
			results = append(results, output.BatchResult{ID: id, OK: true})
		default:
			anyFailed = true
			var cliErr *clierr.Error
			if errors.As(err, &cliErr) {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: cliErr.Message, Code: cliErr.Code})
			} else {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: err.Error()})
			}
		}
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task #%d: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(ids))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return persistOutcome(persistErr)
}
