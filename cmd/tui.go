package cmd

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/config"
	"github.com/twiced-technology-gmbh/tasktracker/internal/filelock"
	"github.com/twiced-technology-gmbh/tasktracker/internal/tui"
	"github.com/twiced-technology-gmbh/tasktracker/internal/watcher"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive task list",
	Long:  `Opens the interactive task list. Running tasktracker with no command does the same.`,
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	closeLog, err := configureLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	entry := logger.WithField("dir", cfg.Dir())
	st, err := openStore(ctx, cfg, entry)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck // best-effort close on exit

	model := tui.NewBoard(st, tui.Options{
		Filter:        cfg.InitialFilter(),
		HideCompleted: cfg.View.HideCompleted,
		TickInterval:  cfg.TickInterval(),
		ExportDir:     cfg.ExportDir(),
		ActivityDir:   cfg.Dir(),
		WatchPaths:    st.WatchPaths(),
		Lock:          tuiLock(ctx, cfg),
		Log:           entry.WithField("component", "tui"),
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	go startTUIWatcher(ctx, model, p)

	_, err = p.Run()
	return err
}

// tuiLock returns the lock function the board holds around each mutation.
func tuiLock(ctx context.Context, cfg *config.Config) func() (func() error, error) {
	return func() (func() error, error) {
		lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
		defer cancel()
		return filelock.LockContext(lockCtx, filepath.Join(cfg.Dir(), filelock.FileName))
	}
}

func startTUIWatcher(ctx context.Context, model *tui.Board, p *tea.Program) {
	paths := model.WatchPaths()
	if len(paths) == 0 {
		return
	}
	w, err := watcher.New(paths, func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		logger.WithError(err).Warn("live reload disabled")
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, nil)
}
