package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
	"github.com/twiced-technology-gmbh/tasktracker/internal/watcher"
)

var flagWatch bool

var boardCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"board"},
	Short:   "Show progress summary",
	Long: `Displays progress: how many tasks are completed, how many have deadlines,
how many are expired or due today, and whether the list is sorted.

Use --watch to keep the display live-updating. The summary re-renders
whenever the task store changes on disk (e.g., from another terminal).
Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "live-update the summary on storage changes")
	boardCmd.Flags().String("group-by", "", "group tasks by field ("+strings.Join(board.GroupFields, ", ")+")")
}

func runBoard(cmd *cobra.Command, _ []string) error {
	groupBy, _ := cmd.Flags().GetString("group-by")
	if groupBy != "" {
		if err := board.ValidateGroupBy(groupBy); err != nil {
			return err
		}
	}

	sess, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := renderBoard(sess.store, groupBy); err != nil {
		return err
	}

	if !flagWatch {
		return nil
	}

	return watchBoard(sess, groupBy)
}

func renderBoard(s *store.Store, groupBy string) error {
	now := time.Now()
	if groupBy != "" {
		return renderGroupedBoard(s, groupBy, now)
	}

	summary := s.Overview()

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, summary)
	}
	if format == output.FormatCompact {
		output.OverviewCompact(os.Stdout, summary)
		return nil
	}

	output.OverviewTable(os.Stdout, summary)
	return nil
}

func renderGroupedBoard(s *store.Store, groupBy string, now time.Time) error {
	grouped := board.GroupBy(s.Tasks(), groupBy, now)

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, grouped)
	}
	if format == output.FormatCompact {
		output.GroupedCompact(os.Stdout, grouped)
		return nil
	}

	output.GroupedTable(os.Stdout, grouped, now)
	return nil
}

func watchBoard(sess *session, groupBy string) error {
	watchPaths := sess.store.WatchPaths()
	if len(watchPaths) == 0 {
		return fmt.Errorf("the %s backend cannot be watched", sess.cfg.Storage.Backend)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(watchPaths, func() {
		clearScreen()
		warnings, loadErr := sess.store.Load(ctx)
		if loadErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: reloading tasks: %v\n", loadErr)
			return
		}
		printWarnings(warnings)
		if renderErr := renderBoard(sess.store, groupBy); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering summary: %v\n", renderErr)
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})

	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
