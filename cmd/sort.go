package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
)

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Sort by deadline or restore the manual order",
	Long: `Without flags, toggles between deadline order and the manual order captured
when sorting began. Pending tasks with deadlines come first (soonest first),
then expired tasks, then tasks without a deadline, then completed tasks.
Tasks added while sorted are appended when the manual order is restored.`,
	Args: cobra.NoArgs,
	RunE: runSort,
}

func init() {
	sortCmd.Flags().Bool("on", false, "sort by deadline (no-op when already sorted)")
	sortCmd.Flags().Bool("off", false, "restore the manual order (no-op when not sorted)")
	sortCmd.MarkFlagsMutuallyExclusive("on", "off")
	rootCmd.AddCommand(sortCmd)
}

func runSort(cmd *cobra.Command, _ []string) error {
	on, _ := cmd.Flags().GetBool("on")
	off, _ := cmd.Flags().GetBool("off")

	sess, err := openSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer sess.Close()

	was := sess.store.Sorted()
	err = applySort(cmd.Context(), sess, on, off)
	if err != nil && !clierr.IsWarning(err) {
		return err
	}
	sorted := sess.store.Sorted()
	if sorted != was {
		action := "restore-order"
		if sorted {
			action = "sort"
		}
		logActivity(sess.cfg, action, 0, "")
	}

	if outputFormat() == output.FormatJSON {
		if outErr := output.JSON(os.Stdout, map[string]any{
			"sorted":  sorted,
			"changed": sorted != was,
		}); outErr != nil {
			return outErr
		}
	} else if sorted {
		output.Messagef(os.Stdout, "Sorted by deadline")
	} else {
		output.Messagef(os.Stdout, "Manual order restored")
	}
	return persistOutcome(err)
}

func applySort(ctx context.Context, sess *session, on, off bool) error {
	switch {
	case on:
		return sess.store.SortByDeadline(ctx)
	case off:
		return sess.store.RestoreOrder(ctx)
	default:
		_, err := sess.store.ToggleSort(ctx)
		return err
	}
}
