package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
)

var clearCmd = &cobra.Command{
	Use:   "clear-completed",
	Short: "Remove every completed task",
	Long:  `Removes all completed tasks. Prompts for confirmation in interactive mode.`,
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer sess.Close()

	pending := sess.store.Overview().Completed
	if pending > 0 {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			ok, err := confirm(fmt.Sprintf("Remove %d completed task(s)?", pending))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(os.Stderr, "Canceled.")
				return nil
			}
		}
	}

	removed, err := sess.store.ClearCompleted(cmd.Context())
	if err != nil && !clierr.IsWarning(err) {
		return err
	}
	if removed > 0 {
		logActivity(sess.cfg, "clear-completed", 0, fmt.Sprintf("%d removed", removed))
	}

	if outputFormat() == output.FormatJSON {
		if outErr := output.JSON(os.Stdout, map[string]any{"removed": removed}); outErr != nil {
			return outErr
		}
	} else {
		output.Messagef(os.Stdout, "Removed %d completed task(s)", removed)
		output.Messagef(os.Stdout, "%s", sess.store.Overview().Progress())
	}
	return persistOutcome(err)
}
