package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID[,ID,...]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Removes a task for good. Prompts for confirmation in interactive mode.
Multiple IDs can be provided as a comma-separated list (requires --yes).`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")

	// Batch mode requires --yes.
	if len(ids) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq,
			"batch delete requires --yes")
	}

	sess, err := openSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer sess.Close()
	defer sess.reportCelebration()

	if len(ids) == 1 {
		return deleteSingleTask(cmd.Context(), sess, ids[0], yes)
	}

	// Batch mode (yes is guaranteed true here). Ids that are already gone
	// count as deleted.
	return runBatch(ids, func(id int) error {
		return executeDelete(cmd.Context(), sess, id)
	})
}

// deleteSingleTask handles a single task delete with confirmation and output.
// A task that is already gone is reported as such and is not an error.
func deleteSingleTask(ctx context.Context, sess *session, id int, yes bool) error {
	t, err := sess.store.Get(id)
	if clierr.Is(err, clierr.TaskNotFound) {
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, map[string]any{
				"status": "already_deleted",
				"id":     id,
			})
		}
		output.Messagef(os.Stdout, "Task #%d already deleted", id)
		return nil
	}
	if err != nil {
		return err
	}

	if !yes {
		ok, err := confirm(fmt.Sprintf("Delete task #%d %q?", t.ID, t.Title))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	err = executeDelete(ctx, sess, id)
	if err != nil && !clierr.IsWarning(err) {
		return err
	}

	if outputFormat() == output.FormatJSON {
		if outErr := output.JSON(os.Stdout, map[string]any{
			"status": "deleted",
			"id":     t.ID,
			"title":  t.Title,
		}); outErr != nil {
			return outErr
		}
	} else {
		output.Messagef(os.Stdout, "Deleted task #%d: %s", t.ID, t.Title)
	}
	return persistOutcome(err)
}

// executeDelete removes one task and logs it.
func executeDelete(ctx context.Context, sess *session, id int) error {
	t, getErr := sess.store.Get(id)
	err := sess.store.Remove(ctx, id)
	if err != nil && !clierr.IsWarning(err) {
		return err
	}
	if getErr == nil {
		logActivity(sess.cfg, "delete", id, t.Title)
	}
	return err
}

// confirm asks a yes/no question on the terminal. Without a terminal it
// returns CONFIRMATION_REQUIRED so scripts must pass --yes.
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // fd fits in int
		return false, clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --yes")
	}
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}
