package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var toggleCmd = &cobra.Command{
	Use:     "toggle ID[,ID,...]",
	Aliases: []string{"done"},
	Short:   "Mark a task completed or pending",
	Long: `Flips the completion state of a task. Nothing else about the task changes.
Multiple IDs can be provided as a comma-separated list.`,
	Args: cobra.ExactArgs(1),
	RunE: runToggle,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

func runToggle(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer sess.Close()
	defer sess.reportCelebration()

	if len(ids) == 1 {
		return toggleSingleTask(cmd.Context(), sess, ids[0])
	}
	return runBatch(ids, func(id int) error {
		_, err := executeToggle(cmd.Context(), sess, id)
		return err
	})
}

func toggleSingleTask(ctx context.Context, sess *session, id int) error {
	t, err := executeToggle(ctx, sess, id)
	if err != nil && !clierr.IsWarning(err) {
		return err
	}

	if outputFormat() == output.FormatJSON {
		if outErr := output.JSON(os.Stdout, map[string]any{
			"id":        t.ID,
			"title":     t.Title,
			"completed": t.Completed,
		}); outErr != nil {
			return outErr
		}
	} else {
		verb := "Reopened"
		if t.Completed {
			verb = "Completed"
		}
		output.Messagef(os.Stdout, "%s task #%d: %s", verb, t.ID, t.Title)
	}
	return persistOutcome(err)
}

// executeToggle flips one task and returns its new state. Unknown ids are
// reported rather than ignored.
func executeToggle(ctx context.Context, sess *session, id int) (task.Task, error) {
	if _, err := sess.store.Get(id); err != nil {
		return task.Task{}, err
	}
	err := sess.store.ToggleCompleted(ctx, id)
	if err != nil && !clierr.IsWarning(err) {
		return task.Task{}, err
	}
	t, _ := sess.store.Get(id)
	action := "reopen"
	if t.Completed {
		action = "complete"
	}
	logActivity(sess.cfg, action, id, t.Title)
	return t, err
}
