package cmd

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a task",
	Long: `Changes the title, description or deadline of a task. The task keeps its
position, id, creation time and completion state.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().String("title", "", "new title")
	addTaskFlags(editCmd.Flags())
	editCmd.Flags().Bool("clear-deadline", false, "remove the deadline")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return task.ValidateTaskID(args[0])
	}
	if !hasEditFlags(cmd) {
		return clierr.New(clierr.InvalidInput,
			"nothing to change: use --title, --description, --deadline or --clear-deadline")
	}
	if cmd.Flags().Changed("deadline") && cmd.Flags().Changed("clear-deadline") {
		return clierr.New(clierr.InvalidInput, "--deadline and --clear-deadline cannot be combined")
	}

	sess, err := openSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer sess.Close()

	current, err := sess.store.Get(id)
	if err != nil {
		return err
	}

	edit := current
	if err := applyEditFlags(cmd, &edit); err != nil {
		return err
	}
	if err := task.ValidateInput(&edit); err != nil {
		return err
	}

	updated, err := sess.store.Update(cmd.Context(), edit)
	if err != nil && !clierr.IsWarning(err) {
		return err
	}
	logActivity(sess.cfg, "edit", updated.ID, updated.Title)

	if outputFormat() == output.FormatJSON {
		if outErr := output.JSON(os.Stdout, output.TaskViews([]*task.Task{&updated}, time.Now())[0]); outErr != nil {
			return outErr
		}
	} else {
		output.Messagef(os.Stdout, "Updated task #%d: %s", updated.ID, updated.Title)
	}
	return persistOutcome(err)
}

func hasEditFlags(cmd *cobra.Command) bool {
	for _, name := range []string{"title", "description", "deadline", "clear-deadline"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func applyEditFlags(cmd *cobra.Command, t *task.Task) error {
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		t.Title = strings.TrimSpace(v)
	}
	if clearDeadline, _ := cmd.Flags().GetBool("clear-deadline"); clearDeadline {
		t.Deadline = nil
	}
	return applyTaskFlags(cmd, t, time.Now())
}
