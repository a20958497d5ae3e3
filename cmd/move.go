package cmd

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var moveCmd = &cobra.Command{
	Use:   "move ID up|down",
	Short: "Move a task one place up or down",
	Long: `Swaps a task with its neighbour. Moving the first task up or the last task
down does nothing. Manual moves are refused while the list is sorted by
deadline; run 'tasktracker sort --off' first.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // id and direction
	RunE: runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

// moveResult wraps a task with its new position for JSON output.
type moveResult struct {
	*task.Task
	Position int  `json:"position"`
	Changed  bool `json:"changed"`
}

func runMove(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return task.ValidateTaskID(args[0])
	}
	dir, err := board.ParseDirection(args[1])
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer sess.Close()

	before := task.IndexOf(sess.store.Tasks(), id)
	err = sess.store.Move(cmd.Context(), id, dir)
	if err != nil && !clierr.IsWarning(err) {
		return err
	}
	tasks := sess.store.Tasks()
	after := task.IndexOf(tasks, id)
	changed := after != before
	if changed {
		logActivity(sess.cfg, "move", id, string(dir))
	}

	if outErr := outputMoveResult(tasks[after], after, dir, changed); outErr != nil {
		return outErr
	}
	return persistOutcome(err)
}

func outputMoveResult(t *task.Task, pos int, dir board.Direction, changed bool) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, moveResult{Task: t, Position: pos + 1, Changed: changed})
	}
	if !changed {
		output.Messagef(os.Stdout, "Task #%d is already at the %s", t.ID, edgeName(dir))
		return nil
	}
	output.Messagef(os.Stdout, "Moved task #%d %s to position %d", t.ID, dir, pos+1)
	return nil
}

func edgeName(dir board.Direction) string {
	if dir == board.Up {
		return "top"
	}
	return "bottom"
}
