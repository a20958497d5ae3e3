package cmd

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Long:  `Displays full details of a single task, rendering its description as markdown.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return task.ValidateTaskID(args[0])
	}

	sess, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer sess.Close()

	t, err := sess.store.Get(id)
	if err != nil {
		return err
	}

	now := time.Now()
	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, output.TaskViews([]*task.Task{&t}, now)[0])
	}
	if format == output.FormatCompact {
		output.TaskDetailCompact(os.Stdout, &t, now)
		return nil
	}

	output.TaskDetail(os.Stdout, &t, now)
	return nil
}
