package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/config"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `Lists tasks in their stored order with optional filtering.

--status picks all, completed or pending tasks; --hide-completed drops
completed tasks on top of that; --search matches title and description.
Defaults come from the view section of the config.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	addListFlags(listCmd.Flags())
	rootCmd.AddCommand(listCmd)
}

func addListFlags(fs *pflag.FlagSet) {
	fs.String("status", "", "filter by status (all, completed, pending)")
	fs.Bool("hide-completed", false, "hide completed tasks")
	fs.StringP("search", "s", "", "search title and description (case-insensitive)")
	fs.Bool("sorted-view", false, "show in deadline order without changing the stored order")
	fs.IntP("limit", "n", 0, "limit number of results")
}

func runList(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer sess.Close()

	filter, err := listFilter(cmd, sess.cfg)
	if err != nil {
		return err
	}
	byDeadline, _ := cmd.Flags().GetBool("sorted-view")
	limit, _ := cmd.Flags().GetInt("limit")

	now := time.Now()
	tasks := board.List(sess.store.Tasks(), board.ListOptions{
		Filter:     filter,
		ByDeadline: byDeadline,
		Limit:      limit,
	}, now)

	return outputTaskList(tasks, now)
}

// listFilter merges the filter flags over the configured view defaults.
func listFilter(cmd *cobra.Command, cfg *config.Config) (board.FilterOptions, error) {
	filter := board.FilterOptions{
		Status:        cfg.InitialFilter(),
		HideCompleted: cfg.View.HideCompleted,
	}
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		status, err := board.ParseStatusFilter(v)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if cmd.Flags().Changed("hide-completed") {
		filter.HideCompleted, _ = cmd.Flags().GetBool("hide-completed")
	}
	filter.Search, _ = cmd.Flags().GetString("search")
	return filter, nil
}

func outputTaskList(tasks []*task.Task, now time.Time) error {
	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, output.TaskViews(tasks, now))
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks, now)
		return nil
	}

	output.TaskTable(os.Stdout, tasks, now)
	return nil
}
