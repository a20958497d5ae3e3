package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/date"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

var createCmd = &cobra.Command{
	Use:     "add [TITLE]",
	Aliases: []string{"create"},
	Short:   "Add a task",
	Long: `Adds a task to the end of the list.

Title can be provided as a positional argument or via --title flag.
Deadlines accept "YYYY-MM-DD HH:MM", "YYYY-MM-DD" (end of day) or an offset
from now such as +90m, +2h or +3d.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	addTaskFlags(createCmd.Flags())
	rootCmd.AddCommand(createCmd)
}

// addTaskFlags registers the description and deadline flags shared by add
// and edit.
func addTaskFlags(fs *pflag.FlagSet) {
	fs.String("description", "", "task description (markdown)")
	fs.String("deadline", "", "deadline (YYYY-MM-DD HH:MM, YYYY-MM-DD, +2h, +3d)")
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "desc", "body":
			name = "description"
		case "due":
			name = "deadline"
		}
		return pflag.NormalizedName(name)
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	title, err := resolveCreateTitle(cmd, args)
	if err != nil {
		return err
	}

	draft := task.Task{Title: strings.TrimSpace(title)}
	if err := applyTaskFlags(cmd, &draft, time.Now()); err != nil {
		return err
	}
	if err := task.ValidateInput(&draft); err != nil {
		return err
	}

	sess, err := openSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer sess.Close()

	added, err := sess.store.Add(cmd.Context(), draft)
	if err != nil && !clierr.IsWarning(err) {
		return err
	}
	logActivity(sess.cfg, "add", added.ID, added.Title)

	if outErr := outputCreateResult(&added); outErr != nil {
		return outErr
	}
	return persistOutcome(err)
}

func outputCreateResult(t *task.Task) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.TaskViews([]*task.Task{t}, time.Now())[0])
	}

	output.Messagef(os.Stdout, "Added task #%d: %s", t.ID, t.Title)
	if t.Deadline != nil {
		output.Messagef(os.Stdout, "  Deadline: %s", date.Format(t.Deadline))
	}
	return nil
}

// resolveCreateTitle returns the task title from either the positional arg or --title flag.
func resolveCreateTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	hasPositional := len(args) > 0
	hasFlag := flagTitle != ""

	switch {
	case hasPositional && hasFlag:
		return "", clierr.New(clierr.InvalidInput,
			"title provided both as argument and --title flag; use one or the other")
	case hasPositional:
		return args[0], nil
	case hasFlag:
		return flagTitle, nil
	default:
		return "", clierr.New(clierr.InvalidInput,
			"title is required: provide it as an argument or with --title")
	}
}

// applyTaskFlags copies --description and --deadline onto t when given.
func applyTaskFlags(cmd *cobra.Command, t *task.Task, now time.Time) error {
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		t.Description = strings.TrimSpace(v)
	}
	if cmd.Flags().Changed("deadline") {
		v, _ := cmd.Flags().GetString("deadline")
		d, err := date.Parse(v, now)
		if err != nil {
			return task.ValidateDate(v, err)
		}
		t.Deadline = d
	}
	return nil
}
