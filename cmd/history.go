package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/board"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
)

const defaultHistoryLimit = 20

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"log"},
	Short:   "Show recent changes",
	Long: `Shows the activity log: every add, edit, toggle, delete, move and sort made
from the CLI or the interactive list, oldest first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", defaultHistoryLimit, "number of entries to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := board.ReadLog(cfg.Dir(), limit)
	if err != nil {
		return err
	}

	format := outputFormat()
	if format == output.FormatJSON {
		if entries == nil {
			entries = []board.LogEntry{}
		}
		return output.JSON(os.Stdout, entries)
	}
	if format == output.FormatCompact {
		output.HistoryCompact(os.Stdout, entries)
		return nil
	}

	output.HistoryTable(os.Stdout, entries)
	return nil
}
