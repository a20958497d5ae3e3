package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all tasks as JSON",
	Long: `Writes every task, in stored order, to notes-YYYY-MM-DD_HH-MM.json in the
export directory (config export.dir, or --out). Use --out - to write to stdout.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "output directory, or - for stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer sess.Close()

	dir, _ := cmd.Flags().GetString("out")
	if dir == "-" {
		return sess.store.Export(os.Stdout)
	}
	if dir == "" {
		dir = sess.cfg.ExportDir()
	}

	path, err := sess.store.ExportTo(dir)
	if err != nil {
		return err
	}
	count := sess.store.Len()
	sess.log.WithField("path", path).Debug("exported tasks")

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"path":  path,
			"count": count,
		})
	}
	output.Messagef(os.Stdout, "Exported %d task(s) to %s", count, path)
	return nil
}
