package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/backend"
	"github.com/twiced-technology-gmbh/tasktracker/internal/config"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a tasktracker directory",
	Long: `Creates a .tasktracker directory with config.yml and an empty task store.
Commands run anywhere below it use it instead of the global directory.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("backend", config.DefaultBackend, "storage backend (diskv, sqlite)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	kind, _ := cmd.Flags().GetString("backend")
	if err := config.NewDefault().Set("storage.backend", kind); err != nil {
		return err
	}

	cfg, err := config.Init(dir)
	if err != nil {
		return err
	}
	if kind != cfg.Storage.Backend {
		if err := cfg.Set("storage.backend", kind); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	// Create the empty store so a misconfigured backend fails here.
	b, err := backend.Open(cmd.Context(), cfg.Storage.Backend, cfg.StoragePath(),
		backend.WithLogger(logger.WithField("component", "backend")))
	if err != nil {
		return fmt.Errorf("creating %s storage: %w", cfg.Storage.Backend, err)
	}
	if err := b.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":  "initialized",
			"dir":     cfg.Dir(),
			"config":  cfg.ConfigPath(),
			"backend": cfg.Storage.Backend,
			"storage": cfg.StoragePath(),
		})
	}

	output.Messagef(os.Stdout, "Initialized tasktracker in %s", cfg.Dir())
	output.Messagef(os.Stdout, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Storage: %s (%s)", cfg.StoragePath(), cfg.Storage.Backend)
	return nil
}
