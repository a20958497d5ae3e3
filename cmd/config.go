package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/config"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify configuration",
	Long: `View the full configuration, get a specific key, or set a writable value.

Keys: version, storage.backend, storage.path, view.filter,
view.hide_completed, countdown.tick_interval, export.dir, log.level, log.file.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	values := make(map[string]any, len(config.Keys()))
	for _, key := range config.Keys() {
		v, err := cfg.Get(key)
		if err != nil {
			return err
		}
		values[key] = v
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, values)
	}
	output.Messagef(os.Stdout, "# %s", cfg.ConfigPath())
	for _, key := range config.Keys() {
		output.Messagef(os.Stdout, "%s: %v", key, values[key])
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	v, err := cfg.Get(args[0])
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": args[0], "value": v})
	}
	fmt.Fprintln(os.Stdout, v)
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	v, _ := cfg.Get(key)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": v})
	}
	output.Messagef(os.Stdout, "Set %s = %v", key, v)
	return nil
}
