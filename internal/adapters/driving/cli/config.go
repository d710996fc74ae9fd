package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage draftmill configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if config == nil || config.ConfigStore == nil {
			return fmt.Errorf("config store not configured")
		}
		value, ok := config.ConfigStore.Get(args[0])
		if !ok {
			return fmt.Errorf("key %q is not set", args[0])
		}
		cmd.Printf("%v\n", value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value and persist it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if config == nil || config.ConfigStore == nil {
			return fmt.Errorf("config store not configured")
		}
		config.ConfigStore.Set(args[0], coerceValue(args[1]))
		if err := config.ConfigStore.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		cmd.Printf("Saved %s to %s\n", args[0], config.ConfigStore.Path())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if config == nil || config.ConfigStore == nil {
			return fmt.Errorf("config store not configured")
		}
		cmd.Println(config.ConfigStore.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// coerceValue stores numerals and booleans typed rather than as strings.
func coerceValue(raw string) any {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return raw
}
