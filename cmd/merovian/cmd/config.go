package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"merovian.backend/cmd/merovian/internal/output"
)

var configKeys = map[string]bool{
	"api_url": true,
	"format":  true,
}

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := a.configPath()
			if a.jsonOutput() {
				return output.JSON(map[string]string{
					"api_url": a.v.GetString("api_url"),
					"format":  a.v.GetString("format"),
					"file":    path,
				})
			}
			output.Header("Configuration")
			output.KeyValue([][]string{
				{"api_url", a.v.GetString("api_url")},
				{"format", a.v.GetString("format")},
			})
			output.Blank()
			output.Info("Config file: " + path)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Available keys:
  api_url   - API server URL (default: http://localhost:8080)
  format    - Default output format: table, json (default: table)`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if !configKeys[key] {
				return fmt.Errorf("unknown config key %q, valid keys: api_url, format", key)
			}
			if key == "format" && value != "table" && value != "json" {
				return fmt.Errorf("format must be 'table' or 'json'")
			}
			a.v.Set(key, value)
			if err := a.saveConfig(); err != nil {
				return err
			}
			output.Success(fmt.Sprintf("Set %s = %s", key, value))
			return nil
		},
	}

	configCmd.AddCommand(showCmd, setCmd)
	return configCmd
}
