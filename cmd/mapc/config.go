package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Faultbox/almond/internal/config"
)

var flagSaveTo string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the effective configuration as YAML",
	Long: `config writes the configuration mapc is running with, defaults merged
with the config file and flags, to the user config directory or to --output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagSaveTo
		if path == "" {
			path = filepath.Join(config.ConfigDir(), "config.yaml")
			if err := appConfig.Save(); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
		} else if err := appConfig.SaveTo(path); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.Flags().StringVarP(&flagSaveTo, "output", "o", "", "output file (default user config dir)")
	rootCmd.AddCommand(configCmd)
}
