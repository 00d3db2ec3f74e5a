// Command mapc builds .map files offline: it reports brush statistics,
// dumps meshes as YAML and rebuilds on change.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/almond/internal/config"
	"github.com/Faultbox/almond/internal/level"
	"github.com/Faultbox/almond/internal/logger"
)

var (
	flagConfig     string
	flagDebug      bool
	flagSplitSeams bool

	// appConfig is set before any subcommand runs.
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mapc",
	Short: "Quake .map brush compiler",
	Long: `mapc converts the brushes of a Quake .map file into triangle meshes
the same way the almond viewer does, and reports what it built.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg
		return logger.InitRotating(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagSplitSeams, "split-seams", false, "keep vertices with different UVs apart")
}

// loadConfig merges the config file with the command's flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDebug {
		cfg.Logging.Level = "debug"
	}
	if flagSplitSeams {
		cfg.Mesh.SplitUVSeams = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLoader builds a loader from the current config.
func newLoader() *level.Loader {
	return level.NewLoader(level.OptionsFromConfig(appConfig), logger.Named("level"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
