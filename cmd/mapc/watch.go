package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/almond/internal/level"
	"github.com/Faultbox/almond/internal/logger"
	"github.com/Faultbox/almond/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file.map>",
	Short: "Rebuild the map every time it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := newLoader()
		path := args[0]
		log := logger.Named("mapc")

		fw, err := watcher.NewFileWatcher(appConfig.Watch.Debounce, logger.Named("watcher"))
		if err != nil {
			return err
		}
		defer fw.Close()

		changed := make(chan string, 1)
		err = fw.Watch([]string{path}, func(p string) {
			select {
			case changed <- p:
			default:
			}
		})
		if err != nil {
			return err
		}
		fw.Start()

		rebuild(loader, log, path)
		log.Info("watching for changes", zap.String("path", path))

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(stop)

		for {
			select {
			case p := <-changed:
				rebuild(loader, log, p)
			case <-stop:
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// rebuild loads path and logs the outcome.
func rebuild(loader *level.Loader, log *zap.Logger, path string) {
	lvl, err := loader.Load(path)
	if err != nil {
		log.Error("build failed", zap.String("path", path), zap.Error(err))
		return
	}
	log.Info("build finished",
		zap.String("path", path),
		zap.Int("meshes", len(lvl.Meshes)),
		zap.Int("failed", lvl.Failed()),
		zap.Int("triangles", lvl.TriangleCount()),
	)
}
