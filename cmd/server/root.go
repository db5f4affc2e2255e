package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mindcanvas/internal/config"
	"mindcanvas/internal/logger"
	"mindcanvas/internal/repository/sqlite"
	"mindcanvas/internal/service"
)

var version = "0.1.0"

// app is the state shared by every subcommand
type app struct {
	cfgPath string
	envFile string

	cfg     *config.Config
	cfgFile string
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "mindcanvas",
		Short:         "Mind-map storage and headless editor server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "config file (default: search path)")
	root.PersistentFlags().StringVar(&a.envFile, "env", ".env", "dotenv file loaded before the config")

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newSeedCmd(a),
		newConfigCmd(a),
	)
	return root
}

// init loads the environment, the config and the logger
func (a *app) init(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	var err error
	if a.cfgPath != "" {
		a.cfg, a.cfgFile, err = config.LoadFromPath(a.cfgPath)
	} else {
		a.cfg, a.cfgFile, err = config.Load()
	}
	if err != nil {
		return err
	}

	a.logger, err = logger.New(logger.Options{
		Level:      a.cfg.Log.Level,
		Format:     a.cfg.Log.Format,
		File:       a.cfg.Log.File,
		MaxSizeMB:  a.cfg.Log.MaxSizeMB,
		MaxBackups: a.cfg.Log.MaxBackups,
		MaxAgeDays: a.cfg.Log.MaxAgeDays,
		Console:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}

// openService opens the database and the mindmap service over it
func (a *app) openService(bus *service.EventBus) (*service.MindmapService, func(), error) {
	repo, err := sqlite.New(a.cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	a.logger.Debug("database opened", zap.String("path", a.cfg.Database.Path))

	closeFn := func() {
		if err := repo.Close(); err != nil {
			a.logger.Warn("close database", zap.Error(err))
		}
	}
	return service.NewMindmapService(repo, bus, a.logger), closeFn, nil
}
