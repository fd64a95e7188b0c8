package main

import (
	"context"
	"fmt"
	"os"

	"github.com/habitlog/internal/config"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/handler"
	"github.com/habitlog/internal/provider"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var envFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "habitlog",
	Short: "Personal habit tracking backend",
	Long: `habitlog records daily habit measurements, syncs automatic habits from
external providers and serves analytics, goals and dashboards over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "optional .env file (default: .env)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
}

// app 是 serve 与 sync 共用的运行时依赖
type app struct {
	cfg    config.AppConfig
	logger *logrus.Logger
	api    *handler.API
}

// bootstrap 读取配置、打开数据库并写入内置习惯
func bootstrap(ctx context.Context) (*app, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := cfg.Logger()

	if err := db.Init(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	cache := provider.NewCache(ctx, cfg.RedisURL, logger)
	api := handler.NewAPI(db.DB, handler.Options{
		Providers:          provider.BuildProviders(cfg, cache, logger),
		StreakLookbackDays: cfg.StreakLookbackDays,
		Logger:             logger,
	})
	if err := api.Habits().Initialize(); err != nil {
		return nil, fmt.Errorf("initialize habit catalog: %w", err)
	}

	return &app{cfg: cfg, logger: logger, api: api}, nil
}
