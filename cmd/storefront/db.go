package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeMC777/joyeria-ecom/internal/config"
	"github.com/MikeMC777/joyeria-ecom/internal/db"
	"github.com/MikeMC777/joyeria-ecom/internal/logger"
)

// storefront migrate: apply the embedded schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger.Init(cfg.AppEnv)
		pool, err := db.Connect(cmd.Context(), cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		return db.Migrate(cmd.Context(), pool)
	},
}

// storefront seed: load the demo catalog and the WELCOME10 coupon.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger.Init(cfg.AppEnv)
		ctx := cmd.Context()
		pool, err := db.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
		return db.Seed(ctx, pool, db.DemoData(time.Now().UTC()))
	},
}
