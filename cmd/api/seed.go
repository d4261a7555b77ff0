package main

import (
	"context"
	"errors"
	"os"

	"greencart-ops-api/internal/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedDataDir string
	seedReset   bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load drivers, routes and orders from CSV files",
	Long: `Load drivers.csv, routes.csv and orders.csv from --data into MongoDB.

With --reset the three collections are emptied first. When MANAGER_USERNAME and
MANAGER_PASSWORD are set, a manager account is created if it does not exist.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedDataDir, "data", "./data", "Directory containing the CSV files")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Delete existing drivers, routes and orders first")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Mongo.URI == "" {
		return errors.New("seed: MONGO_URI is required")
	}

	ctx := cmd.Context()
	client, err := database.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.Mongo.DBName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	seeder := database.NewSeeder(database.NewStore(client, db, false), logger)

	report, err := seeder.SeedCSV(ctx, seedDataDir, seedReset)
	if err != nil {
		return err
	}
	logger.Info("seed complete",
		zap.Int("drivers", report.Drivers),
		zap.Int("routes", report.Routes),
		zap.Int("orders", report.Orders),
		zap.Int("skipped_orders", report.SkippedOrders),
	)

	username, password := os.Getenv("MANAGER_USERNAME"), os.Getenv("MANAGER_PASSWORD")
	if username != "" && password != "" {
		return seeder.SeedManager(ctx, username, password)
	}
	return nil
}
