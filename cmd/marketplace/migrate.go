package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	mongodb "github.com/opportunitycup/marketplace-api/internal/infrastructure/db/mongo"
	"github.com/opportunitycup/marketplace-api/internal/pkg/config"
	"github.com/opportunitycup/marketplace-api/pkg/logger"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the MongoDB indexes",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.Context)
			if err != nil {
				return err
			}
			log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: "marketplace-api"})

			client, db, err := mongodb.Connect(c.Context, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			if err := mongodb.EnsureIndexes(c.Context, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info().Str("database", cfg.Mongo.Database).Msg("indexes ensured")
			return nil
		},
	}
}
