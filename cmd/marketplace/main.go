// @title                       Marketplace API
// @version                     1.0
// @description                 Accounts, authentication and balances for the marketplace.
// @BasePath                    /api
// @securityDefinitions.apikey  AccessToken
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "marketplace",
		Usage: "Marketplace accounts and balances API",
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			hashPasswordCmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("marketplace failed")
		os.Exit(1)
	}
}
