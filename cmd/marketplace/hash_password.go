package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/opportunitycup/marketplace-api/internal/infrastructure/security"
)

// hashPasswordCmd prints a bcrypt hash for a password read from stdin, for
// seeding users by hand.
func hashPasswordCmd() *cli.Command {
	var cost int
	return &cli.Command{
		Name:  "hash-password",
		Usage: "Hash a password read from stdin",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "cost",
				Usage:       "bcrypt work factor",
				Value:       bcrypt.DefaultCost,
				EnvVars:     []string{"HASH_COST"},
				Destination: &cost,
			},
		},
		Action: func(c *cli.Context) error {
			sc := bufio.NewScanner(os.Stdin)
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return err
				}
				return errors.New("missing password from stdin")
			}
			password := strings.TrimSpace(sc.Text())
			if password == "" {
				return errors.New("missing password from stdin")
			}

			h, err := security.NewBcryptHasher(cost)
			if err != nil {
				return err
			}
			hash, err := h.Hash(c.Context, password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, hash)
			return err
		},
	}
}
