package main

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"dispatch-route-service/internal/platform/config"
)

func newMigrateCmd() *cobra.Command {
	var (
		dir  string
		down bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			m, err := migrate.New("file://"+dir, cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("migrate: open: %w", err)
			}
			defer m.Close()

			if down {
				err = m.Steps(-1)
			} else {
				err = m.Up()
			}
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("migrations: no change")
				return nil
			}
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			fmt.Println("migrations: done")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "migrations", "migrations directory")
	cmd.Flags().BoolVar(&down, "down", false, "roll back one migration")
	return cmd
}
