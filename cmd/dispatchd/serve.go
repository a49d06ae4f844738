package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"dispatch-route-service/internal/adapters/repositories"
	"dispatch-route-service/internal/adapters/sequence"
	"dispatch-route-service/internal/api"
	"dispatch-route-service/internal/platform/config"
	"dispatch-route-service/internal/platform/db"
	"dispatch-route-service/internal/platform/logging"
)

// newServeCmd is the application composition root.
// It wires concrete adapters (Postgres, Redis) behind ports and starts the
// HTTP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			log := logging.New(cfg.Log.Level, cfg.Log.Pretty)

			database, err := db.Open(cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer database.Close()

			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer redisClient.Close()

			store := repositories.NewPostgresStore(database)
			seq := sequence.NewRedisSequence(redisClient, "dispatch:seq")

			router := api.NewRouter(store, seq, cfg.HTTP.APIKey, log)

			// Write timeout covers worst-case generation over a full day of
			// bookings; reads are cheap.
			srv := &http.Server{
				Addr:              ":" + cfg.HTTP.Port,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			log.Info().Str("addr", srv.Addr).Msg("server listening")
			return srv.ListenAndServe()
		},
	}
}
