// reset_data wipes all application data in non-production environments.
//
// Usage: go run ./cmd/reset_data <confirmation-code>
// The code is CLEAR-<ENV>-<YEAR> for the configured environment; production
// is always refused.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/scottring/compliant-connect-sub001/internal/application/admin"
	"github.com/scottring/compliant-connect-sub001/internal/infrastructure/postgres"
	"github.com/scottring/compliant-connect-sub001/pkg/config"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: reset_data <confirmation-code>")
		fmt.Fprintf(os.Stderr, "hint: the expected code has the form %s\n",
			admin.ConfirmationCode("<env>", time.Now()))
		os.Exit(2)
	}
	code := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	reset := admin.NewResetUseCase(postgres.NewResetStore(pool), cfg.App.Env, log)
	if err := reset.Reset(ctx, code); err != nil {
		log.Fatal().Err(err).Str("env", cfg.App.Env).Msg("reset refused")
	}

	log.Info().Str("env", cfg.App.Env).Msg("all application data cleared")
}
