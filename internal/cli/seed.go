package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"quizless-service/internal/config"
	fsloader "quizless-service/internal/infra/fs"
	"quizless-service/internal/infra/memory"
	pgstore "quizless-service/internal/infra/postgres"
)

// NewSeedCmd copies a filesystem catalog into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load quiz files into the postgres catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, from)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "catalog directory (defaults to catalog.path)")
	return cmd
}

func runSeed(ctx context.Context, configPath, from string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if from == "" {
		from = cfg.Catalog.Path
	}
	if from == "" {
		return fmt.Errorf("no catalog directory given")
	}

	// validates and dedupes before anything is written
	catalog := memory.NewCatalog(fsloader.NewQuizLoader(from))
	quizzes, err := catalog.ListQuizzes(ctx)
	if err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return err
	}
	db := pgstore.OpenDB(cfg.Postgres.URL)
	defer db.Close()

	n, err := pgstore.NewSeeder(db).Upsert(ctx, quizzes)
	if err != nil {
		return err
	}
	log.Info("catalog seeded", zap.String("from", from), zap.Int("quizzes", n))
	return nil
}
