package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"quizless-service/internal/app"
	"quizless-service/internal/config"
	"quizless-service/internal/domain"
	fsloader "quizless-service/internal/infra/fs"
	"quizless-service/internal/infra/memory"
	pgstore "quizless-service/internal/infra/postgres"
	redissession "quizless-service/internal/infra/redis"
)

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Log.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}

func sessionSettings(cfg config.Config) app.Settings {
	defaults := app.DefaultSettings()
	return app.Settings{
		PendingTTL:             config.TTLDuration(cfg.Session.PendingTTL, defaults.PendingTTL),
		StartedTTL:             config.TTLDuration(cfg.Session.StartedTTL, defaults.StartedTTL),
		DefaultQuestionSeconds: config.IntOr(cfg.Session.DefaultQuestionSeconds, defaults.DefaultQuestionSeconds),
		CodeSpace:              config.IntOr(cfg.Session.CodeSpace, defaults.CodeSpace),
	}
}

// newCatalog picks the quiz source. The returned func releases its resources.
func newCatalog(ctx context.Context, cfg config.Config, log *zap.Logger) (*memory.Catalog, func(), error) {
	noop := func() {}
	switch source := cfg.CatalogSource(); source {
	case config.CatalogStatic:
		log.Info("using built-in sample catalog")
		return memory.NewCatalog(memory.NewStaticQuizLoader(sampleQuizzes()...)), noop, nil
	case config.CatalogFS:
		if cfg.Catalog.Path == "" {
			return nil, noop, fmt.Errorf("catalog path not configured")
		}
		log.Info("using filesystem catalog", zap.String("path", cfg.Catalog.Path))
		return memory.NewCatalog(fsloader.NewQuizLoader(cfg.Catalog.Path)), noop, nil
	case config.CatalogPostgres:
		if cfg.Postgres.URL == "" {
			return nil, noop, fmt.Errorf("postgres url not configured")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, noop, err
		}
		log.Info("using postgres catalog")
		return memory.NewCatalog(pgstore.NewQuizLoader(pool)), pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown catalog source %q", source)
	}
}

// newSessionStore returns Redis when configured, else the in-process store.
func newSessionStore(ctx context.Context, cfg config.Config, log *zap.Logger) (app.SessionStore, func(), error) {
	var opts *redis.Options
	switch {
	case cfg.Redis.URL != "":
		parsed, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("redis url: %w", err)
		}
		opts = parsed
	case cfg.Redis.Addr != "":
		opts = &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
	default:
		log.Warn("redis not configured, sessions are kept in memory")
		return memory.NewSessionStore(), func() {}, nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, func() {}, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("using redis session store", zap.String("addr", opts.Addr))
	return redissession.NewSessionStore(client, cfg.Redis.Prefix), func() { _ = client.Close() }, nil
}

// sampleQuizzes is the catalog served when no other source is configured.
func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:   "3f1c2b9e-6a0d-4c7e-9d51-2b8f0a6e4c11",
			Name: "Arithmetic warm-up",
			Questions: []domain.Question{
				{
					Prompt:         "What is 2 + 2?",
					Kind:           domain.SingleChoice,
					Choices:        []string{"3", "4", "5"},
					CorrectAnswers: []int{1},
				},
				{
					Prompt:         "Which of these are prime?",
					Kind:           domain.MultiChoice,
					Choices:        []string{"2", "4", "7", "9"},
					CorrectAnswers: []int{0, 2},
				},
				{
					Prompt:         "What is 6 x 7?",
					Kind:           domain.SingleChoice,
					Choices:        []string{"42", "36", "48"},
					CorrectAnswers: []int{0},
				},
			},
		},
		{
			ID:   "b7e4d2a0-1c93-4f6e-8a2d-5e0c9f3b7d42",
			Name: "Go basics",
			Questions: []domain.Question{
				{
					Prompt:         "Which keyword starts a goroutine?",
					Kind:           domain.SingleChoice,
					Choices:        []string{"go", "async", "spawn"},
					CorrectAnswers: []int{0},
				},
				{
					Prompt:         "Which types are reference-like?",
					Kind:           domain.MultiChoice,
					Choices:        []string{"map", "int", "slice", "struct"},
					CorrectAnswers: []int{0, 2},
				},
			},
		},
	}
}
