package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quizless-service/internal/domain"
	pgmigrations "quizless-service/internal/infra/postgres/migrations"
)

// OpenDB opens a bun handle for schema management and seeding. The request
// path reads through pgx (see QuizLoader).
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies every pending migration and returns the applied group.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}
	return migrator.Migrate(ctx)
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID   string          `bun:"id,pk"`
	Data json.RawMessage `bun:"data,type:jsonb"`
}

// Seeder writes quiz definitions into the quizzes table.
type Seeder struct {
	db *bun.DB
}

func NewSeeder(db *bun.DB) *Seeder {
	return &Seeder{db: db}
}

// Upsert inserts the quizzes, replacing the document of existing ids.
func (s *Seeder) Upsert(ctx context.Context, quizzes []domain.Quiz) (int, error) {
	if len(quizzes) == 0 {
		return 0, nil
	}
	rows := make([]quizRow, 0, len(quizzes))
	for _, quiz := range quizzes {
		data, err := json.Marshal(quiz)
		if err != nil {
			return 0, fmt.Errorf("marshal quiz %s: %w", quiz.ID, err)
		}
		rows = append(rows, quizRow{ID: quiz.ID, Data: data})
	}

	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("upsert quizzes: %w", err)
	}
	return len(rows), nil
}
