package memory

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
	"quizless-service/internal/domain"
)

// QuizLoader fetches every quiz definition from a backing store (filesystem,
// Postgres, ...).
type QuizLoader interface {
	LoadQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// Catalog holds the quiz definitions in memory. They are loaded once, on the
// first access or an explicit Load, and never change afterwards.
type Catalog struct {
	loader QuizLoader
	sf     singleflight.Group

	mu      sync.RWMutex
	loaded  bool
	quizzes []domain.Quiz
	byID    map[string]domain.Quiz
}

func NewCatalog(loader QuizLoader) *Catalog {
	return &Catalog{loader: loader}
}

// Load reads the catalog if it has not been read yet.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := c.sf.Do("catalog", func() (interface{}, error) {
		c.mu.RLock()
		loaded := c.loaded
		c.mu.RUnlock()
		if loaded {
			return nil, nil
		}

		quizzes, err := c.loader.LoadQuizzes(ctx)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		byID := make(map[string]domain.Quiz, len(quizzes))
		for _, quiz := range quizzes {
			if err := quiz.Validate(); err != nil {
				return nil, err
			}
			if _, dup := byID[quiz.ID]; dup {
				return nil, fmt.Errorf("duplicate quiz id %s", quiz.ID)
			}
			byID[quiz.ID] = quiz
		}

		c.mu.Lock()
		c.quizzes = quizzes
		c.byID = byID
		c.loaded = true
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

func (c *Catalog) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Quiz, len(c.quizzes))
	copy(out, c.quizzes)
	return out, nil
}

func (c *Catalog) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if err := c.Load(ctx); err != nil {
		return domain.Quiz{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if quiz, ok := c.byID[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// StaticQuizLoader is a simple loader backed by a slice (useful for tests/demos).
type StaticQuizLoader struct {
	quizzes []domain.Quiz
}

func NewStaticQuizLoader(quizzes ...domain.Quiz) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuizzes(_ context.Context) ([]domain.Quiz, error) {
	out := make([]domain.Quiz, len(l.quizzes))
	copy(out, l.quizzes)
	return out, nil
}
