package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"quizless-service/internal/domain"
)

// QuizDataFile is the file holding a quiz inside its own directory.
const QuizDataFile = "quiz_data.json"

// QuizLoader reads quiz definitions from a directory. Two layouts are
// accepted side by side:
//
//	<root>/<uuid>/quiz_data.json   id is the directory name
//	<root>/<name>.json|.yaml|.yml  id from the file, else the file name
//
// Directories whose name is not a UUID are skipped.
type QuizLoader struct {
	root string
}

func NewQuizLoader(root string) *QuizLoader {
	return &QuizLoader{root: root}
}

func (l *QuizLoader) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	var quizzes []domain.Quiz
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if entry.IsDir() {
			if !isQuizID(name) {
				continue
			}
			quiz, err := readQuizFile(filepath.Join(l.root, name, QuizDataFile))
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			quiz.ID = name
			quizzes = append(quizzes, normalize(quiz))
			continue
		}

		switch strings.ToLower(filepath.Ext(name)) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		quiz, err := readQuizFile(filepath.Join(l.root, name))
		if err != nil {
			return nil, err
		}
		if quiz.ID == "" {
			quiz.ID = strings.TrimSuffix(name, filepath.Ext(name))
		}
		quizzes = append(quizzes, normalize(quiz))
	}
	return quizzes, nil
}

func readQuizFile(path string) (domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Quiz{}, err
	}

	var quiz domain.Quiz
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &quiz)
	default:
		err = json.Unmarshal(data, &quiz)
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return quiz, nil
}

// normalize fills in question kinds omitted by hand-written files.
func normalize(quiz domain.Quiz) domain.Quiz {
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		if q.Kind != "" {
			continue
		}
		if len(q.CorrectAnswers) > 1 {
			q.Kind = domain.MultiChoice
		} else {
			q.Kind = domain.SingleChoice
		}
	}
	return quiz
}

func isQuizID(name string) bool {
	if len(name) != 36 {
		return false
	}
	_, err := uuid.Parse(name)
	return err == nil
}
