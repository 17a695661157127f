package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"quizless-service/internal/domain"
)

const capitalsJSON = `{
  "name": "Capitals",
  "questions": [
    {"question": "Capital of France?", "type": "SINGLE_CHOICE", "answers": ["Rome", "Paris", "Oslo"], "correct_answers": [1]},
    {"question": "Nordic capitals?", "answers": ["Oslo", "Berlin", "Helsinki"], "correct_answers": [0, 2]}
  ]
}`

const riversYAML = `
id: rivers
name: Rivers
questions:
  - question: Longest river?
    type: SINGLE_CHOICE
    answers: [Nile, Volga]
    correct_answers: [0]
`

func TestLoadQuizzesFromDirectoryLayouts(t *testing.T) {
	root := t.TempDir()
	quizID := "d729af45-5ed3-42d0-ac57-d4485b64b067"

	require.NoError(t, os.Mkdir(filepath.Join(root, quizID), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, quizID, QuizDataFile), []byte(capitalsJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "rivers.yaml"), []byte(riversYAML), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "website"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("ignored"), 0o644))

	quizzes, err := NewQuizLoader(root).LoadQuizzes(context.Background())
	require.NoError(t, err)
	require.Len(t, quizzes, 2)

	capitals := quizzes[0]
	require.Equal(t, quizID, capitals.ID)
	require.Equal(t, "Capitals", capitals.Name)
	require.Equal(t, domain.MultiChoice, capitals.Questions[1].Kind)
	require.Equal(t, []int{0, 2}, capitals.Questions[1].CorrectAnswers)
	require.NoError(t, capitals.Validate())

	rivers := quizzes[1]
	require.Equal(t, "rivers", rivers.ID)
	require.Equal(t, []string{"Nile", "Volga"}, rivers.Questions[0].Choices)
}

func TestLoadQuizzesFileNameAsID(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "capitals.json"), []byte(capitalsJSON), 0o644))

	quizzes, err := NewQuizLoader(root).LoadQuizzes(context.Background())
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	require.Equal(t, "capitals", quizzes[0].ID)
}

func TestLoadQuizzesMalformedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.json"), []byte("{"), 0o644))

	_, err := NewQuizLoader(root).LoadQuizzes(context.Background())
	require.Error(t, err)
}

func TestLoadQuizzesMissingRoot(t *testing.T) {
	_, err := NewQuizLoader(filepath.Join(t.TempDir(), "absent")).LoadQuizzes(context.Background())
	require.Error(t, err)
}
