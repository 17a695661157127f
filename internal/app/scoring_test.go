package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"quizless-service/internal/domain"
)

func answered(seconds float64, selected ...int) domain.Answer {
	return domain.Answer{Selected: selected, Seconds: seconds, Answered: true}
}

func TestRankCorrectnessDominatesTime(t *testing.T) {
	roster := domain.Roster{Players: []domain.Player{
		{Name: "B", Answers: []domain.Answer{answered(1.8, 1)}},
		{Name: "A", Answers: []domain.Answer{answered(1.5, 1), answered(2.4, 0, 2)}},
	}}

	results := Rank(twoQuestionQuiz(), roster, t0)

	require.Equal(t, "quiz-1", results.QuizID)
	require.Equal(t, t0, results.StartedAt)
	require.Len(t, results.Players, 2)
	require.Equal(t, "A", results.Players[0].Name)
	require.Equal(t, 2, results.Players[0].Correct)
	require.InDelta(t, 3.9, results.Players[0].TotalSeconds, 1e-9)
	require.Equal(t, "B", results.Players[1].Name)
	require.Equal(t, 1, results.Players[1].Correct)
	require.InDelta(t, 1.8, results.Players[1].TotalSeconds, 1e-9)
}

func TestRankScoring(t *testing.T) {
	tests := []struct {
		name    string
		answers []domain.Answer
		correct int
		seconds float64
	}{
		{"no answers", nil, 0, 0},
		{"order of choices does not matter", []domain.Answer{answered(1, 1), answered(2, 2, 0)}, 2, 3},
		{"subset of a multi choice is wrong", []domain.Answer{{Selected: []int{}}, answered(2, 0)}, 0, 2},
		{"superset is wrong", []domain.Answer{answered(1, 1, 2)}, 0, 1},
		{"unanswered slot is skipped", []domain.Answer{{Selected: []int{}, Seconds: 9}, answered(0.5, 0, 2)}, 1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster := domain.Roster{Players: []domain.Player{{Name: "P", Answers: tt.answers}}}
			got := Rank(twoQuestionQuiz(), roster, t0).Players[0]
			require.Equal(t, tt.correct, got.Correct)
			require.InDelta(t, tt.seconds, got.TotalSeconds, 1e-9)
			require.NotNil(t, got.Answers)
		})
	}
}

func TestRankTiesKeepJoinOrder(t *testing.T) {
	roster := domain.Roster{Players: []domain.Player{
		{Name: "first", Answers: []domain.Answer{answered(1, 1)}},
		{Name: "second", Answers: []domain.Answer{answered(1, 1)}},
		{Name: "faster", Answers: []domain.Answer{answered(0.5, 1)}},
		{Name: "idle"},
	}}

	results := Rank(twoQuestionQuiz(), roster, t0)

	names := make([]string, 0, len(results.Players))
	for _, p := range results.Players {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"faster", "first", "second", "idle"}, names)
}
