package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"quizless-service/internal/domain"
)

var t0 = time.Date(2012, 1, 14, 10, 0, 0, 0, time.UTC)

func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:   "quiz-1",
		Name: "Arithmetic",
		Questions: []domain.Question{
			{Prompt: "2 + 2?", Kind: domain.SingleChoice, Choices: []string{"3", "4", "5"}, CorrectAnswers: []int{1}},
			{Prompt: "Even numbers?", Kind: domain.MultiChoice, Choices: []string{"2", "3", "4"}, CorrectAnswers: []int{0, 2}},
		},
	}
}

func scheduledState(startsAt time.Time, questionSeconds int) domain.SessionState {
	return domain.SessionState{
		QuizID:          "quiz-1",
		Code:            42,
		Status:          domain.StatusScheduled,
		ExpiresAt:       t0.Add(10 * time.Minute),
		StartsAt:        &startsAt,
		QuestionSeconds: questionSeconds,
		CurrentQuestion: domain.QuestionIndex{-1, 2},
	}
}

func at(d float64) time.Time {
	return t0.Add(time.Duration(d * float64(time.Second)))
}

func TestAdvanceTimeline(t *testing.T) {
	quiz := twoQuestionQuiz()
	// scheduled at t0 with a one second delay
	state := scheduledState(t0.Add(time.Second), 1)

	tests := []struct {
		name      string
		now       time.Time
		status    domain.Status
		index     domain.QuestionIndex
		nextCheck int
	}{
		{"before start", at(0.3), domain.StatusScheduled, domain.QuestionIndex{-1, 2}, 1},
		{"first question", at(1.2), domain.StatusStarted, domain.QuestionIndex{0, 2}, 1},
		{"second question", at(2.2), domain.StatusStarted, domain.QuestionIndex{1, 2}, 1},
		// jumping straight past the end never reveals a question
		{"finished unpolled", at(4.2), domain.StatusFinished, domain.QuestionIndex{-1, 2}, 0},
		{"past the expiry", at(3600), domain.StatusExpired, domain.QuestionIndex{-1, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := Advance(state, quiz, tt.now)
			require.Equal(t, tt.status, next.Status)
			require.Equal(t, tt.index, next.CurrentQuestion)
			require.Equal(t, tt.nextCheck, next.NextCheckSeconds)
		})
	}
}

func TestAdvanceFromPolledStates(t *testing.T) {
	quiz := twoQuestionQuiz()
	state := scheduledState(t0.Add(time.Second), 1)

	state = Advance(state, quiz, at(1.2))
	require.Equal(t, domain.QuestionIndex{0, 2}, state.CurrentQuestion)
	require.Equal(t, "2 + 2?", state.RedactedQuestion.Prompt)
	require.Empty(t, state.RedactedQuestion.CorrectAnswers)

	state = Advance(state, quiz, at(2.2))
	require.Equal(t, domain.QuestionIndex{1, 2}, state.CurrentQuestion)
	require.Equal(t, "Even numbers?", state.RedactedQuestion.Prompt)

	state = Advance(state, quiz, at(4.2))
	require.Equal(t, domain.StatusFinished, state.Status)
	require.Equal(t, domain.QuestionIndex{1, 2}, state.CurrentQuestion)
}

func TestAdvanceIsIdempotent(t *testing.T) {
	quiz := twoQuestionQuiz()
	pending := domain.SessionState{
		QuizID:          "quiz-1",
		Status:          domain.StatusPending,
		ExpiresAt:       t0.Add(10 * time.Minute),
		QuestionSeconds: 1,
		CurrentQuestion: domain.QuestionIndex{-1, 2},
	}
	states := []domain.SessionState{pending, scheduledState(t0.Add(time.Second), 1), scheduledState(t0, 5)}

	for _, state := range states {
		for _, now := range []time.Time{at(0), at(0.5), at(1.2), at(2.7), at(6), at(601)} {
			once := Advance(state, quiz, now)
			require.Equal(t, once, Advance(once, quiz, now), "status %s at %s", state.Status, now)
		}
	}
}

func TestAdvanceNeverMovesBackwards(t *testing.T) {
	rank := map[domain.Status]int{
		domain.StatusPending:   0,
		domain.StatusScheduled: 1,
		domain.StatusStarted:   2,
		domain.StatusFinished:  3,
		domain.StatusExpired:   3,
	}
	quiz := twoQuestionQuiz()
	state := scheduledState(t0.Add(time.Second), 1)

	for step := 0; step <= 60; step++ {
		next := Advance(state, quiz, at(float64(step)/10))
		require.GreaterOrEqual(t, rank[next.Status], rank[state.Status])
		require.GreaterOrEqual(t, next.CurrentQuestion.Index(), state.CurrentQuestion.Index())
		if state.Status.Terminal() {
			require.Equal(t, state.Status, next.Status)
		}
		state = next
	}
	require.Equal(t, domain.StatusFinished, state.Status)
}

func TestAdvancePendingExpires(t *testing.T) {
	quiz := twoQuestionQuiz()
	state := domain.SessionState{
		Status:          domain.StatusPending,
		ExpiresAt:       t0.Add(10 * time.Minute),
		QuestionSeconds: 30,
		CurrentQuestion: domain.QuestionIndex{-1, 2},
	}

	require.Equal(t, 600, Advance(state, quiz, t0).NextCheckSeconds)
	require.Equal(t, 1, Advance(state, quiz, t0.Add(10*time.Minute-300*time.Millisecond)).NextCheckSeconds)

	expired := Advance(state, quiz, t0.Add(10*time.Minute))
	require.Equal(t, domain.StatusExpired, expired.Status)
	require.Zero(t, expired.NextCheckSeconds)
	require.Equal(t, expired, Advance(expired, quiz, t0.Add(time.Hour)))
}

func TestAdvanceScheduledWithoutStartWaitsForExpiry(t *testing.T) {
	quiz := twoQuestionQuiz()
	state := scheduledState(t0, 1)
	state.StartsAt = nil

	require.Equal(t, domain.StatusScheduled, Advance(state, quiz, t0.Add(time.Second)).Status)
	require.Equal(t, domain.StatusExpired, Advance(state, quiz, t0.Add(10*time.Minute)).Status)
}

func TestAdvanceScheduledExpiresRegardlessOfStart(t *testing.T) {
	quiz := twoQuestionQuiz()

	tests := []struct {
		name     string
		startsAt time.Time
		now      time.Time
	}{
		{"start planned after expiry", t0.Add(20 * time.Minute), t0.Add(21 * time.Minute)},
		{"start planned after expiry, polled in between", t0.Add(20 * time.Minute), t0.Add(12 * time.Minute)},
		{"start due but never polled before expiry", t0.Add(9 * time.Minute), t0.Add(10 * time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := scheduledState(tt.startsAt, 1)
			next := Advance(state, quiz, tt.now)
			require.Equal(t, domain.StatusExpired, next.Status)
			require.Zero(t, next.NextCheckSeconds)
			require.Equal(t, domain.QuestionIndex{-1, 2}, next.CurrentQuestion)
		})
	}
}

func TestSecondsIntoQuestion(t *testing.T) {
	state := scheduledState(t0, 10)
	require.InDelta(t, 2.5, secondsIntoQuestion(state, at(12.5)), 1e-9)
	require.InDelta(t, 0, secondsIntoQuestion(state, at(-1)), 1e-9)
}
