package app

import (
	"slices"
	"sort"
	"time"

	"quizless-service/internal/domain"
)

type playerScore struct {
	correct int
	seconds float64
}

// Rank scores each player's answer sheet against the quiz and orders them by
// correct answers (descending), then total answering time (ascending). Players
// with equal scores keep their join order. Unanswered questions count neither
// as correct nor towards the time.
func Rank(quiz domain.Quiz, roster domain.Roster, startedAt time.Time) domain.Results {
	scores := make([]playerScore, len(roster.Players))

	for i, question := range quiz.Questions {
		expected := sortedCopy(question.CorrectAnswers)
		for p, player := range roster.Players {
			if i >= len(player.Answers) || !player.Answers[i].Answered {
				continue
			}
			slot := player.Answers[i]
			if slices.Equal(sortedCopy(slot.Selected), expected) {
				scores[p].correct++
			}
			scores[p].seconds += slot.Seconds
		}
	}

	order := make([]int, len(roster.Players))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := scores[order[a]], scores[order[b]]
		if sa.correct != sb.correct {
			return sa.correct > sb.correct
		}
		return sa.seconds < sb.seconds
	})

	results := domain.Results{
		QuizID:    quiz.ID,
		QuizName:  quiz.Name,
		StartedAt: startedAt,
		Players:   make([]domain.PlayerResult, 0, len(order)),
	}
	for _, p := range order {
		player := roster.Players[p]
		answers := player.Answers
		if answers == nil {
			answers = []domain.Answer{}
		}
		results.Players = append(results.Players, domain.PlayerResult{
			Name:         player.Name,
			Correct:      scores[p].correct,
			TotalSeconds: scores[p].seconds,
			Answers:      answers,
		})
	}
	return results
}

func sortedCopy(values []int) []int {
	out := make([]int, len(values))
	copy(out, values)
	sort.Ints(out)
	return out
}
