package app

import (
	"math"
	"time"

	"quizless-service/internal/domain"
)

// Advance applies every time-driven transition that is due at now and returns
// the resulting state. The input is not modified. Calling Advance again with
// the same now yields an equal state, and a later now never moves the status
// backwards.
func Advance(state domain.SessionState, quiz domain.Quiz, now time.Time) domain.SessionState {
	next := state

	switch next.Status {
	case domain.StatusPending:
		if !now.Before(next.ExpiresAt) {
			return expire(next)
		}
		next.NextCheckSeconds = ceilSeconds(next.ExpiresAt.Sub(now))
		return next

	case domain.StatusScheduled:
		if !now.Before(next.ExpiresAt) {
			return expire(next)
		}
		if next.StartsAt == nil {
			// a schedule without a start time cannot start; wait for expiry
			next.NextCheckSeconds = ceilSeconds(next.ExpiresAt.Sub(now))
			return next
		}
		if now.Before(*next.StartsAt) {
			next.NextCheckSeconds = ceilSeconds(next.StartsAt.Sub(now))
			return next
		}
		next.Status = domain.StatusStarted
		return advanceRunning(next, quiz, now)

	case domain.StatusStarted:
		return advanceRunning(next, quiz, now)

	default:
		return next
	}
}

// advanceRunning derives the current question from the time elapsed since the
// start, finishing the session once every question has been shown.
func advanceRunning(state domain.SessionState, quiz domain.Quiz, now time.Time) domain.SessionState {
	total := len(quiz.Questions)
	elapsed := elapsedSinceStart(state, now)
	period := questionPeriod(state)
	index := int(elapsed / period)

	if index >= total {
		state.Status = domain.StatusFinished
		state.NextCheckSeconds = 0
		return state
	}

	if state.CurrentQuestion.Index() != index || state.RedactedQuestion == nil {
		redacted := quiz.Questions[index].Redacted()
		state.CurrentQuestion = domain.QuestionIndex{index, total}
		state.RedactedQuestion = &redacted
	}
	state.NextCheckSeconds = state.QuestionSeconds - int((elapsed%period)/time.Second)
	return state
}

func expire(state domain.SessionState) domain.SessionState {
	state.Status = domain.StatusExpired
	state.NextCheckSeconds = 0
	return state
}

// transitioned reports whether the persisted part of the state differs.
// NextCheckSeconds is a per-read hint and is not compared.
func transitioned(before, after domain.SessionState) bool {
	return before.Status != after.Status || before.CurrentQuestion != after.CurrentQuestion
}

func elapsedSinceStart(state domain.SessionState, now time.Time) time.Duration {
	if state.StartsAt == nil {
		return 0
	}
	elapsed := now.Sub(*state.StartsAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func questionPeriod(state domain.SessionState) time.Duration {
	if state.QuestionSeconds <= 0 {
		// rejected at creation; only a hand-edited record gets here
		return time.Second
	}
	return time.Duration(state.QuestionSeconds) * time.Second
}

// secondsIntoQuestion is how long the current question has been visible at now.
func secondsIntoQuestion(state domain.SessionState, now time.Time) float64 {
	return math.Mod(elapsedSinceStart(state, now).Seconds(), float64(state.QuestionSeconds))
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
