package domain

import (
	"fmt"
	"time"
)

// QuestionKind distinguishes single- from multi-choice questions.
type QuestionKind string

const (
	SingleChoice QuestionKind = "SINGLE_CHOICE"
	MultiChoice  QuestionKind = "MULTI_CHOICE"
)

// Valid reports whether k is a known question kind.
func (k QuestionKind) Valid() bool {
	switch k {
	case SingleChoice, MultiChoice:
		return true
	default:
		return false
	}
}

// Question is a single quiz question. CorrectAnswers holds indices into Choices.
type Question struct {
	Prompt         string       `json:"question" yaml:"question"`
	Kind           QuestionKind `json:"type" yaml:"type"`
	Choices        []string     `json:"answers" yaml:"answers"`
	CorrectAnswers []int        `json:"correct_answers" yaml:"correct_answers"`
}

// Redacted returns a copy of the question without its correct-answer set.
func (q Question) Redacted() Question {
	choices := make([]string, len(q.Choices))
	copy(choices, q.Choices)
	return Question{
		Prompt:         q.Prompt,
		Kind:           q.Kind,
		Choices:        choices,
		CorrectAnswers: []int{},
	}
}

// Quiz is an immutable quiz definition from the catalog.
type Quiz struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Topic is the catalog listing view of a quiz.
type Topic struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Status is the lifecycle status of a quiz session.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusScheduled Status = "SCHEDULED"
	StatusStarted   Status = "STARTED"
	StatusFinished  Status = "FINISHED"
	StatusExpired   Status = "EXPIRED"
)

// Terminal reports whether no further transitions can happen from s.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusExpired
}

// QuestionIndex is serialized as a two-element [index, total] array.
type QuestionIndex [2]int

func (i QuestionIndex) Index() int { return i[0] }
func (i QuestionIndex) Total() int { return i[1] }

// SessionState is the persisted lifecycle state of one quiz session.
type SessionState struct {
	QuizID           string        `json:"id"`
	QuizName         string        `json:"name"`
	Code             int           `json:"quiz_code"`
	Status           Status        `json:"status"`
	ExpiresAt        time.Time     `json:"expires"`
	StartsAt         *time.Time    `json:"starts_at"`
	QuestionSeconds  int           `json:"question_seconds"`
	CurrentQuestion  QuestionIndex `json:"cur_question_index"`
	RedactedQuestion *Question     `json:"cur_question"`
	NextCheckSeconds int           `json:"updates_in_seconds"`
}

// Role is a player's role within a session.
type Role string

const (
	RoleCommander Role = "COMMANDER"
	RolePlayer    Role = "PLAYER"
)

// Answer is one per-question slot of a player's answer sheet. Answered is false
// for questions the player never answered.
type Answer struct {
	Selected []int   `json:"answer"`
	Seconds  float64 `json:"answer_given_seconds"`
	Answered bool    `json:"answered"`
}

// Player is a session participant. Token doubles as the membership proof.
type Player struct {
	Token   string   `json:"user_token"`
	Name    string   `json:"name"`
	Role    Role     `json:"user_role"`
	Answers []Answer `json:"answers"`
}

// Roster holds players in join order.
type Roster struct {
	Players []Player `json:"players"`
}

// Names returns player names in join order.
func (r Roster) Names() []string {
	names := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		names = append(names, p.Name)
	}
	return names
}

// Find returns the index of the player holding token, or -1.
func (r Roster) Find(token string) int {
	if token == "" {
		return -1
	}
	for i := range r.Players {
		if r.Players[i].Token == token {
			return i
		}
	}
	return -1
}

// HasName reports whether name is taken (case-sensitive).
func (r Roster) HasName(name string) bool {
	for _, p := range r.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// PlayerResult is one ranked entry of the final results.
type PlayerResult struct {
	Name         string   `json:"name"`
	Correct      int      `json:"correct_answers"`
	TotalSeconds float64  `json:"total_answering_time"`
	Answers      []Answer `json:"answers"`
}

// Results is the immutable ranking computed when a session finishes.
type Results struct {
	QuizID    string         `json:"quiz_id"`
	QuizName  string         `json:"quiz_name"`
	StartedAt time.Time      `json:"started_at"`
	Players   []PlayerResult `json:"players"`
}

// PlayerView is what a caller gets back from every session operation.
type PlayerView struct {
	State    SessionState `json:"state"`
	User     Player       `json:"user"`
	AllNames []string     `json:"all_user_names"`
}

// Validate checks the structural invariants the lifecycle and scoring rely on.
func (q Quiz) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("quiz has no id")
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz %s has no questions", q.ID)
	}
	for i, question := range q.Questions {
		if !question.Kind.Valid() {
			return fmt.Errorf("quiz %s question %d: unknown type %q", q.ID, i, question.Kind)
		}
		if len(question.CorrectAnswers) == 0 {
			return fmt.Errorf("quiz %s question %d: no correct answers", q.ID, i)
		}
		if question.Kind == SingleChoice && len(question.CorrectAnswers) != 1 {
			return fmt.Errorf("quiz %s question %d: single choice needs exactly one correct answer", q.ID, i)
		}
		for _, idx := range question.CorrectAnswers {
			if idx < 0 || idx >= len(question.Choices) {
				return fmt.Errorf("quiz %s question %d: correct answer %d out of range", q.ID, i, idx)
			}
		}
	}
	return nil
}
