package app

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"quizless-service/internal/domain"
)

// QuizCatalog supplies the immutable quiz definitions.
type QuizCatalog interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Settings tunes session lifetimes.
type Settings struct {
	// PendingTTL is how long an unscheduled session waits before expiring.
	PendingTTL time.Duration
	// StartedTTL is how long finished or expired sessions and their results
	// stay readable, and the slack kept beyond a running session's planned end.
	StartedTTL             time.Duration
	DefaultQuestionSeconds int
	// CodeSpace bounds generated session codes to [0, CodeSpace).
	CodeSpace int
}

func DefaultSettings() Settings {
	return Settings{
		PendingTTL:             10 * time.Minute,
		StartedTTL:             60 * time.Minute,
		DefaultQuestionSeconds: 30,
		CodeSpace:              100000,
	}
}

type (
	StartRequest struct {
		TopicID         string `json:"topic_id"`
		UserName        string `json:"user_name"`
		QuestionSeconds int    `json:"question_seconds"`
	}
	JoinRequest struct {
		Code     int    `json:"quiz_code"`
		UserName string `json:"user_name"`
	}
	StatusRequest struct {
		Code  int    `json:"quiz_code"`
		Token string `json:"user_token"`
	}
	ScheduleRequest struct {
		Code         int    `json:"quiz_code"`
		Token        string `json:"user_token"`
		DelaySeconds int    `json:"delay_seconds"`
	}
	AnswerRequest struct {
		Code          int    `json:"quiz_code"`
		Token         string `json:"user_token"`
		QuestionIndex int    `json:"question_index"`
		Answer        []int  `json:"answer"`
	}
)

// QuizService contains the quiz session use cases. Every operation observes the
// clock once, lazily advances the stored session to that instant and then
// applies its own logic; there is no background scheduler.
type QuizService struct {
	sessions sessionRepository
	quizzes  QuizCatalog
	settings Settings
	logger   *zap.Logger
	now      func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand
}

type Option func(*QuizService)

// WithClock is for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithRand makes generated session codes deterministic.
func WithRand(rnd *rand.Rand) Option {
	return func(s *QuizService) { s.rnd = rnd }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

func WithSettings(settings Settings) Option {
	return func(s *QuizService) { s.settings = settings }
}

func NewQuizService(store SessionStore, quizzes QuizCatalog, opts ...Option) *QuizService {
	s := &QuizService{
		sessions: sessionRepository{store: store},
		quizzes:  quizzes,
		settings: DefaultSettings(),
		logger:   zap.NewNop(),
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTopics returns id and name of every quiz in the catalog.
func (s *QuizService) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	topics := make([]domain.Topic, 0, len(quizzes))
	for _, q := range quizzes {
		topics = append(topics, domain.Topic{ID: q.ID, Name: q.Name})
	}
	return topics, nil
}

// StartQuiz creates a pending session with the caller as its commander.
func (s *QuizService) StartQuiz(ctx context.Context, req StartRequest) (domain.PlayerView, error) {
	if req.UserName == "" {
		return domain.PlayerView{}, domain.ErrEmptyName
	}
	questionSeconds := req.QuestionSeconds
	if questionSeconds == 0 {
		questionSeconds = s.settings.DefaultQuestionSeconds
	}
	if questionSeconds <= 0 {
		return domain.PlayerView{}, domain.ErrInvalidQuestionSeconds
	}

	quiz, err := s.quizzes.GetQuiz(ctx, req.TopicID)
	if err != nil {
		return domain.PlayerView{}, err
	}
	if int64(questionSeconds) > maxDurationSeconds/int64(len(quiz.Questions)) {
		return domain.PlayerView{}, domain.ErrInvalidQuestionSeconds
	}

	now := s.now()
	state := domain.SessionState{
		QuizID:           quiz.ID,
		QuizName:         quiz.Name,
		Code:             s.newCode(),
		Status:           domain.StatusPending,
		ExpiresAt:        now.Add(s.settings.PendingTTL),
		QuestionSeconds:  questionSeconds,
		CurrentQuestion:  domain.QuestionIndex{-1, len(quiz.Questions)},
		NextCheckSeconds: ceilSeconds(s.settings.PendingTTL),
	}
	roster := domain.Roster{Players: []domain.Player{{
		Token:   uuid.NewString(),
		Name:    req.UserName,
		Role:    domain.RoleCommander,
		Answers: []domain.Answer{},
	}}}

	ttl := s.retention(state, now)
	if err := s.sessions.saveState(ctx, state, ttl); err != nil {
		return domain.PlayerView{}, err
	}
	if err := s.sessions.saveRoster(ctx, state.Code, roster, ttl); err != nil {
		return domain.PlayerView{}, err
	}

	s.logger.Info("quiz session created",
		zap.Int("code", state.Code),
		zap.String("quiz_id", quiz.ID),
		zap.Int("question_seconds", questionSeconds),
	)
	return view(state, roster, 0), nil
}

// JoinQuiz adds a new player to the session.
func (s *QuizService) JoinQuiz(ctx context.Context, req JoinRequest) (domain.PlayerView, error) {
	if req.UserName == "" {
		return domain.PlayerView{}, domain.ErrEmptyName
	}

	now := s.now()
	sess, err := s.open(ctx, req.Code, now)
	if err != nil {
		return domain.PlayerView{}, err
	}
	if sess.roster.HasName(req.UserName) {
		return domain.PlayerView{}, domain.ErrNameTaken
	}

	sess.roster.Players = append(sess.roster.Players, domain.Player{
		Token:   uuid.NewString(),
		Name:    req.UserName,
		Role:    domain.RolePlayer,
		Answers: []domain.Answer{},
	})
	if err := s.sessions.saveRoster(ctx, req.Code, sess.roster, s.retention(sess.state, now)); err != nil {
		return domain.PlayerView{}, err
	}

	s.logger.Info("player joined", zap.Int("code", req.Code), zap.Int("players", len(sess.roster.Players)))
	return view(sess.state, sess.roster, len(sess.roster.Players)-1), nil
}

// CheckStatus is the polling operation: it returns the advanced session as
// seen by the caller.
func (s *QuizService) CheckStatus(ctx context.Context, req StatusRequest) (domain.PlayerView, error) {
	sess, err := s.open(ctx, req.Code, s.now())
	if err != nil {
		return domain.PlayerView{}, err
	}
	player := sess.roster.Find(req.Token)
	if player < 0 {
		return domain.PlayerView{}, domain.ErrUnknownToken
	}
	return view(sess.state, sess.roster, player), nil
}

// ScheduleQuiz sets the start time. Only the commander may schedule, and only
// before the session starts; scheduling again replaces the previous start time.
// The session keeps its expiry: a start planned past it never happens.
func (s *QuizService) ScheduleQuiz(ctx context.Context, req ScheduleRequest) (domain.PlayerView, error) {
	now := s.now()
	sess, err := s.open(ctx, req.Code, now)
	if err != nil {
		return domain.PlayerView{}, err
	}
	player := sess.roster.Find(req.Token)
	if player < 0 {
		return domain.PlayerView{}, domain.ErrUnknownToken
	}
	if sess.roster.Players[player].Role != domain.RoleCommander {
		return domain.PlayerView{}, domain.ErrNotCommander
	}
	if sess.state.Status != domain.StatusPending && sess.state.Status != domain.StatusScheduled {
		return domain.PlayerView{}, domain.ErrSessionNotSchedulable
	}
	if req.DelaySeconds < 0 || int64(req.DelaySeconds) > maxDurationSeconds-runningSeconds(sess.state) {
		return domain.PlayerView{}, domain.ErrInvalidDelay
	}

	startsAt := now.Add(time.Duration(req.DelaySeconds) * time.Second)
	scheduled := sess.state
	scheduled.Status = domain.StatusScheduled
	scheduled.StartsAt = &startsAt
	state := Advance(scheduled, sess.quiz, now)

	if err := s.commit(ctx, scheduled, state, sess.roster, sess.quiz, now); err != nil {
		return domain.PlayerView{}, err
	}
	if err := s.sessions.extendRoster(ctx, req.Code, s.retention(state, now)); err != nil {
		return domain.PlayerView{}, err
	}

	s.logger.Info("quiz session scheduled",
		zap.Int("code", req.Code),
		zap.Time("starts_at", startsAt),
		zap.String("status", string(state.Status)),
	)
	return view(state, sess.roster, player), nil
}

// SubmitAnswer records the caller's answer to the current question. A player
// may change the answer while the question is still current.
func (s *QuizService) SubmitAnswer(ctx context.Context, req AnswerRequest) (domain.PlayerView, error) {
	now := s.now()
	sess, err := s.open(ctx, req.Code, now)
	if err != nil {
		return domain.PlayerView{}, err
	}
	if sess.state.Status != domain.StatusStarted {
		return domain.PlayerView{}, domain.ErrSessionNotRunning
	}
	player := sess.roster.Find(req.Token)
	if player < 0 {
		return domain.PlayerView{}, domain.ErrUnknownToken
	}
	if req.QuestionIndex != sess.state.CurrentQuestion.Index() {
		return domain.PlayerView{}, domain.ErrStaleQuestion
	}
	question := sess.quiz.Questions[req.QuestionIndex]
	for _, choice := range req.Answer {
		if choice < 0 || choice >= len(question.Choices) {
			return domain.PlayerView{}, domain.ErrInvalidChoice
		}
	}

	p := &sess.roster.Players[player]
	for len(p.Answers) < len(sess.quiz.Questions) {
		p.Answers = append(p.Answers, domain.Answer{Selected: []int{}})
	}
	selected := make([]int, len(req.Answer))
	copy(selected, req.Answer)
	p.Answers[req.QuestionIndex] = domain.Answer{
		Selected: selected,
		Seconds:  secondsIntoQuestion(sess.state, now),
		Answered: true,
	}

	if err := s.sessions.saveRoster(ctx, req.Code, sess.roster, s.retention(sess.state, now)); err != nil {
		return domain.PlayerView{}, err
	}
	return view(sess.state, sess.roster, player), nil
}

// Results returns the final ranking together with the full quiz definition.
// ok is false until the session has finished.
func (s *QuizService) Results(ctx context.Context, code int) (domain.Results, domain.Quiz, bool, error) {
	results, found, err := s.sessions.loadResults(ctx, code)
	if err != nil {
		return domain.Results{}, domain.Quiz{}, false, err
	}
	if !found {
		// a session that ran out without being polled is scored here
		sess, err := s.open(ctx, code, s.now())
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Results{}, domain.Quiz{}, false, nil
		}
		if err != nil {
			return domain.Results{}, domain.Quiz{}, false, err
		}
		if sess.state.Status != domain.StatusFinished {
			return domain.Results{}, domain.Quiz{}, false, nil
		}
		results, found, err = s.sessions.loadResults(ctx, code)
		if err != nil || !found {
			return domain.Results{}, domain.Quiz{}, false, err
		}
	}

	quiz, err := s.quizzes.GetQuiz(ctx, results.QuizID)
	if err != nil {
		return domain.Results{}, domain.Quiz{}, false, err
	}
	return results, quiz, true, nil
}

type session struct {
	state  domain.SessionState
	roster domain.Roster
	quiz   domain.Quiz
}

// open loads a session and advances it to now, persisting any transition.
func (s *QuizService) open(ctx context.Context, code int, now time.Time) (session, error) {
	state, roster, err := s.sessions.load(ctx, code)
	if err != nil {
		return session{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, state.QuizID)
	if err != nil {
		return session{}, err
	}

	advanced := Advance(state, quiz, now)
	if transitioned(state, advanced) {
		if err := s.commit(ctx, state, advanced, roster, quiz, now); err != nil {
			return session{}, err
		}
	}
	return session{state: advanced, roster: roster, quiz: quiz}, nil
}

// commit writes an advanced state. Entering FINISHED computes and stores the
// results first, so a FINISHED state is never readable without them.
func (s *QuizService) commit(ctx context.Context, before, after domain.SessionState, roster domain.Roster, quiz domain.Quiz, now time.Time) error {
	if after.Status == domain.StatusFinished && before.Status != domain.StatusFinished {
		var startedAt time.Time
		if after.StartsAt != nil {
			startedAt = *after.StartsAt
		}
		results := Rank(quiz, roster, startedAt)
		if err := s.sessions.saveResults(ctx, after.Code, results, s.settings.StartedTTL); err != nil {
			return err
		}
		s.logger.Info("quiz results computed", zap.Int("code", after.Code), zap.Int("players", len(results.Players)))
	}
	if err := s.sessions.saveState(ctx, after, s.retention(after, now)); err != nil {
		return err
	}
	if transitioned(before, after) {
		s.logger.Info("quiz session advanced",
			zap.Int("code", after.Code),
			zap.String("from", string(before.Status)),
			zap.String("to", string(after.Status)),
			zap.Int("question", after.CurrentQuestion.Index()),
		)
	}
	return nil
}

// retention is the store TTL for a session's keys. Live sessions are kept
// until their expiry or the planned end of the run, whichever is later, plus
// StartedTTL. Terminal ones are kept for StartedTTL.
func (s *QuizService) retention(state domain.SessionState, now time.Time) time.Duration {
	if state.Status.Terminal() {
		return s.settings.StartedTTL
	}
	end := state.ExpiresAt
	if state.StartsAt != nil {
		planned := state.StartsAt.Add(time.Duration(runningSeconds(state)) * time.Second)
		if planned.After(end) {
			end = planned
		}
	}
	remaining := end.Sub(now)
	if remaining <= 0 {
		return s.settings.StartedTTL
	}
	if remaining > math.MaxInt64-s.settings.StartedTTL {
		return math.MaxInt64
	}
	return remaining + s.settings.StartedTTL
}

// maxDurationSeconds is the largest whole number of seconds a time.Duration holds.
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// runningSeconds is how long the questions take once the session starts.
func runningSeconds(state domain.SessionState) int64 {
	return int64(state.CurrentQuestion.Total()) * int64(state.QuestionSeconds)
}

// newCode draws a random session code. Collisions with a live session are not
// detected.
func (s *QuizService) newCode() int {
	space := s.settings.CodeSpace
	if space <= 0 {
		space = DefaultSettings().CodeSpace
	}
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.Intn(space)
}

func view(state domain.SessionState, roster domain.Roster, player int) domain.PlayerView {
	return domain.PlayerView{
		State:    state,
		User:     roster.Players[player],
		AllNames: roster.Names(),
	}
}
