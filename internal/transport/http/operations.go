package http

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"quizless-service/internal/app"
	"quizless-service/internal/domain"
)

// Operation names shared by the invoke endpoint and the websocket channel.
const (
	OpTopics      = "quiz-topics"
	OpStart       = "quiz-start"
	OpJoin        = "quiz-join"
	OpCheckStatus = "quiz-check-status"
	OpSchedule    = "quiz-schedule"
	OpAnswer      = "quiz-answer"
	OpResults     = "quiz-results"
)

var errResultsNotAvailable = fmt.Errorf("quiz results %w", domain.ErrNotFound)

type operation func(ctx context.Context, payload json.RawMessage) (any, error)

// ResultsResponse pairs the ranking with the full quiz, correct answers included.
type ResultsResponse struct {
	QuizResults domain.Results `json:"quiz_results"`
	QuizData    domain.Quiz    `json:"quiz_data"`
}

type resultsPayload struct {
	Code int `json:"quiz_code"`
}

// Dispatcher maps operation names onto the quiz service.
type Dispatcher struct {
	ops map[string]operation
}

func NewDispatcher(service *app.QuizService) *Dispatcher {
	return &Dispatcher{ops: map[string]operation{
		OpTopics: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return service.ListTopics(ctx)
		},
		OpStart: func(ctx context.Context, payload json.RawMessage) (any, error) {
			req, err := decode[app.StartRequest](payload)
			if err != nil {
				return nil, err
			}
			return service.StartQuiz(ctx, req)
		},
		OpJoin: func(ctx context.Context, payload json.RawMessage) (any, error) {
			req, err := decode[app.JoinRequest](payload)
			if err != nil {
				return nil, err
			}
			return service.JoinQuiz(ctx, req)
		},
		OpCheckStatus: func(ctx context.Context, payload json.RawMessage) (any, error) {
			req, err := decode[app.StatusRequest](payload)
			if err != nil {
				return nil, err
			}
			req.Token = tokenOr(ctx, req.Token)
			return service.CheckStatus(ctx, req)
		},
		OpSchedule: func(ctx context.Context, payload json.RawMessage) (any, error) {
			req, err := decode[app.ScheduleRequest](payload)
			if err != nil {
				return nil, err
			}
			req.Token = tokenOr(ctx, req.Token)
			return service.ScheduleQuiz(ctx, req)
		},
		OpAnswer: func(ctx context.Context, payload json.RawMessage) (any, error) {
			req, err := decode[app.AnswerRequest](payload)
			if err != nil {
				return nil, err
			}
			req.Token = tokenOr(ctx, req.Token)
			return service.SubmitAnswer(ctx, req)
		},
		OpResults: func(ctx context.Context, payload json.RawMessage) (any, error) {
			code, err := decodeCode(payload)
			if err != nil {
				return nil, err
			}
			results, quiz, ok, err := service.Results(ctx, code)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errResultsNotAvailable
			}
			return ResultsResponse{QuizResults: results, QuizData: quiz}, nil
		},
	}}
}

// Invoke runs the named operation with a JSON payload.
func (d *Dispatcher) Invoke(ctx context.Context, name string, payload json.RawMessage) (any, error) {
	op, ok := d.ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: operation %q is unknown, expected one of: %s",
			domain.ErrInvalidArgument, name, strings.Join(d.Names(), ", "))
	}
	return op(ctx, payload)
}

// Names lists the supported operations in sorted order.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.ops))
	for name := range d.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decode treats an absent payload as the zero request.
func decode[T any](payload json.RawMessage) (T, error) {
	var req T
	if len(payload) == 0 || string(payload) == "null" {
		return req, nil
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return req, fmt.Errorf("%w: malformed payload: %v", domain.ErrInvalidArgument, err)
	}
	return req, nil
}

// decodeCode accepts either {"quiz_code": n} or a bare n.
func decodeCode(payload json.RawMessage) (int, error) {
	var code int
	if err := json.Unmarshal(payload, &code); err == nil {
		return code, nil
	}
	req, err := decode[resultsPayload](payload)
	if err != nil {
		return 0, err
	}
	return req.Code, nil
}
