package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"quizless-service/internal/app"
	"quizless-service/internal/domain"
)

type invokeRequest struct {
	Operation string          `json:"requested_operation"`
	Payload   json.RawMessage `json:"payload"`
}

type handlers struct {
	dispatcher *Dispatcher
}

// NewRouter exposes the quiz service over REST, a single invoke endpoint and
// a websocket channel. All three go through the same Dispatcher.
func NewRouter(service *app.QuizService, log *zap.Logger) http.Handler {
	dispatcher := NewDispatcher(service)
	h := handlers{dispatcher: dispatcher}
	ws := NewWSHandler(dispatcher)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(correlationID(log))
	r.Use(requestLogger)
	r.Use(cors.AllowAll().Handler)
	r.Use(bearerToken)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/quiz-topics", h.operation(OpTopics))
		r.Post("/quiz-start", h.operation(OpStart))
		r.Post("/quiz-join", h.operation(OpJoin))
		r.Post("/quiz-check-status", h.operation(OpCheckStatus))
		r.Post("/quiz-schedule", h.operation(OpSchedule))
		r.Post("/quiz-answer", h.operation(OpAnswer))
		r.Get("/quiz-results/{code}", h.results)
		r.Post("/invoke", h.invoke)
	})
	return r
}

func (h handlers) operation(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := requestBody(r)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: malformed body: %v", domain.ErrInvalidArgument, err))
			return
		}
		h.respond(w, r, name, payload)
	}
}

func (h handlers) results(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: quiz code must be a number", domain.ErrInvalidArgument))
		return
	}
	h.respond(w, r, OpResults, json.RawMessage(strconv.Itoa(code)))
}

func (h handlers) invoke(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed body: %v", domain.ErrInvalidArgument, err))
		return
	}
	h.respond(w, r, req.Operation, req.Payload)
}

func (h handlers) respond(w http.ResponseWriter, r *http.Request, name string, payload json.RawMessage) {
	result, err := h.dispatcher.Invoke(r.Context(), name, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
