package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
	"quizless-service/internal/domain"
)

type errorResponse struct {
	Code   domain.Kind `json:"code"`
	Detail string      `json:"detail"`
}

// requestBody decodes a JSON body. An empty body decodes to nil.
func requestBody(r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	err := json.NewDecoder(r.Body).Decode(&raw)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return raw, err
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger(r.Context()).Error("failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	detail := err.Error()
	if kind == domain.KindInternal {
		logger(r.Context()).Error("request failed", zap.Error(err))
		detail = "internal error"
	} else {
		logger(r.Context()).Warn("request rejected", zap.String("kind", string(kind)), zap.Error(err))
	}
	writeJSON(w, r, status, errorResponse{Code: kind, Detail: detail})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
