package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"quizless-service/internal/domain"
)

const typeError = "error"

// WSHandler serves quiz operations over a websocket. Every inbound message
// gets exactly one reply; the server never pushes on its own, so clients keep
// polling quiz-check-status as they would over HTTP.
type WSHandler struct {
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
}

func NewWSHandler(dispatcher *Dispatcher) *WSHandler {
	return &WSHandler{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Payload any    `json:"payload"`
}

// ServeWS upgrades the request and answers messages until the client hangs up.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := logger(r.Context())
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("ws read error", zap.Error(err))
			}
			return
		}

		reply := outboundMessage{Type: inbound.Type, ID: inbound.ID}
		result, err := h.dispatcher.Invoke(r.Context(), inbound.Type, inbound.Payload)
		if err != nil {
			kind := domain.KindOf(err)
			detail := err.Error()
			if kind == domain.KindInternal {
				log.Error("ws operation failed", zap.String("type", inbound.Type), zap.Error(err))
				detail = "internal error"
			}
			reply = outboundMessage{Type: typeError, ID: inbound.ID, Payload: errorResponse{Code: kind, Detail: detail}}
		} else {
			reply.Payload = result
		}

		if err := conn.WriteJSON(reply); err != nil {
			log.Warn("ws write error", zap.Error(err))
			return
		}
	}
}
