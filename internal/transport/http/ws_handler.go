package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"econquest-progress-service/internal/app"
	"econquest-progress-service/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service  *app.ProgressionService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ProgressionService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type activityPayload struct {
	ActivityID int64 `json:"activityId"`
}

type submitPayload struct {
	ActivityID int64             `json:"activityId"`
	Answers    map[string]string `json:"answers"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and serves view, submit and result messages for one student.
// Messages are handled in order, so a result request always sees the submission sent before it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "missing or invalid userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := h.logger.With(zap.Int64("user_id", userID))
	logger.Debug("ws connected")
	defer logger.Debug("ws disconnected")

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		reply := h.dispatch(r, userID, inbound)
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("ws write error", zap.Error(err))
			return
		}
	}
}

func (h *WSHandler) dispatch(r *http.Request, userID int64, inbound inboundMessage) outboundMessage {
	ctx := r.Context()
	switch inbound.Type {
	case "view":
		var payload activityPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid view payload")
		}
		view, err := h.service.LoadAttemptView(ctx, userID, payload.ActivityID)
		if err != nil {
			return h.failure(err)
		}
		return outboundMessage{Type: "attemptView", Payload: view}
	case "submit":
		var payload submitPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid submit payload")
		}
		result, err := h.service.GradeAttempt(ctx, userID, payload.ActivityID, payload.Answers)
		if errors.Is(err, domain.ErrAttemptLimitReached) {
			return outboundMessage{Type: "blocked", Payload: activityPayload{ActivityID: payload.ActivityID}}
		}
		if err != nil {
			return h.failure(err)
		}
		return outboundMessage{Type: "result", Payload: result}
	case "result":
		var payload activityPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid result payload")
		}
		result, ok, err := h.service.ConsumeLastResult(ctx, userID, payload.ActivityID)
		if err != nil {
			return h.failure(err)
		}
		if !ok {
			return outboundMessage{Type: "noResult", Payload: activityPayload{ActivityID: payload.ActivityID}}
		}
		return outboundMessage{Type: "result", Payload: result}
	default:
		return errorMessage("unsupported message type")
	}
}

func (h *WSHandler) failure(err error) outboundMessage {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("ws request failed", zap.Error(err))
	}
	return errorMessage(message)
}

func errorMessage(message string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: message}}
}
