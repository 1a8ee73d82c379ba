package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"econquest-progress-service/internal/app"
	"econquest-progress-service/internal/domain"
	"econquest-progress-service/internal/metrics"
	"go.uber.org/zap"
)

// UserHeader carries the authenticated student's ID, set by the session layer in front of this service.
const UserHeader = "X-User-ID"

// FallbackPath is where the result view sends students when there is nothing to show.
const FallbackPath = "/dashboard"

// Handler serves the JSON API for modules, attempts, results and profiles.
type Handler struct {
	service *app.ProgressionService
	modules *app.ModuleService
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewHandler(service *app.ProgressionService, modules *app.ModuleService, logger *zap.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, modules: modules, logger: logger, metrics: m}
}

type submitRequest struct {
	Answers map[string]string `json:"answers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Register mounts the API routes on mux, each wrapped with request logging and metrics.
func (h *Handler) Register(mux *http.ServeMux) {
	h.route(mux, "GET /activities/{id}", h.getAttemptView)
	h.route(mux, "POST /activities/{id}/attempts", h.submitAttempt)
	h.route(mux, "GET /activities/{id}/result", h.getResult)
	h.route(mux, "GET /profile", h.getProfile)
	h.route(mux, "GET /modules", h.listModules)
	h.route(mux, "GET /modules/{id}", h.getModule)
}

func (h *Handler) route(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.Handle(pattern, Instrument(pattern, h.logger, h.metrics, fn))
}

func (h *Handler) getAttemptView(w http.ResponseWriter, r *http.Request) {
	userID, activityID, ok := h.identify(w, r)
	if !ok {
		return
	}
	view, err := h.service.LoadAttemptView(r.Context(), userID, activityID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	userID, activityID, ok := h.identify(w, r)
	if !ok {
		return
	}
	var req submitRequest
	// an empty body submits no answers
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	result, err := h.service.GradeAttempt(r.Context(), userID, activityID, req.Answers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) getResult(w http.ResponseWriter, r *http.Request) {
	userID, activityID, ok := h.identify(w, r)
	if !ok {
		return
	}
	result, found, err := h.service.ConsumeLastResult(r.Context(), userID, activityID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		http.Redirect(w, r, FallbackPath, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	profile, err := h.service.EnsureProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) listModules(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	modules, err := h.modules.ListModules(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, modules)
}

func (h *Handler) getModule(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.user(w, r); !ok {
		return
	}
	moduleID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || moduleID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid module id"})
		return
	}
	detail, err := h.modules.ModuleDetail(r.Context(), moduleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) identify(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := h.user(w, r)
	if !ok {
		return 0, 0, false
	}
	activityID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || activityID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid activity id"})
		return 0, 0, false
	}
	return userID, activityID, true
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.Header.Get(UserHeader), 10, 64)
	if err != nil || userID <= 0 {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid " + UserHeader})
		return 0, false
	}
	return userID, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps service errors to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		return http.StatusNotFound, "activity not found"
	case errors.Is(err, domain.ErrModuleNotFound):
		return http.StatusNotFound, "module not found"
	case errors.Is(err, domain.ErrAttemptLimitReached):
		return http.StatusConflict, "attempt limit reached"
	case errors.Is(err, domain.ErrInvalidUser):
		return http.StatusBadRequest, "invalid user"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
