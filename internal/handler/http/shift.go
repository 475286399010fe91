package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/hcmclinic/triage-shift-backend-go/internal/domain/shift"
	"github.com/hcmclinic/triage-shift-backend-go/internal/handler/http/response"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/jwt"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/sse"
)

type ShiftHandler interface {
	GetStatus(w http.ResponseWriter, r *http.Request)
	Start(w http.ResponseWriter, r *http.Request)
	Extend(w http.ResponseWriter, r *http.Request)
	Stop(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	ResumeBreak(w http.ResponseWriter, r *http.Request)
	ListMySessions(w http.ResponseWriter, r *http.Request)

	// Assignment management
	Assign(w http.ResponseWriter, r *http.Request)
	GetMyAssignment(w http.ResponseWriter, r *http.Request)
	GetAssignment(w http.ResponseWriter, r *http.Request)

	// SSE
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.Service
	jwtService   jwt.Service
	hub          *sse.Hub
}

func NewShiftHandler(shiftService shift.Service, jwtService jwt.Service, hub *sse.Hub) ShiftHandler {
	return &shiftHandlerImpl{
		shiftService: shiftService,
		jwtService:   jwtService,
		hub:          hub,
	}
}

// getCaregiverIDFromContext extracts caregiver_id from JWT context
func getCaregiverIDFromContext(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if caregiverID, ok := claims["caregiver_id"].(string); ok {
		return caregiverID
	}
	return ""
}

// GetStatus implements ShiftHandler.
func (h *shiftHandlerImpl) GetStatus(w http.ResponseWriter, r *http.Request) {
	caregiverID := getCaregiverIDFromContext(r)
	if caregiverID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.shiftService.GetStatus(r.Context(), caregiverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Start implements ShiftHandler.
func (h *shiftHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	caregiverID := getCaregiverIDFromContext(r)
	if caregiverID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.shiftService.StartShift(r.Context(), caregiverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift started", result)
}

// Extend implements ShiftHandler.
func (h *shiftHandlerImpl) Extend(w http.ResponseWriter, r *http.Request) {
	caregiverID := getCaregiverIDFromContext(r)
	if caregiverID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	// Body is optional; an absent or invalid minutes value falls back to
	// the default extension.
	var req shift.ExtendShiftRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("Failed to decode extend request", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	result, err := h.shiftService.ExtendShift(r.Context(), caregiverID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift extended", result)
}

// Stop implements ShiftHandler.
func (h *shiftHandlerImpl) Stop(w http.ResponseWriter, r *http.Request) {
	caregiverID := getCaregiverIDFromContext(r)
	if caregiverID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.shiftService.StopShift(r.Context(), caregiverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift stopped", result)
}

// StartBreak implements ShiftHandler.
func (h *shiftHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	caregiverID := getCaregiverIDFromContext(r)
	if caregiverID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.shiftService.StartBreak(r.Context(), caregiverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break started", result)
}

// ResumeBreak implements ShiftHandler.
func (h *shiftHandlerImpl) ResumeBreak(w http.ResponseWriter, r *http.Request) {
	caregiverID := getCaregiverIDFromContext(r)
	if caregiverID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.shiftService.ResumeBreak(r.Context(), caregiverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break resumed", result)
}

// ListMySessions implements ShiftHandler.
func (h *shiftHandlerImpl) ListMySessions(w http.ResponseWriter, r *http.Request) {
	caregiverID := getCaregiverIDFromContext(r)
	if caregiverID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	filter := shift.SessionFilter{}

	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	filter.Page = page

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}
	filter.Limit = limit

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.shiftService.ListMySessions(r.Context(), caregiverID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Assign implements ShiftHandler.
func (h *shiftHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	var req shift.AssignShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.shiftService.AssignShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift assigned", result)
}

// GetMyAssignment implements ShiftHandler.
func (h *shiftHandlerImpl) GetMyAssignment(w http.ResponseWriter, r *http.Request) {
	caregiverID := getCaregiverIDFromContext(r)
	if caregiverID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.shiftService.GetAssignment(r.Context(), caregiverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetAssignment implements ShiftHandler.
func (h *shiftHandlerImpl) GetAssignment(w http.ResponseWriter, r *http.Request) {
	caregiverID := chi.URLParam(r, "caregiverID")

	result, err := h.shiftService.GetAssignment(r.Context(), caregiverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSSEToken implements ShiftHandler.
func (h *shiftHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	caregiverID := getCaregiverIDFromContext(r)
	if caregiverID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(caregiverID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, map[string]interface{}{
		"token":      token,
		"expires_in": expiresIn,
	})
}

// Stream implements ShiftHandler.
func (h *shiftHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	caregiverID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(caregiverID)
	defer cleanup()

	// Send initial connection event
	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"caregiver_id\":\"%s\"}\n\n", caregiverID)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
