package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/maggielii/heartwaves/internal/model"
	"github.com/maggielii/heartwaves/internal/screening"
	"github.com/maggielii/heartwaves/internal/service"
	"github.com/maggielii/heartwaves/internal/transport/rest/middleware"
)

// ScreeningHandler handles screening endpoints
type ScreeningHandler struct {
	screeningSvc *service.ScreeningService
	surveySvc    *service.SurveyService
	authSvc      *service.AuthService
}

// NewScreeningHandler creates a new screening handler
func NewScreeningHandler(screeningSvc *service.ScreeningService, surveySvc *service.SurveyService, authSvc *service.AuthService) *ScreeningHandler {
	return &ScreeningHandler{
		screeningSvc: screeningSvc,
		surveySvc:    surveySvc,
		authSvc:      authSvc,
	}
}

// CreateScreeningRequest is the request body for running a screening
type CreateScreeningRequest struct {
	Daily       []model.DailyMetric     `json:"daily"`
	Age         *float64                `json:"age,omitempty"`
	Orthostatic *model.OrthostaticInput `json:"orthostatic,omitempty"`
}

// SubmitAnswersRequest is the request body for questionnaire answers
type SubmitAnswersRequest struct {
	Answers map[string]string `json:"answers"`
}

// Create handles POST /v1/screenings
func (h *ScreeningHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateScreeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ortho := req.Orthostatic
	if ortho == nil {
		ortho = &model.OrthostaticInput{}
	}

	session, err := h.screeningSvc.Screen(r.Context(), req.Daily, req.Age, ortho)
	if err != nil {
		if errors.Is(err, screening.ErrEmptySeries) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.authSvc.IssueSessionToken(session.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"sessionId": session.ID,
		"token":     token,
		"screening": session.Screening,
	})
}

// Get handles GET /v1/screenings/{sessionId}
func (h *ScreeningHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	session, err := h.screeningSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// SubmitAnswers handles POST /v1/screenings/{sessionId}/answers
func (h *ScreeningHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubmitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.surveySvc.SubmitAnswers(r.Context(), sessionID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, service.ErrNoQuestionnaire):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": session.ID,
		"symptoms":  session.Symptoms,
		"screening": session.Screening,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
