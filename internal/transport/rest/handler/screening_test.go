package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/maggielii/heartwaves/internal/model"
	"github.com/maggielii/heartwaves/internal/service"
	"github.com/maggielii/heartwaves/internal/transport/rest"
)

type memSessionRepo struct {
	sessions map[string]*model.Session
}

func (r *memSessionRepo) Create(_ context.Context, session *model.Session) error {
	r.sessions[session.ID] = session
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	return r.sessions[id], nil
}

func (r *memSessionRepo) Update(_ context.Context, session *model.Session) error {
	r.sessions[session.ID] = session
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

type memSessionCache struct {
	sessions map[string]*model.Session
}

func (c *memSessionCache) Set(_ context.Context, session *model.Session) error {
	c.sessions[session.ID] = session
	return nil
}

func (c *memSessionCache) Get(_ context.Context, id string) (*model.Session, error) {
	return c.sessions[id], nil
}

func (c *memSessionCache) Delete(_ context.Context, id string) error {
	delete(c.sessions, id)
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	authSvc := service.NewAuthService("test-secret", time.Hour)
	screeningSvc := service.NewScreeningService(
		&memSessionRepo{sessions: map[string]*model.Session{}},
		&memSessionCache{sessions: map[string]*model.Session{}},
		authSvc,
		filepath.Join(t.TempDir(), "model.json"),
		logger,
	)
	surveySvc := service.NewSurveyService(screeningSvc, logger)

	return rest.NewRouter(&rest.Container{
		AuthService:      authSvc,
		ScreeningService: screeningSvc,
		SurveyService:    surveySvc,
	})
}

// followupSeries trends resting HR well above its own 23-day baseline so the
// screening lands on needs_followup with a POTS-like questionnaire.
func followupSeries() []map[string]interface{} {
	daily := make([]map[string]interface{}, 0, 30)
	for i := 0; i < 30; i++ {
		rhr := 60.0
		if i >= 23 {
			rhr = 75.0
		}
		daily = append(daily, map[string]interface{}{
			"date":            fmt.Sprintf("2026-08-%02d", i+1),
			"resting_hr_mean": rhr,
			"hrv_sdnn_mean":   50.0,
			"stand_minutes":   300.0,
			"active_minutes":  30.0,
		})
	}
	return daily
}

func createScreening(t *testing.T, router http.Handler) (sessionID, token string) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"daily": followupSeries()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/screenings", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		SessionID string                `json:"sessionId"`
		Token     string                `json:"token"`
		Screening model.ScreeningResult `json:"screening"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, model.StatusNeedsFollowup, resp.Screening.Status)
	return resp.SessionID, resp.Token
}

func TestSubmitAnswersResponseCarriesSymptoms(t *testing.T) {
	router := newTestRouter(t)
	sessionID, token := createScreening(t, router)

	body, err := json.Marshal(map[string]interface{}{
		"answers": map[string]string{
			"orthostatic":   "yes",
			"tachy_upright": "YES",
			"made_up":       "yes",
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/screenings/"+sessionID+"/answers", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SessionID string                `json:"sessionId"`
		Symptoms  model.Symptoms        `json:"symptoms"`
		Screening model.ScreeningResult `json:"screening"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, sessionID, resp.SessionID)

	// The symptoms record is the client's only view of which answers
	// survived validation: the case-mismatched and unknown ones are gone.
	require.Len(t, resp.Symptoms.Answers, 1)
	assert.Equal(t, "orthostatic", resp.Symptoms.Answers[0].ID)
	assert.Equal(t, "yes", resp.Symptoms.Answers[0].Answer)
	require.NotNil(t, resp.Symptoms.UpdatedAt)

	require.NotNil(t, resp.Screening.SurveyAssessment)
	assert.Equal(t, 1, resp.Screening.SurveyAssessment.AnsweredCount)
}

func TestGetScreeningRequiresMatchingToken(t *testing.T) {
	router := newTestRouter(t)
	sessionID, token := createScreening(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/screenings/"+sessionID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/screenings/"+sessionID, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/screenings/someone-else", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
