package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/maggielii/heartwaves/internal/model"
	"github.com/maggielii/heartwaves/internal/screening"
)

var ErrNoQuestionnaire = errors.New("session has no questionnaire to answer")

// SurveyService folds follow-up questionnaire answers back into a stored
// screening result.
type SurveyService struct {
	screenings *ScreeningService
	logger     *zap.Logger
}

// NewSurveyService creates a new survey service
func NewSurveyService(screenings *ScreeningService, logger *zap.Logger) *SurveyService {
	return &SurveyService{screenings: screenings, logger: logger}
}

// SubmitAnswers applies questionnaire answers to the session's screening
// result and persists the updated session. Answers that do not match a
// served question id, or whose value is not exactly one of that question's
// options, are dropped.
func (s *SurveyService) SubmitAnswers(ctx context.Context, sessionID string, answers map[string]string) (*model.Session, error) {
	session, err := s.screenings.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Screening == nil || len(session.Screening.Questionnaire) == 0 {
		return nil, ErrNoQuestionnaire
	}

	kept := sanitizeAnswers(session.Screening.Questionnaire, answers)
	now := time.Now().UTC()
	session.Symptoms = model.Symptoms{Answers: kept, UpdatedAt: &now}

	screening.NormalizeProfile(session.Screening)
	screening.ApplySurvey(session.Screening, &session.Symptoms)
	screening.NormalizeProfile(session.Screening)

	if err := s.screenings.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	alignment := ""
	if session.Screening.SurveyAssessment != nil {
		alignment = string(session.Screening.SurveyAssessment.Alignment)
	}
	s.logger.Info("survey answers applied",
		zap.String("session_id", session.ID),
		zap.Int("answered", len(kept)),
		zap.String("alignment", alignment),
		zap.String("status", string(session.Screening.Status)))

	return session, nil
}

func sanitizeAnswers(questions []model.Question, answers map[string]string) []model.SurveyAnswer {
	kept := make([]model.SurveyAnswer, 0, len(answers))
	for _, q := range questions {
		value, ok := answers[q.ID]
		if !ok || !q.HasOption(value) {
			continue
		}
		kept = append(kept, model.SurveyAnswer{ID: q.ID, Prompt: q.Prompt, Answer: value})
	}
	return kept
}
