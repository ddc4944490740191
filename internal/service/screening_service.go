package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/maggielii/heartwaves/internal/cache"
	"github.com/maggielii/heartwaves/internal/model"
	"github.com/maggielii/heartwaves/internal/repository"
	"github.com/maggielii/heartwaves/internal/screening"
)

var ErrSessionNotFound = errors.New("session not found")

// ScreeningService runs the screening pipeline for one imported series:
// rule-based baseline, independent cluster scoring, reconciliation, then
// session persistence. Stages run strictly in sequence; nothing here is
// shared between concurrent requests.
type ScreeningService struct {
	sessions  repository.SessionRepo
	sessCache cache.SessionCache
	auth      *AuthService
	modelPath string
	logger    *zap.Logger
}

// NewScreeningService creates a new screening service
func NewScreeningService(
	sessions repository.SessionRepo,
	sessCache cache.SessionCache,
	auth *AuthService,
	modelPath string,
	logger *zap.Logger,
) *ScreeningService {
	return &ScreeningService{
		sessions:  sessions,
		sessCache: sessCache,
		auth:      auth,
		modelPath: modelPath,
		logger:    logger,
	}
}

// Screen runs the full pipeline and persists the resulting session.
func (s *ScreeningService) Screen(ctx context.Context, daily []model.DailyMetric, age *float64, ortho *model.OrthostaticInput) (*model.Session, error) {
	if ortho.IsEmpty() {
		ortho = nil
	} else {
		ortho.FillDeltas()
	}

	result, err := screening.RunBaseline(daily)
	if err != nil {
		return nil, err
	}

	clusterResult := screening.ScoreClustering(daily, age, ortho, s.modelPath)
	if clusterResult == nil {
		s.logger.Info("clustering model unavailable, using rule-based result only",
			zap.String("model_path", s.modelPath))
	} else if clusterResult.Error != "" {
		s.logger.Warn("clustering scoring failed",
			zap.String("model_path", s.modelPath),
			zap.String("error", clusterResult.Error))
	}
	screening.MergeClusterResult(result, clusterResult)
	screening.NormalizeProfile(result)

	session := &model.Session{
		ID:          s.auth.NewSessionID(),
		Daily:       daily,
		Age:         age,
		Orthostatic: ortho,
		Screening:   result,
		Symptoms:    model.Symptoms{Answers: []model.SurveyAnswer{}},
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	if err := s.sessCache.Set(ctx, session); err != nil {
		s.logger.Warn("failed to cache session", zap.String("session_id", session.ID), zap.Error(err))
	}

	s.logger.Info("screening completed",
		zap.String("session_id", session.ID),
		zap.String("status", string(result.Status)),
		zap.String("phenotype_hint", string(result.PhenotypeHint)),
		zap.String("confidence", string(result.PhenotypeConfidence)),
		zap.Int("signals", len(result.Signals)))

	return session, nil
}

// GetSession loads a session, preferring the cache.
func (s *ScreeningService) GetSession(ctx context.Context, id string) (*model.Session, error) {
	if cached, err := s.sessCache.Get(ctx, id); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("session cache read failed", zap.String("session_id", id), zap.Error(err))
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// SaveSession persists an updated session and refreshes the cache.
func (s *ScreeningService) SaveSession(ctx context.Context, session *model.Session) error {
	if err := s.sessions.Update(ctx, session); err != nil {
		return err
	}
	if err := s.sessCache.Set(ctx, session); err != nil {
		s.logger.Warn("failed to refresh session cache", zap.String("session_id", session.ID), zap.Error(err))
	}
	return nil
}
