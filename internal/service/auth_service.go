package service

import (
	"context"
	"time"

	"kladovka/internal/domain"
	"kladovka/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthService выдает одноразовые коды входа. Код подтверждается клиентом
// в телеграм-боте и затем обменивается на личность ровно один раз.
type AuthService struct {
	repo   domain.Repository
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewAuthService(repo domain.Repository, ttl time.Duration, logger *zerolog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = models.AuthTokenTTLMinutes * time.Minute
	}
	return &AuthService{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *AuthService) StartSession(ctx context.Context) (*models.AuthToken, error) {
	// Попутная уборка: протухшие и использованные коды чистим при выдаче нового.
	if removed, err := s.repo.CleanupAuthTokens(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Не удалось почистить старые коды входа")
	} else if removed > 0 {
		s.logger.Debug().Int64("removed", removed).Msg("старые коды входа удалены")
	}

	token := &models.AuthToken{
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.repo.CreateAuthToken(ctx, token); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("token", token.Token).Time("expires_at", token.ExpiresAt).Msg("auth session started")
	return token, nil
}

func (s *AuthService) ConfirmSession(ctx context.Context, token string, customerID int64) error {
	return s.repo.ConfirmAuthToken(ctx, token, customerID)
}

func (s *AuthService) VerifyToken(ctx context.Context, token string) (*models.Customer, error) {
	customerID, err := s.repo.UseAuthToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.repo.GetCustomerByID(ctx, customerID)
}
