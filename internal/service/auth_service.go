package service

import (
	"context"
	"fmt"
	"time"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
	"github.com/academyhq/academy-bookings/internal/platform/auth"
	"github.com/academyhq/academy-bookings/internal/repo/postgres"
	"github.com/academyhq/academy-bookings/pkg/config"
	"github.com/academyhq/academy-bookings/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.LearnerInfo, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	EnsureStaff(ctx context.Context, fullName, email, password string) error
}

type authService struct {
	learnerRepo   postgres.LearnerRepository
	staffRepo     postgres.StaffRepository
	principalRepo postgres.PrincipalRepository
	config        *config.Config
}

func NewAuthService(
	learnerRepo postgres.LearnerRepository,
	staffRepo postgres.StaffRepository,
	principalRepo postgres.PrincipalRepository,
	config *config.Config,
) AuthService {
	return &authService{
		learnerRepo:   learnerRepo,
		staffRepo:     staffRepo,
		principalRepo: principalRepo,
		config:        config,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.LearnerInfo, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	learner, err := s.learnerRepo.Create(ctx, req, passwordHash)
	if err != nil {
		return nil, err
	}

	return learner.ToInfo(), nil
}

// Login tries the learner store first, then staff, matching the original
// precedence. Every failure path returns the same generic message.
func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenPair, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", errdefs.ErrUnauthorized)
	}

	learner, err := s.learnerRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find learner: %w", err)
	}
	if learner != nil {
		check := auth.VerifyPassword(learner.PasswordHash, req.Password)
		if check.Matched {
			newHash, err := s.rehashIfLegacy(check, req.Password)
			if err != nil {
				return nil, err
			}

			pair, refreshToken, expiry, err := s.issueTokens(learner.ID, learner.Email, domain.RoleLearner)
			if err != nil {
				return nil, err
			}
			if err := s.learnerRepo.PersistLogin(ctx, learner.ID, newHash, refreshToken, expiry); err != nil {
				return nil, fmt.Errorf("failed to persist login: %w", err)
			}
			if newHash != nil {
				logger.InfoContext(ctx, "Migrated legacy credential", "role", domain.RoleLearner, "principal_id", learner.ID)
			}
			return pair, nil
		}
	}

	staff, err := s.staffRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find staff: %w", err)
	}
	if staff != nil {
		check := auth.VerifyPassword(staff.PasswordHash, req.Password)
		if check.Matched {
			newHash, err := s.rehashIfLegacy(check, req.Password)
			if err != nil {
				return nil, err
			}

			pair, refreshToken, expiry, err := s.issueTokens(staff.ID, staff.Email, domain.RoleStaff)
			if err != nil {
				return nil, err
			}
			if err := s.staffRepo.PersistLogin(ctx, staff.ID, newHash, refreshToken, expiry); err != nil {
				return nil, fmt.Errorf("failed to persist login: %w", err)
			}
			if newHash != nil {
				logger.InfoContext(ctx, "Migrated legacy credential", "role", domain.RoleStaff, "principal_id", staff.ID)
			}
			return pair, nil
		}
	}

	return nil, fmt.Errorf("%w: invalid email or password", errdefs.ErrUnauthorized)
}

// Refresh rotates the refresh token: one use, then it is gone.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: invalid or expired refresh token", errdefs.ErrUnauthorized)
	}

	newRefresh, err := auth.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}
	expiry := time.Now().Add(s.config.Auth.RefreshTokenTTL)

	principal, err := s.principalRepo.RotateRefreshToken(ctx, refreshToken, newRefresh, expiry)
	if err != nil {
		return nil, err
	}

	accessToken, err := auth.NewAccessToken(principal.ID, principal.Email, string(principal.Role),
		s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		Role:         principal.Role,
		ExpiresIn:    int64(s.config.Auth.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *authService) EnsureStaff(ctx context.Context, fullName, email, password string) error {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.staffRepo.Ensure(ctx, fullName, email, passwordHash)
}

func (s *authService) rehashIfLegacy(check auth.PasswordCheck, password string) (*string, error) {
	if check.Scheme != auth.SchemeLegacyPlainText {
		return nil, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to rehash legacy credential: %w", err)
	}
	return &hash, nil
}

func (s *authService) issueTokens(id int64, email string, role domain.Role) (*domain.TokenPair, string, time.Time, error) {
	accessToken, err := auth.NewAccessToken(id, email, string(role), s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := auth.NewRefreshToken()
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	expiry := time.Now().Add(s.config.Auth.RefreshTokenTTL)

	pair := &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         role,
		ExpiresIn:    int64(s.config.Auth.AccessTokenTTL.Seconds()),
	}
	return pair, refreshToken, expiry, nil
}
