package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyhq/academy-bookings/internal/domain"
	"github.com/academyhq/academy-bookings/internal/domain/errdefs"
)

type stubAuthService struct {
	registerInfo *domain.LearnerInfo
	registerErr  error
	loginPair    *domain.TokenPair
	loginErr     error
	refreshPair  *domain.TokenPair
	refreshErr   error
}

func (s *stubAuthService) Register(context.Context, *domain.RegisterRequest) (*domain.LearnerInfo, error) {
	return s.registerInfo, s.registerErr
}

func (s *stubAuthService) Login(context.Context, *domain.LoginRequest) (*domain.TokenPair, error) {
	return s.loginPair, s.loginErr
}

func (s *stubAuthService) Refresh(context.Context, string) (*domain.TokenPair, error) {
	return s.refreshPair, s.refreshErr
}

func (s *stubAuthService) EnsureStaff(context.Context, string, string, string) error {
	return nil
}

func TestRegisterReturnsCreated(t *testing.T) {
	svc := &stubAuthService{registerInfo: &domain.LearnerInfo{ID: 1, Email: "lina@example.com"}}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"lina@example.com"}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var info domain.LearnerInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, "lina@example.com", info.Email)
}

func TestRegisterValidationErrorIs400(t *testing.T) {
	svc := &stubAuthService{registerErr: fmt.Errorf("%w: age must be positive", errdefs.ErrValidation)}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterConflictIs409(t *testing.T) {
	svc := &stubAuthService{registerErr: fmt.Errorf("%w: email already exists", errdefs.ErrConflict)}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterMalformedBodyIs400(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginFailureIs401(t *testing.T) {
	svc := &stubAuthService{loginErr: fmt.Errorf("%w: invalid email or password", errdefs.ErrUnauthorized)}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "invalid email or password")
}

func TestLoginReturnsTokenPair(t *testing.T) {
	svc := &stubAuthService{loginPair: &domain.TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Role:         domain.RoleLearner,
		ExpiresIn:    14400,
	}}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "access", body["token"])
	assert.Equal(t, "refresh", body["refresh_token"])
	assert.Equal(t, "learner", body["role"])
}

func TestRefreshFailureIs401(t *testing.T) {
	svc := &stubAuthService{refreshErr: fmt.Errorf("%w: invalid or expired refresh token", errdefs.ErrUnauthorized)}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{"refresh_token":"stale"}`))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
