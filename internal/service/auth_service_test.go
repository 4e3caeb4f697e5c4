package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/policy-digest-api/internal/models"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
)

type mockAuthRepo struct {
	user           *models.User
	findByEmailErr error
	findByIDErr    error
}

func (m *mockAuthRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.user == nil || m.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func newDemoAuthRepo(t *testing.T) *mockAuthRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	return &mockAuthRepo{user: &models.User{
		ID:           "user-demo",
		Email:        "demo@policydigest.app",
		PasswordHash: string(hash),
		FullName:     "Demo User",
	}}
}

func newAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "policy-digest"})
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	svc := newAuthService(newDemoAuthRepo(t))

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "demo@policydigest.app", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "Demo User", resp.User.FullName)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-demo", claims.UserID)
	assert.Equal(t, "policy-digest", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(newDemoAuthRepo(t))

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "demo@policydigest.app", Password: "wrong"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "other@policydigest.app", Password: "password"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "password"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRepositoryFailure(t *testing.T) {
	repo := newDemoAuthRepo(t)
	repo.findByEmailErr = errors.New("connection reset")
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "demo@policydigest.app", Password: "password"})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	repo := newDemoAuthRepo(t)
	svc := newAuthService(repo)
	issued := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "demo@policydigest.app", Password: "password"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	other := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "other", Issuer: "policy-digest"})
	_, err = other.ValidateToken(resp.AccessToken)
	assert.Error(t, err)

	_, err = svc.ValidateToken("garbage")
	assert.Error(t, err)
}

func TestAuthServiceMe(t *testing.T) {
	svc := newAuthService(newDemoAuthRepo(t))

	info, err := svc.Me(context.Background(), "user-demo")
	require.NoError(t, err)
	assert.Equal(t, "demo@policydigest.app", info.Email)

	_, err = svc.Me(context.Background(), "ghost")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	assert.NoError(t, svc.Logout(context.Background(), "user-demo"))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("password")))
}
