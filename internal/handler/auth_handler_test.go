package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/policy-digest-api/internal/models"
	appErrors "github.com/noah-isme/policy-digest-api/pkg/errors"
)

type fakeAuthSrv struct {
	loginReq  models.LoginRequest
	loginResp *models.LoginResponse
	loginErr  error
	meResp    *models.UserInfo
	loggedOut string
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.loginReq = req
	return f.loginResp, f.loginErr
}

func (f *fakeAuthSrv) Me(_ context.Context, userID string) (*models.UserInfo, error) {
	if f.meResp == nil || f.meResp.ID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return f.meResp, nil
}

func (f *fakeAuthSrv) Logout(_ context.Context, userID string) error {
	f.loggedOut = userID
	return nil
}

func TestAuthHandlerLogin(t *testing.T) {
	srv := &fakeAuthSrv{loginResp: &models.LoginResponse{AccessToken: "token", ExpiresIn: 3600}}
	handler := NewAuthHandler(srv)

	c, w := newJSONContext(http.MethodPost, "/auth/login", models.LoginRequest{Email: "demo@policydigest.app", Password: "password"})
	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "demo@policydigest.app", srv.loginReq.Email)
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, "token", resp.AccessToken)
}

func TestAuthHandlerLoginInvalidPayload(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthSrv{})

	c, w := newJSONContext(http.MethodPost, "/auth/login", "{")
	handler.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginRejected(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthSrv{loginErr: appErrors.ErrInvalidCredentials})

	c, w := newJSONContext(http.MethodPost, "/auth/login", models.LoginRequest{Email: "x@y.z", Password: "nope"})
	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, w).Error.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthSrv{meResp: &models.UserInfo{ID: "user-demo", FullName: "Demo User"}})

	c, w := newJSONContext(http.MethodGet, "/auth/me", nil)
	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newJSONContext(http.MethodGet, "/auth/me", nil)
	withUser(c, "user-demo")
	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	var info models.UserInfo
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &info))
	assert.Equal(t, "Demo User", info.FullName)
}

func TestAuthHandlerLogout(t *testing.T) {
	srv := &fakeAuthSrv{}
	handler := NewAuthHandler(srv)

	c, _ := newJSONContext(http.MethodPost, "/auth/logout", nil)
	withUser(c, "user-demo")
	handler.Logout(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "user-demo", srv.loggedOut)
}
