package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mserebryaakov/delivery-panel/internal/kvstore"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/mserebryaakov/delivery-panel/pkg/validation"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

var secret = []byte("test-secret")

func newTestService(t *testing.T, opts Options) (*authService, kvstore.Store) {
	t.Helper()
	kv := kvstore.NewMemory()
	opts.Secret = secret
	opts.Cost = bcrypt.MinCost
	svc, err := NewService(kv, opts, testLog())
	require.NoError(t, err)
	return svc.(*authService), kv
}

func TestLoginWithDefaults(t *testing.T) {
	s, _ := newTestService(t, Options{})
	ctx := context.Background()

	token, err := s.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", token.Username)

	username, err := s.ParseToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", username)

	_, err = s.Login(ctx, "admin", "wrong")
	assert.True(t, apperror.IsKind(err, apperror.UnauthorizedAppError))
	_, err = s.Login(ctx, "root", "admin123")
	assert.True(t, apperror.IsKind(err, apperror.UnauthorizedAppError))
}

func TestLoginWithEnvironmentOverride(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	s, _ := newTestService(t, Options{Username: "gerente", PasswordHash: string(hash)})

	_, err = s.Login(context.Background(), "admin", "admin123")
	assert.Error(t, err)
	_, err = s.Login(context.Background(), "gerente", "s3cret!")
	assert.NoError(t, err)
}

func TestNewServiceRejectsBadInput(t *testing.T) {
	_, err := NewService(kvstore.NewMemory(), Options{}, testLog())
	assert.Error(t, err)

	_, err = NewService(kvstore.NewMemory(), Options{Secret: secret, PasswordHash: "plain"}, testLog())
	assert.Error(t, err)
}

func TestUpdateCredentials(t *testing.T) {
	s, kv := newTestService(t, Options{})
	ctx := context.Background()

	err := s.UpdateCredentials(ctx, CredentialsInput{Username: "maria", CurrentPassword: "nope", NewPassword: "novaSenha"})
	assert.True(t, apperror.IsKind(err, apperror.UnauthorizedAppError))

	require.NoError(t, s.UpdateCredentials(ctx, CredentialsInput{
		Username:        " maria ",
		CurrentPassword: "admin123",
		NewPassword:     "novaSenha",
	}))

	var stored string
	require.NoError(t, kvstore.Get(ctx, kv, keyPassword, &stored))
	assert.NotEqual(t, "novaSenha", stored)

	_, err = s.Login(ctx, "admin", "admin123")
	assert.Error(t, err)
	_, err = s.Login(ctx, "maria", "novaSenha")
	assert.NoError(t, err)
}

func TestStoredPasswordWithoutUsername(t *testing.T) {
	s, kv := newTestService(t, Options{})
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("outra123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, kvstore.Set(ctx, kv, keyPassword, string(hash)))

	_, err = s.Login(ctx, "admin", "outra123")
	assert.NoError(t, err)
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	s, _ := newTestService(t, Options{})
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	token, err := s.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(24*time.Hour), token.ExpiresAt)

	s.now = func() time.Time { return issued.Add(23 * time.Hour) }
	_, err = s.ParseToken(token.Token)
	assert.NoError(t, err)

	s.now = func() time.Time { return issued.Add(25 * time.Hour) }
	_, err = s.ParseToken(token.Token)
	assert.True(t, apperror.IsKind(err, apperror.UnauthorizedAppError))

	s.now = func() time.Time { return issued }
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = s.ParseToken(foreign)
	assert.Error(t, err)
}

func TestHandlerAndMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	s, _ := newTestService(t, Options{})
	r := gin.New()
	admin := r.Group("/api", Middleware(s, testLog()))
	NewHandler(s, testLog()).Register(r, admin)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"admin","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := s.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"admin"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
