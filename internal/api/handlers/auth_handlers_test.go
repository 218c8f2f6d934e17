package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
	"github.com/wisdomindex/wealth_service/internal/infrastructure/config"
	pkgauth "github.com/wisdomindex/wealth_service/pkg/auth"
	"github.com/wisdomindex/wealth_service/pkg/crypto"
)

type stubUserRepo struct {
	byEmail    map[string]*entities.User
	lastLogins []uuid.UUID
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return s.byEmail[email], nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserRepo) Create(ctx context.Context, user *entities.User) error {
	return nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	s.lastLogins = append(s.lastLogins, id)
	return nil
}

func authTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:    "test-secret",
			AccessTTL: 3600,
			Issuer:    "wealth_service",
		},
	}
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, active bool) *entities.User {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)

	user := &entities.User{
		ID:           uuid.New(),
		ClientID:     7,
		Email:        email,
		PasswordHash: hash,
		Role:         "user",
		IsActive:     active,
	}
	if repo.byEmail == nil {
		repo.byEmail = make(map[string]*entities.User)
	}
	repo.byEmail[email] = user
	return user
}

func newAuthRouter(repo *stubUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(repo, authTestConfig(), testLogger())

	router := gin.New()
	router.POST("/auth/login", handler.Login)
	router.GET("/me", func(c *gin.Context) {
		// Stand-in for the auth middleware.
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			c.Set("user_id", uuid.MustParse(raw))
		}
		handler.Me(c)
	})
	return router
}

func doRequestWithHeader(router *gin.Engine, method, path, header, value string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(header, value)
	router.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	repo := &stubUserRepo{}
	user := seedUser(t, repo, "sam@example.com", "hunter2hunter2", true)
	router := newAuthRouter(repo)

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email":    "sam@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body entities.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, int64(7), body.ClientID)
	assert.False(t, body.ExpiresAt.IsZero())

	claims, err := pkgauth.ValidateToken(body.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, int64(7), claims.ClientID)

	require.Len(t, repo.lastLogins, 1)
	assert.Equal(t, user.ID, repo.lastLogins[0])
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &stubUserRepo{}
	seedUser(t, repo, "sam@example.com", "hunter2hunter2", true)
	router := newAuthRouter(repo)

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email":    "sam@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body entities.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_CREDENTIALS", body.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	router := newAuthRouter(&stubUserRepo{})

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := &stubUserRepo{}
	seedUser(t, repo, "gone@example.com", "hunter2hunter2", false)
	router := newAuthRouter(repo)

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"email":    "gone@example.com",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, repo.lastLogins)
}

func TestLoginValidatesPayload(t *testing.T) {
	router := newAuthRouter(&stubUserRepo{})

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeReturnsAuthenticatedUser(t *testing.T) {
	repo := &stubUserRepo{}
	user := seedUser(t, repo, "sam@example.com", "hunter2hunter2", true)
	router := newAuthRouter(repo)

	w := doRequestWithHeader(router, http.MethodGet, "/me", "X-Test-User", user.ID.String())
	require.Equal(t, http.StatusOK, w.Code)

	var body entities.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, user.ID, body.ID)
	assert.Equal(t, "sam@example.com", body.Email)
}

func TestMeWithoutIdentity(t *testing.T) {
	router := newAuthRouter(&stubUserRepo{})

	w := doRequest(router, http.MethodGet, "/me")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
