package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/backend/backendtest"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/database"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/utils"
)

func newManager(t *testing.T) (*Manager, *backendtest.Fake, *database.MemoryDatabase) {
	t.Helper()
	api := backendtest.New()
	api.Accounts["ada@example.com"] = backendtest.Account{
		Password:  "pw",
		Principal: models.Principal{ID: "1", Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin},
		Token:     "bearer-1",
	}
	api.SSO["google-id-token"] = models.RoleLookupResponse{Role: "task_creator", ID: "5"}
	store := database.NewMemoryDatabase()
	return NewManager(store, api, utils.NewJWTService("secret", time.Hour)), api, store
}

func TestLogin_Success(t *testing.T) {
	m, _, store := newManager(t)
	s, err := m.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, Authenticated, s.State())
	assert.Equal(t, models.RoleAdmin, s.Principal.Role)
	assert.Equal(t, "bearer-1", s.Token)
	assert.NotEmpty(t, s.ID)

	raw, err := store.Get(context.Background(), key(s.ID, KeyUser))
	require.NoError(t, err)
	assert.Contains(t, raw, `"email":"ada@example.com"`)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	m, _, _ := newManager(t)
	for _, pw := range []string{"wrong", ""} {
		s, err := m.Login(context.Background(), "ada@example.com", pw)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "Invalid credentials", err.Error())
	}
}

func TestLoginSSO(t *testing.T) {
	m, api, _ := newManager(t)
	s, err := m.LoginSSO(context.Background(), "google-id-token", "Tom", "tom@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.ID("5"), s.Principal.ID)
	assert.Equal(t, "Tom", s.Principal.Name)
	assert.Equal(t, models.RoleTaskCreator, s.Principal.Role)
	assert.Equal(t, "google-id-token", s.Token)
	assert.Equal(t, "google-id-token", api.Tokens["GetRole"])

	_, err = m.LoginSSO(context.Background(), "unknown", "X", "x@example.com")
	assert.ErrorIs(t, err, ErrNotProvisioned)
	assert.Equal(t, "User not found in system. Please contact admin.", err.Error())
}

func TestRestoreAndLogout(t *testing.T) {
	m, api, _ := newManager(t)
	ctx := context.Background()
	s, err := m.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	logins := api.CallCount("Login")

	restored, err := m.Restore(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Principal, restored.Principal)
	assert.Equal(t, "bearer-1", restored.Token)
	assert.Equal(t, logins, api.CallCount("Login"), "restore does not call the backend")

	require.NoError(t, m.Logout(ctx, s.ID))
	_, err = m.Restore(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, m.Logout(ctx, s.ID))

	_, err = m.Restore(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRestore_WithoutToken(t *testing.T) {
	m, api, _ := newManager(t)
	api.Accounts["old@example.com"] = backendtest.Account{
		Password:  "pw",
		Principal: models.Principal{ID: "2", Email: "old@example.com", Role: models.RoleUser},
	}
	s, err := m.Login(context.Background(), "old@example.com", "pw")
	require.NoError(t, err)

	restored, err := m.Restore(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Empty(t, restored.Token)
	assert.Equal(t, models.RoleUser, restored.Principal.Role)
}

func TestCookieRoundTrip(t *testing.T) {
	m, _, _ := newManager(t)
	s, err := m.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	c, err := m.Cookie(s)
	require.NoError(t, err)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, CookieName, c.Name)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	got, err := m.FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	_, err = m.FromRequest(bad)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Equal(t, -1, m.ClearCookie().MaxAge)
}

func TestSessionState(t *testing.T) {
	var s *Session
	assert.Equal(t, Unauthenticated, s.State())
	assert.Equal(t, "unauthenticated", s.State().String())
	assert.Equal(t, "authenticated", Authenticated.String())
}
