package middleware_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"yamdb/internal/database"
	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/permissions"
	"yamdb/internal/repositories"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*fiber.App, *services.AuthService, *repositories.GORMUserRepository) {
	t.Helper()
	db, err := database.OpenInMemory(uuid.New().String())
	require.NoError(t, err)
	users := repositories.NewGORMUserRepository(db)
	auth := services.NewAuthService(users, nil, services.AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour})

	app := fiber.New()
	app.Use(middleware.Authenticate(auth, users))
	app.All("/whoami", middleware.Permit(permissions.AdminOrReadOnly), func(c *fiber.Ctx) error {
		if u := middleware.CurrentUser(c); u != nil {
			return c.SendString(u.Username)
		}
		return c.SendString("anonymous")
	})
	return app, auth, users
}

func call(t *testing.T, app *fiber.App, method, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthenticate(t *testing.T) {
	app, auth, users := setup(t)
	alice := &models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, users.Create(alice))
	token, err := auth.IssueToken(alice)
	require.NoError(t, err)

	status, body := call(t, app, fiber.MethodGet, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "anonymous", body)

	status, body = call(t, app, fiber.MethodGet, "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alice", body)

	status, _ = call(t, app, fiber.MethodGet, "Token "+token)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, fiber.MethodGet, "Bearer broken")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// A token for a deleted account is rejected.
	require.NoError(t, users.Delete("alice"))
	status, _ = call(t, app, fiber.MethodGet, "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestPermit(t *testing.T) {
	app, auth, users := setup(t)
	alice := &models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, users.Create(alice))
	token, err := auth.IssueToken(alice)
	require.NoError(t, err)

	status, _ := call(t, app, fiber.MethodPost, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, fiber.MethodPost, "Bearer "+token)
	assert.Equal(t, fiber.StatusForbidden, status)

	// The role is read on every request, so a promotion applies to the same token.
	alice.Role = models.RoleAdmin
	require.NoError(t, users.Update(alice))
	status, body := call(t, app, fiber.MethodPost, "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alice", body)
}
