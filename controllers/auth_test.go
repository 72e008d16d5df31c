package controllers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitbook/services"
	"splitbook/store"
)

func loginApp() *fiber.App {
	h := New(services.NewLedger(store.New(7.0)))
	app := fiber.New()
	app.Post("/auth/login", h.Login)
	return app
}

func postLogin(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestLogin(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("JWT_SECRET", "test-secret")
	app := loginApp()

	t.Run("valid credentials issue a token", func(t *testing.T) {
		code := postLogin(t, app, `{"username":"admin","password":"hunter2"}`)
		assert.Equal(t, fiber.StatusOK, code)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		code := postLogin(t, app, `{"username":"admin","password":"nope"}`)
		assert.Equal(t, fiber.StatusUnauthorized, code)
	})

	t.Run("unset signing secret refuses to issue tokens", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		code := postLogin(t, app, `{"username":"admin","password":"hunter2"}`)
		assert.Equal(t, fiber.StatusInternalServerError, code)
	})

	t.Run("unset admin account refuses login", func(t *testing.T) {
		t.Setenv("ADMIN_PASSWORD", "")
		code := postLogin(t, app, `{"username":"admin","password":"hunter2"}`)
		assert.Equal(t, fiber.StatusInternalServerError, code)
	})
}
