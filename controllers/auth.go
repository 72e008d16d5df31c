package controllers

import (
	"crypto/subtle"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"splitbook/helpers"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates the single admin account from the environment and
// issues a 24h JWT.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := validate.Struct(req); err != nil {
		return helpers.JSONError(c, err.Error())
	}

	adminUser := os.Getenv("ADMIN_USERNAME")
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminUser == "" || adminPass == "" {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "ADMIN_ACCOUNT_NOT_CONFIGURED")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "JWT_SECRET_NOT_CONFIGURED")
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(adminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(adminPass)) == 1
	if !userOK || !passOK {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS")
	}

	claims := jwt.MapClaims{
		"sub": req.Username,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "TOKEN_SIGNING_FAILED")
	}

	return helpers.JSONSuccess(c, "Login successful", fiber.Map{
		"token":    signed,
		"username": req.Username,
	})
}
