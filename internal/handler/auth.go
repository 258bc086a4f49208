package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/church-check-in/internal/config"
	"github.com/iliyamo/church-check-in/internal/middleware"
	"github.com/iliyamo/church-check-in/internal/utils"
)

// AuthHandler gates the admin surface behind the shared PIN. There are no
// per-user accounts; a correct PIN yields a session cookie with a sliding
// idle deadline.
type AuthHandler struct {
	Cfg     config.Config
	PINHash string
	Log     *zerolog.Logger
}

func NewAuthHandler(cfg config.Config, pinHash string, log *zerolog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, PINHash: pinHash, Log: log}
}

// LoginForm tells the front end whether a login is required.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"login": "pin required"})
}

// Login verifies the submitted PIN and issues the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	pin := c.FormValue("pin")
	if pin == "" || !utils.VerifyPIN(h.PINHash, pin) {
		h.Log.Warn().Str("ip", c.RealIP()).Msg("admin login rejected")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect PIN"})
	}
	if err := middleware.IssueSessionCookie(c, h.Cfg.SessionSecret, h.Cfg.SessionIdleTTL); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout drops the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/")
}
