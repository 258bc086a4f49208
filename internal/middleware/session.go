// Package middleware provides shared request processing for handlers.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/church-check-in/internal/utils"
)

// SessionCookieName is the admin session cookie.
const SessionCookieName = "admin_session"

// IssueSessionCookie signs a fresh session token and sets it on the
// response. Called on login and again on every authenticated admin request,
// so the idle deadline slides while the admin keeps working.
func IssueSessionCookie(c echo.Context, secret string, idleTTL time.Duration) error {
	tok, err := utils.NewSessionToken(secret, idleTTL)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie expires the admin session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// AdminSession returns middleware that gates admin routes behind a valid
// session cookie. API routes (path prefix /api) get a structured 401;
// everything else is redirected to the login page, matching how a browser
// drives the dashboard.
func AdminSession(secret string, idleTTL time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return reject(c)
			}
			if err := utils.VerifySessionToken(secret, cookie.Value); err != nil {
				return reject(c)
			}
			// Valid session: slide the idle deadline.
			if err := IssueSessionCookie(c, secret, idleTTL); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session refresh failed"})
			}
			return next(c)
		}
	}
}

func reject(c echo.Context) error {
	if strings.HasPrefix(c.Path(), "/api") {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.Redirect(http.StatusSeeOther, "/admin-login")
}
