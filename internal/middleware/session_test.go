package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/church-check-in/internal/utils"
)

const testSecret = "test-secret"

func newGatedEcho() *echo.Echo {
	e := echo.New()
	g := e.Group("", AdminSession(testSecret, 30*time.Minute))
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	g.GET("/dashboard", ok)
	g.GET("/api/logs", ok)
	return e
}

func TestAdminSessionRedirectsBrowserRoutes(t *testing.T) {
	e := newGatedEcho()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/admin-login" {
		t.Fatalf("location = %q, want /admin-login", loc)
	}
}

func TestAdminSessionRejectsAPIWithJSON(t *testing.T) {
	e := newGatedEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "" {
		t.Fatalf("api route must not redirect, got location %q", loc)
	}
	if !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Fatalf("body = %q, want a structured unauthorized error", rec.Body.String())
	}
}

func TestAdminSessionRejectsTamperedCookie(t *testing.T) {
	tok, err := utils.NewSessionToken("some-other-secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", tok.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newGatedEcho()
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.value})
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want redirect to login", rec.Code)
			}
		})
	}
}

func TestAdminSessionSlidesOnEachRequest(t *testing.T) {
	tok, err := utils.NewSessionToken(testSecret, 30*time.Minute)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}

	e := newGatedEcho()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok.Token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	reissued := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			reissued = true
		}
	}
	if !reissued {
		t.Fatal("expected a fresh session cookie on the authenticated response")
	}
}
