// Package router defines how HTTP routes are registered for the register.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/church-check-in/internal/config"
	"github.com/iliyamo/church-check-in/internal/handler"
	"github.com/iliyamo/church-check-in/internal/middleware"
)

// RegisterPublic wires the routes anyone at the door can reach: the
// registration form, the scan entry points and the generated QR images.
func RegisterPublic(e *echo.Echo, cfg config.Config, reg *handler.RegisterHandler, chk *handler.CheckInHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/register")
	})

	e.GET("/register", reg.Form)
	e.POST("/register", reg.Register)

	e.GET("/scan", chk.Scan)
	e.GET("/check-in", chk.CheckInForm)
	e.POST("/check-in", chk.CheckIn)
	e.GET("/check-out", chk.CheckOutForm)
	e.POST("/check-out", chk.CheckOut)

	e.Static("/static/qrcodes", cfg.QRDir)
}

// RegisterAdmin wires the PIN-gated surface. Login and logout stay outside
// the session middleware; everything else refreshes the sliding idle
// deadline on each request.
func RegisterAdmin(e *echo.Echo, cfg config.Config, auth *handler.AuthHandler, adm *handler.AdminHandler) {
	e.GET("/admin-login", auth.LoginForm)
	e.POST("/admin-login", auth.Login)
	e.POST("/logout", auth.Logout)

	g := e.Group("", middleware.AdminSession(cfg.SessionSecret, cfg.SessionIdleTTL))

	g.GET("/dashboard", adm.Dashboard)
	g.GET("/admin-registrations", adm.Registrations)
	g.GET("/api/logs", adm.APILogs)
	g.GET("/api/search-registrations", adm.Search)
	g.POST("/api/manual-checkin", adm.ManualCheckIn)
	g.POST("/api/manual-checkout", adm.ManualCheckOut)

	g.POST("/delete-log/:index", adm.DeleteLog)
	g.POST("/delete-registration/:index", adm.DeleteRegistration)
	g.GET("/edit-registration/:index", adm.EditForm)
	g.POST("/edit-registration/:index", adm.Edit)
	g.GET("/resend-qr/:index", adm.ResendQR)
	g.POST("/check-out/:index", adm.AdminCheckOut)

	g.GET("/download-logs", adm.DownloadLogs)
	g.GET("/confirm-clear-logs", adm.ConfirmClearLogs)
	g.POST("/clear-logs", adm.ClearLogs)
	g.POST("/update-qr-codes", adm.UpdateQRCodes)
}
