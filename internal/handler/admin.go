package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/church-check-in/internal/checkin"
	"github.com/iliyamo/church-check-in/internal/config"
	"github.com/iliyamo/church-check-in/internal/mailer"
	"github.com/iliyamo/church-check-in/internal/model"
	"github.com/iliyamo/church-check-in/internal/qr"
	"github.com/iliyamo/church-check-in/internal/repository"
	"github.com/iliyamo/church-check-in/internal/utils"
)

// AdminHandler implements the PIN-gated dashboard surface: listing, search,
// positional edits and deletes, manual attendance mutations, and log
// export/reset. Positional indices refer to the loaded, header-excluded row
// order and shift after deletes; the deployment is a single kiosk, so the
// race window is accepted and documented.
type AdminHandler struct {
	Cfg    config.Config
	Regs   *repository.RegistrationRepo
	Logs   *repository.LogRepo
	Engine *checkin.Engine
	Mail   *mailer.Mailer
	Log    *zerolog.Logger
}

func NewAdminHandler(cfg config.Config, regs *repository.RegistrationRepo, logs *repository.LogRepo, engine *checkin.Engine, mail *mailer.Mailer, log *zerolog.Logger) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Regs: regs, Logs: logs, Engine: engine, Mail: mail, Log: log}
}

// registrationView is the display-friendly shape the dashboard renders:
// linkage columns flattened to strings.
type registrationView struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	Children    string `json:"children"`
	Parents     string `json:"parents"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"`
}

func viewOf(reg model.Registration) registrationView {
	address := ""
	if reg.Role == model.RoleAdult {
		address = reg.Address
	}
	return registrationView{
		Name:        reg.FullName(),
		Email:       reg.Email,
		Phone:       reg.Phone,
		Role:        string(reg.Role),
		Children:    strings.Join(reg.Children, ", "),
		Parents:     strings.Join(reg.Parents(), ", "),
		Address:     address,
		DateOfBirth: reg.DateOfBirth,
	}
}

// Dashboard returns current logs and registrations in one payload.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	entries, err := h.Logs.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load logs failed"})
	}
	regs, err := h.Regs.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load registrations failed"})
	}
	views := make([]registrationView, 0, len(regs))
	for _, reg := range regs {
		views = append(views, viewOf(reg))
	}
	return c.JSON(http.StatusOK, echo.Map{"logs": entries, "registrations": views})
}

// Registrations lists the raw registration rows with their positional
// indices, as the edit and delete endpoints address them.
func (h *AdminHandler) Registrations(c echo.Context) error {
	regs, err := h.Regs.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load registrations failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": regs})
}

// APILogs returns all log entries.
func (h *AdminHandler) APILogs(c echo.Context) error {
	entries, err := h.Logs.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load logs failed"})
	}
	return c.JSON(http.StatusOK, entries)
}

// Search runs a case-insensitive substring search across name, email and
// phone.
func (h *AdminHandler) Search(c echo.Context) error {
	regs, err := h.Regs.Search(c.QueryParam("query"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	results := make([]echo.Map, 0, len(regs))
	for _, reg := range regs {
		results = append(results, echo.Map{
			"name":  reg.FullName(),
			"email": reg.Email,
			"phone": reg.Phone,
		})
	}
	return c.JSON(http.StatusOK, results)
}

// ManualCheckIn records attendance entered by hand at the desk, with the
// same already-checked-in guard as the QR path.
func (h *AdminHandler) ManualCheckIn(c echo.Context) error {
	name := c.QueryParam("name")
	if strings.TrimSpace(name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no name provided"})
	}
	res, err := h.Engine.ManualCheckIn(name)
	if err != nil {
		switch {
		case errors.Is(err, checkin.ErrAlreadyCheckedIn):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already checked in"})
		case errors.Is(err, checkin.ErrMalformedPayload):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no name provided"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "manual check-in failed"})
	}
	h.Log.Info().Str("name", res.Name).Msg("manual check-in")
	return c.JSON(http.StatusOK, res)
}

// ManualCheckOut closes today's open entry for a hand-entered name.
func (h *AdminHandler) ManualCheckOut(c echo.Context) error {
	name := c.QueryParam("name")
	if strings.TrimSpace(name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no name provided"})
	}
	res, err := h.Engine.ManualCheckOut(name)
	if err != nil {
		switch {
		case errors.Is(err, checkin.ErrNotCheckedIn):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active check-in found"})
		case errors.Is(err, checkin.ErrMalformedPayload):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no name provided"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "manual check-out failed"})
	}
	h.Log.Info().Str("name", res.Name).Msg("manual check-out")
	return c.JSON(http.StatusOK, res)
}

// DeleteLog removes one log row by position.
func (h *AdminHandler) DeleteLog(c echo.Context) error {
	index, err := pathIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid index"})
	}
	if err := h.Logs.Delete(index); err != nil {
		if errors.Is(err, repository.ErrBadIndex) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid index"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// DeleteRegistration removes one registration row by position.
func (h *AdminHandler) DeleteRegistration(c echo.Context) error {
	index, err := pathIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid index"})
	}
	if err := h.Regs.Delete(index); err != nil {
		if errors.Is(err, repository.ErrBadIndex) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid index"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.Redirect(http.StatusSeeOther, "/admin-registrations")
}

// EditForm returns the row being edited plus the context the form needs.
func (h *AdminHandler) EditForm(c echo.Context) error {
	index, err := pathIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid index"})
	}
	reg, err := h.Regs.Get(index)
	if err != nil {
		if errors.Is(err, repository.ErrBadIndex) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid registration index"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load registration failed"})
	}
	parents, err := h.Regs.RegisteredParents()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load registrations failed"})
	}
	checkedIn, err := h.Engine.IsCheckedIn(reg.FullName())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load attendance failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"registration":       reg,
		"index":              index,
		"registered_parents": parents,
		"is_checked_in":      checkedIn,
	})
}

// Edit rewrites one registration row in place, optionally regenerating the
// QR artifact and re-sending it to the registrant.
func (h *AdminHandler) Edit(c echo.Context) error {
	index, err := pathIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid index"})
	}
	existing, err := h.Regs.Get(index)
	if err != nil {
		if errors.Is(err, repository.ErrBadIndex) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid registration index"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load registration failed"})
	}

	first := utils.NormalizeName(c.FormValue("first_name"))
	last := utils.NormalizeName(c.FormValue("last_name"))
	if !utils.ValidName(first) || !utils.ValidName(last) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrInvalidName.Error()})
	}
	role := model.ParseRole(c.FormValue("role"))

	parentName := existing.ParentName
	switch role {
	case model.RoleParent:
		parentName = first + " " + last
	case model.RoleChild:
		if v := c.FormValue("parent_name"); v != "" {
			parentName = v
		}
	}

	address := ""
	if role == model.RoleAdult {
		address = strings.TrimSpace(c.FormValue("address"))
	}

	var children []string
	for _, part := range strings.Split(c.FormValue("children"), ",") {
		child := utils.NormalizeName(part)
		if child == "" {
			continue
		}
		if !utils.ValidName(child) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrInvalidName.Error()})
		}
		children = append(children, child)
	}

	reg := model.Registration{
		FirstName:   first,
		LastName:    last,
		Email:       strings.ToLower(strings.TrimSpace(c.FormValue("email"))),
		Phone:       strings.TrimSpace(c.FormValue("phone")),
		Gender:      c.FormValue("gender"),
		Role:        role,
		Children:    children,
		QRLink:      existing.QRLink,
		Minor:       role == model.RoleChild,
		ParentName:  parentName,
		Address:     address,
		DateOfBirth: strings.TrimSpace(c.FormValue("date_of_birth")),
	}

	if c.FormValue("regenerate_qr") == "1" {
		reg.QRLink = qr.Link(h.baseURL(c), first, last, role)
		if _, err := qr.Write(h.Cfg.QRDir, first, last, reg.QRLink); err != nil {
			h.Log.Error().Err(err).Str("name", reg.FullName()).Msg("regenerate qr image failed")
		}
		h.resendQR(reg)
	}

	if err := h.Regs.Update(index, reg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.Redirect(http.StatusSeeOther, "/admin-registrations")
}

// ResendQR re-sends the stored QR code to the registrant's email.
func (h *AdminHandler) ResendQR(c echo.Context) error {
	index, err := pathIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid index"})
	}
	reg, err := h.Regs.Get(index)
	if err != nil {
		if errors.Is(err, repository.ErrBadIndex) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid index"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load registration failed"})
	}
	if reg.QRLink == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no QR code on record"})
	}
	if reg.Email == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no email on record"})
	}
	h.resendQR(reg)
	return c.JSON(http.StatusOK, echo.Map{"status": "QR code resent", "name": reg.FullName()})
}

// AdminCheckOut closes the open entry of the registration at the given
// index, bypassing the QR flow.
func (h *AdminHandler) AdminCheckOut(c echo.Context) error {
	index, err := pathIndex(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid index"})
	}
	reg, err := h.Regs.Get(index)
	if err != nil {
		if errors.Is(err, repository.ErrBadIndex) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid registration index"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load registration failed"})
	}
	if _, err := h.Engine.ManualCheckOut(reg.FullName()); err != nil {
		if errors.Is(err, checkin.ErrNotCheckedIn) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active check-in found for this user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-out failed"})
	}
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/edit-registration/%d", index))
}

// DownloadLogs streams the log table as an attachment and resets it to
// header-only once the response is written. The file name carries the
// export date.
func (h *AdminHandler) DownloadLogs(c echo.Context) error {
	data, err := h.Logs.Export()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}
	name := fmt.Sprintf("check-in-logs-%s.csv", time.Now().Format("02-01-2006"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	if err := c.Blob(http.StatusOK, "text/csv", data); err != nil {
		return err
	}
	// Reset only after the response body has been written.
	if err := h.Logs.Reset(); err != nil {
		h.Log.Error().Err(err).Msg("reset logs after export failed")
	}
	return nil
}

// ConfirmClearLogs is the confirmation step before a destructive clear.
func (h *AdminHandler) ConfirmClearLogs(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"confirm": "POST /clear-logs to reset the log table"})
}

// ClearLogs resets the log table to header-only without exporting.
func (h *AdminHandler) ClearLogs(c echo.Context) error {
	if err := h.Logs.Reset(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "clear failed"})
	}
	h.Log.Info().Msg("log table cleared")
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// UpdateQRCodes regenerates every stored QR link and image against the
// current base URL and payload format.
func (h *AdminHandler) UpdateQRCodes(c echo.Context) error {
	baseURL := h.baseURL(c)
	updated, err := h.Regs.UpdateQRLinks(func(first, last string, role model.Role) string {
		return qr.Link(baseURL, first, last, role)
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	regs, err := h.Regs.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load registrations failed"})
	}
	for _, reg := range regs {
		if reg.QRLink == "" {
			continue
		}
		if _, err := qr.Write(h.Cfg.QRDir, reg.FirstName, reg.LastName, reg.QRLink); err != nil {
			h.Log.Error().Err(err).Str("name", reg.FullName()).Msg("regenerate qr image failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": updated})
}

func (h *AdminHandler) resendQR(reg model.Registration) {
	if reg.Email == "" || !h.Mail.Enabled() {
		return
	}
	png, err := qr.Encode(reg.QRLink)
	if err != nil {
		h.Log.Warn().Err(err).Str("name", reg.FullName()).Msg("encode qr for email failed")
		return
	}
	h.Mail.SendQRAsync(reg.Email, reg.FullName(), png)
}

func (h *AdminHandler) baseURL(c echo.Context) string {
	if h.Cfg.BaseURL != "" {
		return h.Cfg.BaseURL
	}
	return c.Scheme() + "://" + c.Request().Host
}

func pathIndex(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("index"))
}
