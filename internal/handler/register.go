package handler

import (
	"errors"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/church-check-in/internal/config"
	"github.com/iliyamo/church-check-in/internal/mailer"
	"github.com/iliyamo/church-check-in/internal/model"
	"github.com/iliyamo/church-check-in/internal/qr"
	"github.com/iliyamo/church-check-in/internal/repository"
	"github.com/iliyamo/church-check-in/pkg/validator"
)

// RegisterHandler bundles dependencies for the public registration flow.
type RegisterHandler struct {
	Cfg  config.Config
	Regs *repository.RegistrationRepo
	Mail *mailer.Mailer
	Log  *zerolog.Logger
}

func NewRegisterHandler(cfg config.Config, regs *repository.RegistrationRepo, mail *mailer.Mailer, log *zerolog.Logger) *RegisterHandler {
	return &RegisterHandler{Cfg: cfg, Regs: regs, Mail: mail, Log: log}
}

type registerReq struct {
	FirstName   string   `form:"first_name" validate:"required,personname"`
	LastName    string   `form:"last_name" validate:"required,personname"`
	Email       string   `form:"email" validate:"required,email"`
	Phone       string   `form:"phone" validate:"required"`
	Gender      string   `form:"gender"`
	Role        string   `form:"role" validate:"required,role"`
	Children    string   `form:"children"`
	Parents     []string `form:"parent"`
	Address     string   `form:"address"`
	DateOfBirth string   `form:"date_of_birth"`
}

// Form returns the data the registration page needs: the guardians a child
// registration can be linked to.
func (h *RegisterHandler) Form(c echo.Context) error {
	parents, err := h.Regs.RegisteredParents()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load registrations failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"registered_parents": parents})
}

// Register validates and stores a new attendee, writes their QR image and
// fires the welcome email without waiting on it.
func (h *RegisterHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid form"})
	}
	if err := validator.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	baseURL := h.baseURL(c)
	reg, err := h.Regs.Register(repository.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Gender:      req.Gender,
		Role:        model.ParseRole(req.Role),
		ChildrenRaw: req.Children,
		Parents:     req.Parents,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
	}, func(first, last string, role model.Role) string {
		return qr.Link(baseURL, first, last, role)
	})
	if err != nil {
		return registerError(c, err)
	}

	if _, err := qr.Write(h.Cfg.QRDir, reg.FirstName, reg.LastName, reg.QRLink); err != nil {
		h.Log.Error().Err(err).Str("name", reg.FullName()).Msg("write qr image failed")
	}
	h.sendQR(reg)

	return c.JSON(http.StatusCreated, echo.Map{
		"name":    reg.FullName(),
		"qr_link": reg.QRLink,
		"qr_url":  "/static/qrcodes/" + path.Base(qr.FileName(reg.FirstName, reg.LastName)),
	})
}

// sendQR encodes the QR image and dispatches the best-effort welcome email.
func (h *RegisterHandler) sendQR(reg model.Registration) {
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

func (h *RegisterHandler) baseURL(c echo.Context) string {
	if h.Cfg.BaseURL != "" {
		return h.Cfg.BaseURL
	}
	return c.Scheme() + "://" + c.Request().Host
}

// registerError maps registration sentinel errors onto HTTP statuses:
// duplicates are conflicts, everything else about the input is a bad
// request.
func registerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrAlreadyRegistered),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrPhoneExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidName),
		errors.Is(err, repository.ErrChildWithChildren),
		errors.Is(err, repository.ErrParentRequired),
		errors.Is(err, repository.ErrTooManyParents),
		errors.Is(err, repository.ErrParentNotRegistered):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
}
