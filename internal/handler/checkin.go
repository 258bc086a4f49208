package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/church-check-in/internal/checkin"
	"github.com/iliyamo/church-check-in/internal/model"
)

// CheckInHandler serves the QR entry points. Both routes take the scanned
// payload in the data query parameter; GET previews, POST commits.
type CheckInHandler struct {
	Engine *checkin.Engine
	Log    *zerolog.Logger
}

func NewCheckInHandler(engine *checkin.Engine, log *zerolog.Logger) *CheckInHandler {
	return &CheckInHandler{Engine: engine, Log: log}
}

// Scan is the landing stub the kiosk camera page polls; rendering lives in
// the front end.
func (h *CheckInHandler) Scan(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}

// CheckInForm previews a scan: who it is, whether they are already in, and
// which of a parent's children can come along. An already-checked-in person
// is pointed at the checkout flow instead.
func (h *CheckInHandler) CheckInForm(c echo.Context) error {
	id, err := checkin.ParsePayload(c.QueryParam("data"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if h.Engine.RecentlyScanned(id) {
		return c.JSON(http.StatusOK, echo.Map{"status": "ignored", "reason": "recently scanned"})
	}
	preview, err := h.Engine.Preview(id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load attendance failed"})
	}
	if preview.CheckedIn {
		return c.Redirect(http.StatusSeeOther, "/check-out?data="+url.QueryEscape(id.Payload))
	}
	return c.JSON(http.StatusOK, preview)
}

// CheckIn commits a check-in. Parents may select children to bring along;
// the no_kids flag skips all of them.
func (h *CheckInHandler) CheckIn(c echo.Context) error {
	id, err := checkin.ParsePayload(c.QueryParam("data"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	form, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid form"})
	}
	selected := form["children"]
	_, noKids := form["no_kids"]

	res, err := h.Engine.CheckIn(id, selected, noKids, model.MethodQR)
	if err != nil {
		if errors.Is(err, checkin.ErrAlreadyCheckedIn) {
			return c.Redirect(http.StatusSeeOther, "/check-out?data="+url.QueryEscape(id.Payload))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
	}
	h.Log.Info().Str("name", res.Name).Strs("children", res.Children).Msg("checked in")
	return c.JSON(http.StatusOK, res)
}

// CheckOutForm previews a checkout: the scanned person plus any of their
// checked-in children. No active check-in is reported distinctly from a
// malformed scan.
func (h *CheckInHandler) CheckOutForm(c echo.Context) error {
	id, err := checkin.ParsePayload(c.QueryParam("data"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	names, err := h.Engine.CheckoutCandidates(id)
	if err != nil {
		if errors.Is(err, checkin.ErrNotCheckedIn) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active check-in found for this family today"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load attendance failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"name": id.Name, "checkout_list": names})
}

// CheckOut commits a checkout for the selected members, defaulting to the
// scanned person when nothing was ticked.
func (h *CheckInHandler) CheckOut(c echo.Context) error {
	id, err := checkin.ParsePayload(c.QueryParam("data"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	form, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid form"})
	}

	res, err := h.Engine.CheckOut(id, form["members"])
	if err != nil {
		if errors.Is(err, checkin.ErrNotCheckedIn) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active check-in found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-out failed"})
	}
	h.Log.Info().Str("name", res.Name).Strs("members", res.Children).Msg("checked out")
	return c.JSON(http.StatusOK, res)
}
