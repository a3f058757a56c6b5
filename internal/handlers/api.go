package handlers

import (
	"net/http"

	"crewdesk/internal/models"

	"github.com/labstack/echo/v4"
)

func (h *Handler) ListApplicants(c echo.Context) error {
	_, shown, _, err := h.filtered(c)
	if err != nil {
		return h.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, shown)
}

func (h *Handler) GetApplicant(c echo.Context) error {
	id, err := applicantID(c)
	if err != nil {
		return h.jsonError(c, err)
	}
	a, err := h.applicants.Get(c.Request().Context(), id)
	if err != nil {
		return h.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) PatchApplicant(c echo.Context) error {
	id, err := applicantID(c)
	if err != nil {
		return h.jsonError(c, err)
	}
	var p models.ApplicantPatch
	if err := c.Bind(&p); err != nil {
		return h.jsonError(c, err)
	}
	a, err := h.applicants.Patch(c.Request().Context(), id, p)
	if err != nil {
		return h.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteApplicantAPI(c echo.Context) error {
	id, err := applicantID(c)
	if err != nil {
		return h.jsonError(c, err)
	}
	if err := h.applicants.Delete(c.Request().Context(), id); err != nil {
		return h.jsonError(c, err)
	}
	h.log.WithField("applicant_id", id).Info("applicant deleted")
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetInterview(c echo.Context) error {
	id, err := applicantID(c)
	if err != nil {
		return h.jsonError(c, err)
	}
	if _, err := h.applicants.Get(c.Request().Context(), id); err != nil {
		return h.jsonError(c, err)
	}
	if h.interviews == nil {
		return c.JSON(http.StatusOK, []models.InterviewTurn{})
	}
	turns, err := h.interviews.Transcript(c.Request().Context(), id)
	if err != nil {
		return h.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, turns)
}

func (h *Handler) GetSettings(c echo.Context) error {
	st, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return h.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// PutSettings overlays the posted fields on the current settings.
func (h *Handler) PutSettings(c echo.Context) error {
	ctx := c.Request().Context()
	st, err := h.settings.Get(ctx)
	if err != nil {
		return h.jsonError(c, err)
	}
	if err := c.Bind(&st); err != nil {
		return h.jsonError(c, err)
	}
	saved, err := h.settings.Save(ctx, st)
	if err != nil {
		return h.jsonError(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}
