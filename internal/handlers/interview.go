package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"crewdesk/internal/models"
	"crewdesk/internal/services"

	"github.com/labstack/echo/v4"
)

// InterviewPage is the applicant-facing skills interview chat.
type InterviewPage struct {
	SiteName  string
	Applicant *models.Applicant
	Turns     []models.InterviewTurn
	Open      bool
	Answer    string
	Error     string
}

func (h *Handler) interviewPage(iv *services.Interview) InterviewPage {
	return InterviewPage{SiteName: h.siteName, Applicant: iv.Applicant, Turns: iv.Turns, Open: iv.Open}
}

// ShowInterview opens the interview; the applicant id in the URL is the
// only credential, as on the thanks page that links here.
func (h *Handler) ShowInterview(c echo.Context) error {
	if h.interviews == nil {
		return echo.ErrNotFound
	}
	id, err := applicantID(c)
	if err != nil {
		return h.htmlError(err)
	}
	iv, err := h.interviews.Start(c.Request().Context(), id)
	if err != nil {
		return h.htmlError(err)
	}
	return c.Render(http.StatusOK, "interview.html", h.interviewPage(iv))
}

func (h *Handler) AnswerInterview(c echo.Context) error {
	if h.interviews == nil {
		return echo.ErrNotFound
	}
	id, err := applicantID(c)
	if err != nil {
		return h.htmlError(err)
	}
	answer := c.FormValue("answer")
	iv, err := h.interviews.Answer(c.Request().Context(), id, answer)
	switch {
	case err == nil, errors.Is(err, services.ErrInterviewClosed):
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/interview/%s", id))
	case errors.Is(err, services.ErrValidation):
		if iv, err = h.interviews.Start(c.Request().Context(), id); err != nil {
			return h.htmlError(err)
		}
		page := h.interviewPage(iv)
		page.Error = "Type an answer before sending."
		return c.Render(http.StatusBadRequest, "interview.html", page)
	case errors.Is(err, services.ErrInterviewerUnavailable):
		page := h.interviewPage(iv)
		page.Answer = answer
		page.Error = "The interviewer is not available right now. Please try again in a minute."
		return c.Render(http.StatusServiceUnavailable, "interview.html", page)
	}
	return h.htmlError(err)
}
