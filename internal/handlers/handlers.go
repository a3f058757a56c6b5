package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"crewdesk/internal/models"
	"crewdesk/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Handler serves the public application form and the admin screens.
type Handler struct {
	siteName   string
	applicants services.ApplicantRepository
	settings   *services.SettingsStore
	intake     *services.IntakeService
	interviews *services.InterviewService
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewHandler(siteName string, applicants services.ApplicantRepository, settings *services.SettingsStore, intake *services.IntakeService, interviews *services.InterviewService, log logrus.FieldLogger) *Handler {
	return &Handler{
		siteName:   siteName,
		applicants: applicants,
		settings:   settings,
		intake:     intake,
		interviews: interviews,
		log:        log,
		now:        time.Now,
	}
}

// RegisterRoutes mounts the public routes on e and the admin routes on
// admin. submit, when set, wraps the two submission endpoints.
func RegisterRoutes(e *echo.Echo, admin *echo.Group, submit echo.MiddlewareFunc, h *Handler) {
	var submitMW []echo.MiddlewareFunc
	if submit != nil {
		submitMW = append(submitMW, submit)
	}

	e.GET("/", h.ShowApply)
	e.POST("/apply", h.SubmitForm, submitMW...)
	e.POST("/api/applications", h.SubmitJSON, submitMW...)
	e.GET("/interview/:id", h.ShowInterview)
	e.POST("/interview/:id", h.AnswerInterview, submitMW...)
	e.GET("/healthz", h.Health)

	admin.GET("", h.Dashboard)
	admin.GET("/", h.Dashboard)
	admin.GET("/applicants/:id", h.ShowApplicant)
	admin.POST("/applicants/:id", h.UpdateApplicant)
	admin.POST("/applicants/:id/delete", h.DeleteApplicant)
	admin.GET("/export.csv", h.ExportCSV)
	admin.GET("/export.xlsx", h.ExportXLSX)
	admin.GET("/settings", h.ShowSettings)
	admin.POST("/settings", h.SaveSettings)

	api := admin.Group("/api")
	api.GET("/applicants", h.ListApplicants)
	api.GET("/applicants/:id", h.GetApplicant)
	api.PATCH("/applicants/:id", h.PatchApplicant)
	api.DELETE("/applicants/:id", h.DeleteApplicantAPI)
	api.GET("/applicants/:id/interview", h.GetInterview)
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.PutSettings)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// errorStatus maps a service error to an HTTP status and a short code.
func errorStatus(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrInterviewDisabled):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrInterviewClosed):
		return http.StatusConflict, "interview_closed"
	case errors.Is(err, services.ErrInterviewerUnavailable):
		return http.StatusServiceUnavailable, "interviewer_unavailable"
	case errors.Is(err, models.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid_status"
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, "invalid_request"
	case errors.As(err, &he) && he.Code < http.StatusInternalServerError:
		return he.Code, "bad_request"
	}
	return http.StatusInternalServerError, "internal"
}

// jsonError writes the error envelope used by every JSON endpoint.
func (h *Handler) jsonError(c echo.Context, err error) error {
	status, code := errorStatus(err)
	body := apiError{
		Code:      code,
		Message:   err.Error(),
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
	}
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("request_id", body.RequestID).Error("request failed")
		body.Message = "internal error"
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && status == he.Code {
		body.Message = fmt.Sprint(he.Message)
	}
	return c.JSON(status, map[string]apiError{"error": body})
}

// htmlError turns a service error into an echo error for the HTML screens.
func (h *Handler) htmlError(err error) error {
	status, _ := errorStatus(err)
	if status >= http.StatusInternalServerError {
		return err
	}
	return echo.NewHTTPError(status, err.Error()).SetInternal(err)
}

func applicantID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", services.ErrNotFound, c.Param("id"))
	}
	return id, nil
}
