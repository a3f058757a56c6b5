package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"crewdesk/internal/models"
	"crewdesk/internal/services"

	"github.com/labstack/echo/v4"
)

// ApplyPage is the public job listing with the application form.
type ApplyPage struct {
	SiteName     string
	Settings     models.SiteSettings
	Form         models.ApplicantFields
	Error        string
	Experience   []string
	Skills       []string
	VehicleTypes []string
}

type ThanksPage struct {
	SiteName     string
	Settings     models.SiteSettings
	Applicant    *models.Applicant
	InterviewURL string
}

// photoFields are the multipart file inputs read from the form, in order.
var photoFields = []string{"photo1", "photo2"}

func (h *Handler) applyPage(c echo.Context, form models.ApplicantFields, msg string) ApplyPage {
	st, err := h.settings.Get(c.Request().Context())
	if err != nil {
		h.log.WithError(err).Warn("site settings unavailable, using defaults")
	}
	return ApplyPage{
		SiteName:     h.siteName,
		Settings:     st,
		Form:         form,
		Error:        msg,
		Experience:   models.ExperienceOptions,
		Skills:       models.SkillOptions,
		VehicleTypes: models.VehicleTypes,
	}
}

func (h *Handler) ShowApply(c echo.Context) error {
	form := models.ApplicantFields{License: models.Yes, Ladder: models.Yes, Tools: models.Yes, Insurance: models.InsuranceYes}
	return c.Render(http.StatusOK, "apply.html", h.applyPage(c, form, ""))
}

// SubmitForm accepts the multipart application form.
func (h *Handler) SubmitForm(c echo.Context) error {
	fields, err := formFields(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read the application form").SetInternal(err)
	}
	photos, closeAll := h.formPhotos(c)
	defer closeAll()

	a, err := h.intake.Submit(c.Request().Context(), services.Submission{Fields: fields, Photos: photos})
	if errors.Is(err, services.ErrValidation) {
		return c.Render(http.StatusBadRequest, "apply.html", h.applyPage(c, fields, err.Error()))
	}
	if err != nil {
		h.log.WithError(err).Error("application could not be saved")
		return c.Render(http.StatusInternalServerError, "apply.html",
			h.applyPage(c, fields, "Your application could not be saved. Please try again in a few minutes."))
	}

	st, _ := h.settings.Get(c.Request().Context())
	page := ThanksPage{SiteName: h.siteName, Settings: st, Applicant: a}
	if h.interviews != nil && h.interviews.Enabled() {
		page.InterviewURL = "/interview/" + a.ID.String()
	}
	return c.Render(http.StatusOK, "thanks.html", page)
}

type applicationRequest struct {
	models.ApplicantFields
	Radius any `json:"radius"`
}

// SubmitJSON accepts an application without photos.
func (h *Handler) SubmitJSON(c echo.Context) error {
	var req applicationRequest
	if err := c.Bind(&req); err != nil {
		return h.jsonError(c, err)
	}
	fields := req.ApplicantFields
	fields.Radius = models.NormalizeRadius(req.Radius)

	a, err := h.intake.Submit(c.Request().Context(), services.Submission{Fields: fields})
	if err != nil {
		return h.jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"id": a.ID, "created_at": a.CreatedAt})
}

func formFields(c echo.Context) (models.ApplicantFields, error) {
	params, err := c.FormParams()
	if err != nil {
		return models.ApplicantFields{}, err
	}
	return models.ApplicantFields{
		Name:        params.Get("name"),
		Phone:       params.Get("phone"),
		Email:       params.Get("email"),
		State:       params.Get("state"),
		Counties:    params.Get("counties"),
		Radius:      models.NormalizeRadius(params.Get("radius")),
		Experience:  params.Get("experience"),
		Skills:      params["exp_types"],
		VehicleType: params.Get("vehicle_type"),
		License:     models.ParseYesNo(params.Get("license")),
		Ladder:      models.ParseYesNo(params.Get("ladder")),
		Tools:       models.ParseYesNo(params.Get("tools")),
		Insurance:   models.ParseInsurance(params.Get("insurance")),
	}, nil
}

// formPhotos opens the attached photos. Missing or unreadable files are skipped.
func (h *Handler) formPhotos(c echo.Context) ([]services.Photo, func()) {
	var (
		photos []services.Photo
		files  []io.Closer
	)
	for _, field := range photoFields {
		fh, err := c.FormFile(field)
		if err != nil {
			continue
		}
		f, err := openPhoto(fh)
		if err != nil {
			h.log.WithError(err).WithField("field", field).Warn("photo skipped")
			continue
		}
		files = append(files, f)
		photos = append(photos, services.Photo{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return photos, func() {
		for _, f := range files {
			f.Close()
		}
	}
}

func openPhoto(fh *multipart.FileHeader) (multipart.File, error) {
	if fh.Size == 0 {
		return nil, errors.New("empty file")
	}
	return fh.Open()
}
