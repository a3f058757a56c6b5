package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"crewdesk/internal/export"
	"crewdesk/internal/models"
	"crewdesk/internal/services"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardPage struct {
	SiteName    string
	Query       services.ApplicantQuery
	Applicants  []models.Applicant
	Total       int
	Counts      []services.StatusCount
	States      []string
	Statuses    []models.Status
	Unavailable bool
	Deleted     bool
	ExportQuery template.URL
}

type ApplicantPage struct {
	SiteName     string
	Applicant    models.Applicant
	Statuses     []models.Status
	VehicleTypes []string
	Interview    []models.InterviewTurn
	Saved        bool
	Error        string
}

type SettingsPage struct {
	SiteName string
	Settings models.SiteSettings
	Saved    bool
	Error    string
}

// filtered loads every applicant and applies the query-string filters.
func (h *Handler) filtered(c echo.Context) ([]models.Applicant, []models.Applicant, services.ApplicantQuery, error) {
	q := services.ApplicantQueryFromValues(c.QueryParams())
	all, err := h.applicants.List(c.Request().Context())
	return all, services.FilterApplicants(all, q), q, err
}

func (h *Handler) Dashboard(c echo.Context) error {
	all, shown, q, err := h.filtered(c)
	page := DashboardPage{
		SiteName:    h.siteName,
		Query:       q,
		Applicants:  shown,
		Total:       len(all),
		Counts:      services.StatusCounts(all),
		States:      services.States(all),
		Statuses:    models.Statuses,
		Deleted:     c.QueryParam("deleted") != "",
		ExportQuery: template.URL(q.Values().Encode()),
	}
	if err != nil {
		h.log.WithError(err).Error("dashboard could not load applicants")
		page.Unavailable = true
	}
	return c.Render(http.StatusOK, "dashboard.html", page)
}

func (h *Handler) applicantPage(a models.Applicant) ApplicantPage {
	return ApplicantPage{
		SiteName:     h.siteName,
		Applicant:    a,
		Statuses:     models.Statuses,
		VehicleTypes: models.VehicleTypes,
	}
}

func (h *Handler) ShowApplicant(c echo.Context) error {
	id, err := applicantID(c)
	if err != nil {
		return h.htmlError(err)
	}
	a, err := h.applicants.Get(c.Request().Context(), id)
	if err != nil {
		return h.htmlError(err)
	}
	page := h.applicantPage(*a)
	page.Saved = c.QueryParam("saved") != ""
	if h.interviews != nil {
		if page.Interview, err = h.interviews.Transcript(c.Request().Context(), id); err != nil {
			h.log.WithError(err).WithField("applicant_id", id).Warn("interview transcript unavailable")
		}
	}
	if c.QueryParam("error") == "confirm" {
		page.Error = "Tick the confirmation box to delete this applicant."
	}
	return c.Render(http.StatusOK, "applicant.html", page)
}

// UpdateApplicant saves the status and notes, plus whichever record
// fields the form posted.
func (h *Handler) UpdateApplicant(c echo.Context) error {
	id, err := applicantID(c)
	if err != nil {
		return h.htmlError(err)
	}
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read form").SetInternal(err)
	}

	ctx := c.Request().Context()
	patch, err := formPatch(form)
	if err == nil {
		_, err = h.applicants.Patch(ctx, id, patch)
	}
	if errors.Is(err, models.ErrInvalidStatus) {
		a, getErr := h.applicants.Get(ctx, id)
		if getErr != nil {
			return h.htmlError(getErr)
		}
		page := h.applicantPage(*a)
		page.Error = err.Error()
		return c.Render(http.StatusBadRequest, "applicant.html", page)
	}
	if err != nil {
		return h.htmlError(err)
	}
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/admin/applicants/%s?saved=1", id))
}

// DeleteApplicant removes the record once the confirmation box is ticked.
func (h *Handler) DeleteApplicant(c echo.Context) error {
	id, err := applicantID(c)
	if err != nil {
		return h.htmlError(err)
	}
	if c.FormValue("confirm") != "yes" {
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/admin/applicants/%s?error=confirm", id))
	}
	if err := h.applicants.Delete(c.Request().Context(), id); err != nil {
		return h.htmlError(err)
	}
	h.log.WithField("applicant_id", id).Info("applicant deleted")
	return c.Redirect(http.StatusSeeOther, "/admin?deleted=1")
}

func (h *Handler) ExportCSV(c echo.Context) error {
	_, shown, _, err := h.filtered(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, shown); err != nil {
		return err
	}
	h.attachment(c, "csv")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) ExportXLSX(c echo.Context) error {
	_, shown, _, err := h.filtered(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, shown); err != nil {
		return err
	}
	h.attachment(c, "xlsx")
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) attachment(c echo.Context, ext string) {
	name := fmt.Sprintf("applicants-%s.%s", h.now().Format("20060102"), ext)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
}

func (h *Handler) ShowSettings(c echo.Context) error {
	st, err := h.settings.Get(c.Request().Context())
	page := SettingsPage{SiteName: h.siteName, Settings: st, Saved: c.QueryParam("saved") != ""}
	if err != nil {
		h.log.WithError(err).Error("site settings unavailable")
		page.Error = "Saved settings could not be loaded; showing defaults."
	}
	return c.Render(http.StatusOK, "settings.html", page)
}

func (h *Handler) SaveSettings(c echo.Context) error {
	st := models.SiteSettings{
		HeroTitle:     c.FormValue("hero_title"),
		HeroSubtitle:  c.FormValue("hero_subtitle"),
		JobDesc:       c.FormValue("job_desc"),
		Requirements:  c.FormValue("requirements"),
		Duties:        c.FormValue("duties"),
		EarningMin:    models.NonNegativeInt(c.FormValue("earning_min")),
		EarningMax:    models.NonNegativeInt(c.FormValue("earning_max")),
		DailyInstalls: c.FormValue("daily_installs"),
	}
	if _, err := h.settings.Save(c.Request().Context(), st); err != nil {
		h.log.WithError(err).Error("site settings not saved")
		return c.Render(http.StatusInternalServerError, "settings.html", SettingsPage{
			SiteName: h.siteName,
			Settings: st,
			Error:    "Settings could not be saved. Please try again.",
		})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/settings?saved=1")
}

// formPatch builds a patch from the posted fields; absent keys stay nil.
func formPatch(form url.Values) (models.ApplicantPatch, error) {
	var p models.ApplicantPatch
	str := func(key string) *string {
		vs, ok := form[key]
		if !ok || len(vs) == 0 {
			return nil
		}
		s := vs[0]
		return &s
	}

	p.Name = str("name")
	p.Phone = str("phone")
	p.Email = str("email")
	p.State = str("state")
	p.Counties = str("counties")
	p.Experience = str("experience")
	p.VehicleType = str("vehicle_type")
	p.Notes = str("notes")

	if s := str("radius"); s != nil {
		r := models.NormalizeRadius(*s)
		p.Radius = &r
	}
	if vs, ok := form["exp_types"]; ok {
		s := models.JoinSkills(vs)
		p.ExpTypes = &s
	}
	if s := str("license"); s != nil {
		v := models.ParseYesNo(*s)
		p.License = &v
	}
	if s := str("ladder"); s != nil {
		v := models.ParseYesNo(*s)
		p.Ladder = &v
	}
	if s := str("tools"); s != nil {
		v := models.ParseYesNo(*s)
		p.Tools = &v
	}
	if s := str("insurance"); s != nil {
		v := models.ParseInsurance(*s)
		p.Insurance = &v
	}
	if s := str("status"); s != nil {
		st, err := models.ParseStatus(*s)
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	return p, nil
}
