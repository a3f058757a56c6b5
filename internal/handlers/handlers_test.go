package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"crewdesk/internal/database"
	"crewdesk/internal/export"
	"crewdesk/internal/models"
	"crewdesk/internal/services"
	"crewdesk/internal/web"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type testServer struct {
	e     *echo.Echo
	db    *gorm.DB
	store *services.ApplicantStore
	bot   *chatInterviewer
}

type chatInterviewer struct {
	reply string
	err   error
}

func (c *chatInterviewer) Reply(context.Context, []string, []models.InterviewTurn, string) (string, error) {
	return c.reply, c.err
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := quietLog()
	store := services.NewApplicantStore(db, services.ClassifyPolicy, log)
	photos := services.NewPhotoUploader(&services.LocalBucket{Dir: t.TempDir(), BaseURL: "http://test"}, 1<<20, log)
	intake := services.NewIntakeService(store, photos, nil, log)
	bot := &chatInterviewer{reply: "What was the trickiest part?"}
	interviews := services.NewInterviewService(db, store, bot, 2, log)

	renderer, err := web.NewTemplateRenderer("../../web/templates")
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	e.Use(middleware.RequestID())
	RegisterRoutes(e, e.Group("/admin"), nil, NewHandler("Crew", store, services.NewSettingsStore(db), intake, interviews, log))
	return &testServer{e: e, db: db, store: store, bot: bot}
}

func quietLog() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seed(t *testing.T, name, state, vehicle string) *models.Applicant {
	t.Helper()
	a, err := s.store.Insert(context.Background(), models.ApplicantFields{
		Name:        name,
		Phone:       "555-0100",
		State:       state,
		Skills:      []string{models.SkillSatellite},
		VehicleType: vehicle,
		License:     models.Yes,
		Insurance:   models.InsuranceYes,
	})
	require.NoError(t, err)
	return a
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

type errorBody struct {
	Error apiError `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestShowApply(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Now Hiring Satellite")
	assert.Contains(t, rec.Body.String(), `action="/apply"`)
}

func TestSubmitForm(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"name":         "Ann Installer",
		"phone":        "555-0101",
		"state":        "tx",
		"radius":       "40",
		"vehicle_type": "Truck",
		"license":      "Yes",
		"ladder":       "Yes",
		"tools":        "Yes",
		"insurance":    "Yes",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.WriteField("exp_types", models.SkillSatellite))
	require.NoError(t, mw.WriteField("exp_types", models.SkillTVMounting))
	fw, err := mw.CreateFormFile("photo1", "roof.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/apply", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Thanks, Ann Installer!")
	assert.Contains(t, rec.Body.String(), `href="/interview/`)

	list, err := s.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	a := list[0]
	assert.Equal(t, models.StatusPriority, a.Status)
	assert.Equal(t, "TX", a.State)
	assert.Equal(t, 40, a.Radius)
	assert.Equal(t, models.Yes, a.Tools)
	assert.Equal(t, []string{models.SkillSatellite, models.SkillTVMounting}, a.Skills())
	assert.True(t, strings.HasPrefix(a.Photo1URL, "http://test/uploads/installs/"), a.Photo1URL)
	assert.Empty(t, a.Photo2URL)
}

func TestSubmitFormValidation(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(formRequest(http.MethodPost, "/apply", url.Values{"phone": {"555"}, "counties": {"Travis"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
	assert.Contains(t, rec.Body.String(), `value="Travis"`)

	list, err := s.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmitJSON(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(jsonRequest(http.MethodPost, "/api/applications",
		`{"name":"Bo","phone":"555-0102","radius":"25","skills":["TV mounting"],"license":"Yes","insurance":"Yes","status":"HIRED"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.ID)

	list, err := s.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 25, list[0].Radius)
	// no vehicle
	assert.Equal(t, models.StatusRejected, list[0].Status)
}

func TestSubmitJSONValidation(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(jsonRequest(http.MethodPost, "/api/applications", `{"phone":"555"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e := decodeError(t, rec)
	assert.Equal(t, "invalid_request", e.Code)
	assert.Contains(t, e.Message, "name is required")
	assert.NotEmpty(t, e.RequestID)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "Texas Tom", "TX", models.VehicleTruck)
	s.seed(t, "Ohio Olga", "OH", models.VehicleSUV)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Texas Tom")
	assert.Contains(t, rec.Body.String(), "Ohio Olga")
	assert.Contains(t, rec.Body.String(), "Total 2")

	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin?state=TX", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Texas Tom")
	assert.NotContains(t, rec.Body.String(), "Ohio Olga")
	assert.Contains(t, rec.Body.String(), "/admin/export.csv?state=TX")
}

func TestDashboardStoreUnavailable(t *testing.T) {
	s := newTestServer(t)
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec := s.do(httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data")
}

func TestShowApplicant(t *testing.T) {
	s := newTestServer(t)
	a := s.seed(t, "Texas Tom", "TX", models.VehicleTruck)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/admin/applicants/"+a.ID.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Texas Tom")

	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin/applicants/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateApplicantForm(t *testing.T) {
	s := newTestServer(t)
	a := s.seed(t, "Texas Tom", "TX", models.VehicleTruck)
	target := "/admin/applicants/" + a.ID.String()

	rec := s.do(formRequest(http.MethodPost, target, url.Values{"status": {"hired"}, "notes": {"starts monday"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, target+"?saved=1", rec.Header().Get(echo.HeaderLocation))

	got, err := s.store.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusHired, got.Status)
	assert.Equal(t, "starts monday", got.Notes)
	assert.Equal(t, "Texas Tom", got.Name)

	rec = s.do(formRequest(http.MethodPost, target, url.Values{"status": {"ARCHIVED"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid status")
}

func TestDeleteApplicantForm(t *testing.T) {
	s := newTestServer(t)
	a := s.seed(t, "Texas Tom", "TX", models.VehicleTruck)
	target := "/admin/applicants/" + a.ID.String() + "/delete"

	rec := s.do(formRequest(http.MethodPost, target, url.Values{}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "error=confirm")
	_, err := s.store.Get(context.Background(), a.ID)
	require.NoError(t, err)

	rec = s.do(formRequest(http.MethodPost, target, url.Values{"confirm": {"yes"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?deleted=1", rec.Header().Get(echo.HeaderLocation))
	_, err = s.store.Get(context.Background(), a.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "Texas Tom", "TX", models.VehicleTruck)
	s.seed(t, "Walker", "OH", "")

	rec := s.do(httptest.NewRequest(http.MethodGet, "/admin/export.csv?status=REJECTED", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv"))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, export.Columns, records[0])
	assert.Equal(t, "Walker", records[1][1])
}

func TestExportXLSX(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "Texas Tom", "TX", models.VehicleTruck)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/admin/export.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestSettingsScreens(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/admin/settings", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(formRequest(http.MethodPost, "/admin/settings", url.Values{
		"hero_title":   {"Hiring in Austin"},
		"earning_min":  {"900"},
		"earning_max":  {"-5"},
		"requirements": {"Truck\nLadder"},
	}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "Hiring in Austin")
	assert.Contains(t, rec.Body.String(), "<li>Ladder</li>")

	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin/api/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st models.SiteSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 900, st.EarningMin)
	assert.Equal(t, 900, st.EarningMax)
	assert.False(t, st.LastUpdated.IsZero())
}

func TestPutSettingsKeepsUnsentFields(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(jsonRequest(http.MethodPut, "/admin/api/settings", `{"earning_min":500,"earning_max":1500}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var st models.SiteSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 500, st.EarningMin)
	assert.Equal(t, models.DefaultSiteSettings().HeroTitle, st.HeroTitle)
}

func TestAPIApplicants(t *testing.T) {
	s := newTestServer(t)
	a := s.seed(t, "Texas Tom", "TX", models.VehicleTruck)
	s.seed(t, "Ohio Olga", "OH", models.VehicleSUV)
	target := "/admin/api/applicants/" + a.ID.String()

	rec := s.do(httptest.NewRequest(http.MethodGet, "/admin/api/applicants?q=olga", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Applicant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Ohio Olga", list[0].Name)

	rec = s.do(httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(jsonRequest(http.MethodPatch, target, `{"status":"contacted","notes":"left voicemail"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got models.Applicant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.StatusContacted, got.Status)
	assert.Equal(t, "left voicemail", got.Notes)

	rec = s.do(jsonRequest(http.MethodPatch, target, `{"status":"ARCHIVED"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_status", decodeError(t, rec).Code)

	rec = s.do(httptest.NewRequest(http.MethodDelete, target, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodDelete, target, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin/api/applicants/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormPatch(t *testing.T) {
	p, err := formPatch(url.Values{"notes": {""}, "radius": {"-3"}, "license": {"yes"}, "tools": {"no"}})
	require.NoError(t, err)
	assert.Nil(t, p.Name)
	assert.Nil(t, p.Status)
	require.NotNil(t, p.Notes)
	assert.Equal(t, "", *p.Notes)
	require.NotNil(t, p.Radius)
	assert.Equal(t, 0, *p.Radius)
	require.NotNil(t, p.License)
	assert.Equal(t, models.Yes, *p.License)
	require.NotNil(t, p.Tools)
	assert.Equal(t, models.No, *p.Tools)
	assert.Equal(t, models.No, p.Columns()["tools"])

	_, err = formPatch(url.Values{"status": {"bogus"}})
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrNotFound, http.StatusNotFound, "not_found"},
		{models.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
		{services.ErrValidation, http.StatusBadRequest, "invalid_request"},
		{echo.NewHTTPError(http.StatusBadRequest, "bad json"), http.StatusBadRequest, "bad_request"},
		{services.ErrInterviewDisabled, http.StatusNotFound, "not_found"},
		{services.ErrInterviewClosed, http.StatusConflict, "interview_closed"},
		{services.ErrInterviewerUnavailable, http.StatusServiceUnavailable, "interviewer_unavailable"},
		{services.ErrStoreUnavailable, http.StatusInternalServerError, "internal"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		status, code := errorStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}
