package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"crewdesk/internal/models"
	"crewdesk/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterviewFlow(t *testing.T) {
	s := newTestServer(t)
	a := s.seed(t, "Ann", "TX", models.VehicleTruck)
	target := "/interview/" + a.ID.String()

	rec := s.do(httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "I see you have experience with: "+models.SkillSatellite)
	assert.Contains(t, rec.Body.String(), `name="answer"`)

	rec = s.do(formRequest(http.MethodPost, target, url.Values{"answer": {"Bolted a dish to a chimney."}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, target, rec.Header().Get(echo.HeaderLocation))

	rec = s.do(formRequest(http.MethodPost, target, url.Values{"answer": {"It was windy."}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bolted a dish to a chimney.")
	assert.Contains(t, rec.Body.String(), "What was the trickiest part?")
	assert.NotContains(t, rec.Body.String(), `name="answer"`, "no more answers after the limit")

	rec = s.do(formRequest(http.MethodPost, target, url.Values{"answer": {"One more"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin/applicants/"+a.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Skills interview")
	assert.Contains(t, rec.Body.String(), "It was windy.")
	assert.NotContains(t, rec.Body.String(), "One more")

	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin/api/applicants/"+a.ID.String()+"/interview", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var turns []models.InterviewTurn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turns))
	require.Len(t, turns, 5)
	assert.Equal(t, models.RoleApplicant, turns[1].Role)
}

func TestInterviewAnswerErrors(t *testing.T) {
	s := newTestServer(t)
	a := s.seed(t, "Ann", "TX", models.VehicleTruck)
	target := "/interview/" + a.ID.String()

	rec := s.do(formRequest(http.MethodPost, target, url.Values{"answer": {"  "}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Type an answer")

	s.bot.err = errors.New("model overloaded")
	rec = s.do(formRequest(http.MethodPost, target, url.Values{"answer": {"Mounted a TV."}}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not available right now")
	assert.Contains(t, rec.Body.String(), "Mounted a TV.", "the answer is kept in the box")
}

func TestInterviewUnknownApplicant(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/interview/" + uuid.NewString(), "/interview/not-a-uuid"} {
		rec := s.do(httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}

	rec := s.do(httptest.NewRequest(http.MethodGet, "/admin/api/applicants/"+uuid.NewString()+"/interview", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInterviewDisabledRoutes(t *testing.T) {
	s := newTestServer(t)
	a := s.seed(t, "Ann", "TX", models.VehicleTruck)

	h := NewHandler("Crew", s.store, services.NewSettingsStore(s.db), nil,
		services.NewInterviewService(s.db, s.store, nil, 3, quietLog()), quietLog())
	e := echo.New()
	e.Renderer = s.e.Renderer
	RegisterRoutes(e, e.Group("/admin"), nil, h)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/interview/"+a.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
