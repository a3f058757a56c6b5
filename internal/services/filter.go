package services

import (
	"net/url"
	"strings"

	"crewdesk/internal/models"
)

// ApplicantQuery is the admin dashboard filter. Empty fields are inactive.
type ApplicantQuery struct {
	Text   string
	State  string
	Status models.Status
}

// ApplicantQueryFromValues reads q, state and status from a query string.
// An unknown status leaves the status filter off.
func ApplicantQueryFromValues(v url.Values) ApplicantQuery {
	q := ApplicantQuery{
		Text:  strings.TrimSpace(v.Get("q")),
		State: strings.TrimSpace(v.Get("state")),
	}
	if st, err := models.ParseStatus(v.Get("status")); err == nil {
		q.Status = st
	}
	return q
}

func (q ApplicantQuery) Active() bool {
	return q.Text != "" || q.State != "" || q.Status != ""
}

// Values encodes the query back into URL parameters.
func (q ApplicantQuery) Values() url.Values {
	v := url.Values{}
	if q.Text != "" {
		v.Set("q", q.Text)
	}
	if q.State != "" {
		v.Set("state", q.State)
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	return v
}

// Match ANDs every active filter. Text is a case-insensitive substring
// match on name, phone or counties.
func (q ApplicantQuery) Match(a models.Applicant) bool {
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		if !strings.Contains(strings.ToLower(a.Name), text) &&
			!strings.Contains(strings.ToLower(a.Phone), text) &&
			!strings.Contains(strings.ToLower(a.Counties), text) {
			return false
		}
	}
	if q.State != "" && !strings.EqualFold(strings.TrimSpace(a.State), strings.TrimSpace(q.State)) {
		return false
	}
	if q.Status != "" && a.Status != q.Status {
		return false
	}
	return true
}

// FilterApplicants returns the records matching q, preserving order.
func FilterApplicants(in []models.Applicant, q ApplicantQuery) []models.Applicant {
	out := make([]models.Applicant, 0, len(in))
	for _, a := range in {
		if q.Match(a) {
			out = append(out, a)
		}
	}
	return out
}

// StatusCount is one entry of the dashboard summary.
type StatusCount struct {
	Status models.Status
	Count  int
}

// StatusCounts tallies records per status in pipeline order.
func StatusCounts(in []models.Applicant) []StatusCount {
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, a := range in {
		counts[a.Status]++
	}
	out := make([]StatusCount, 0, len(models.Statuses))
	for _, st := range models.Statuses {
		out = append(out, StatusCount{Status: st, Count: counts[st]})
	}
	return out
}

// States lists the distinct states present, in first-seen order.
func States(in []models.Applicant) []string {
	seen := map[string]bool{}
	var out []string
	for _, a := range in {
		s := strings.TrimSpace(a.State)
		if s == "" || seen[strings.ToUpper(s)] {
			continue
		}
		seen[strings.ToUpper(s)] = true
		out = append(out, s)
	}
	return out
}
