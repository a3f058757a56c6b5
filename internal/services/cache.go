package services

import (
	"context"
	"sync"
	"time"

	"crewdesk/internal/models"

	"github.com/google/uuid"
)

// CachedApplicants keeps the last List result for a few seconds so one
// dashboard render does not hit the store repeatedly. Every write through
// it drops the cached copy.
type CachedApplicants struct {
	ApplicantRepository

	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	rows     []models.Applicant
	loadedAt time.Time
	// gen counts invalidations; a load that raced a write is not kept.
	gen uint64
}

func NewCachedApplicants(repo ApplicantRepository, ttl time.Duration) *CachedApplicants {
	return &CachedApplicants{ApplicantRepository: repo, ttl: ttl, now: time.Now}
}

func (c *CachedApplicants) List(ctx context.Context) ([]models.Applicant, error) {
	if c.ttl <= 0 {
		return c.ApplicantRepository.List(ctx)
	}

	c.mu.Lock()
	if c.rows != nil && c.now().Sub(c.loadedAt) < c.ttl {
		out := cloneApplicants(c.rows)
		c.mu.Unlock()
		return out, nil
	}
	gen := c.gen
	c.mu.Unlock()

	rows, err := c.ApplicantRepository.List(ctx)
	if err != nil {
		return rows, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.rows = cloneApplicants(rows)
		c.loadedAt = c.now()
	}
	c.mu.Unlock()
	return rows, nil
}

func (c *CachedApplicants) Insert(ctx context.Context, f models.ApplicantFields) (*models.Applicant, error) {
	defer c.Invalidate()
	return c.ApplicantRepository.Insert(ctx, f)
}

func (c *CachedApplicants) Patch(ctx context.Context, id uuid.UUID, p models.ApplicantPatch) (*models.Applicant, error) {
	defer c.Invalidate()
	return c.ApplicantRepository.Patch(ctx, id, p)
}

func (c *CachedApplicants) Delete(ctx context.Context, id uuid.UUID) error {
	defer c.Invalidate()
	return c.ApplicantRepository.Delete(ctx, id)
}

func (c *CachedApplicants) Invalidate() {
	c.mu.Lock()
	c.rows = nil
	c.gen++
	c.mu.Unlock()
}

func cloneApplicants(in []models.Applicant) []models.Applicant {
	out := make([]models.Applicant, len(in))
	copy(out, in)
	return out
}
