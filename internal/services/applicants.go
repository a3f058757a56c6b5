package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crewdesk/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("applicant not found")
	ErrStoreUnavailable = errors.New("applicant store unavailable")
)

// ApplicantRepository mediates every read and write of applicant records.
type ApplicantRepository interface {
	List(ctx context.Context) ([]models.Applicant, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Applicant, error)
	Insert(ctx context.Context, f models.ApplicantFields) (*models.Applicant, error)
	Patch(ctx context.Context, id uuid.UUID, p models.ApplicantPatch) (*models.Applicant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ApplicantStore is the gorm-backed ApplicantRepository.
type ApplicantStore struct {
	db     *gorm.DB
	intake IntakePolicy
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewApplicantStore(db *gorm.DB, intake IntakePolicy, log logrus.FieldLogger) *ApplicantStore {
	if intake == nil {
		intake = ReviewPolicy
	}
	return &ApplicantStore{db: db, intake: intake, log: log, now: time.Now}
}

// checkStatus remaps a stored status outside the known set to NEW.
func (s *ApplicantStore) checkStatus(a *models.Applicant) {
	if a.Status.Valid() {
		return
	}
	s.log.WithFields(logrus.Fields{
		"applicant_id": a.ID,
		"status":       string(a.Status),
	}).Warn("unknown stored status, treating as NEW")
	a.Status = models.StatusNew
}

// List returns every applicant, newest first.
func (s *ApplicantStore) List(ctx context.Context) ([]models.Applicant, error) {
	applicants := []models.Applicant{}
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&applicants).Error
	if err != nil {
		return []models.Applicant{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	for i := range applicants {
		s.checkStatus(&applicants[i])
	}
	return applicants, nil
}

func (s *ApplicantStore) Get(ctx context.Context, id uuid.UUID) (*models.Applicant, error) {
	var a models.Applicant
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get applicant %s: %w", id, err)
	}
	s.checkStatus(&a)
	return &a, nil
}

// Insert stores a new submission. The status always comes from the intake
// policy; a submission has no way to choose it.
func (s *ApplicantStore) Insert(ctx context.Context, f models.ApplicantFields) (*models.Applicant, error) {
	a := f.Applicant()
	a.ID = uuid.New()
	a.Status = s.intake(f)
	if !a.Status.Valid() {
		a.Status = models.StatusNew
	}
	a.CreatedAt = s.now().UTC()

	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, fmt.Errorf("insert applicant: %w", err)
	}
	return &a, nil
}

// Patch updates only the fields set on p. Concurrent patches race and the
// last write wins.
func (s *ApplicantStore) Patch(ctx context.Context, id uuid.UUID, p models.ApplicantPatch) (*models.Applicant, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var out models.Applicant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return err
		}
		if p.Empty() {
			return nil
		}
		if err := tx.Model(&models.Applicant{}).Where("id = ?", id).Updates(p.Columns()).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&out).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("patch applicant %s: %w", id, err)
	}
	s.checkStatus(&out)
	return &out, nil
}

// Delete removes the row and its interview transcript permanently.
func (s *ApplicantStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Applicant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return tx.Where("applicant_id = ?", id).Delete(&models.InterviewTurn{}).Error
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete applicant %s: %w", id, err)
	}
	return err
}
