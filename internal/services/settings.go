package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crewdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsStore reads and writes the singleton site settings row.
type SettingsStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db, now: time.Now}
}

// Get returns the stored settings, or the defaults when nothing was saved yet.
func (s *SettingsStore) Get(ctx context.Context) (models.SiteSettings, error) {
	var st models.SiteSettings
	err := s.db.WithContext(ctx).Where("id = ?", models.SiteSettingsID).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSiteSettings(), nil
	}
	if err != nil {
		return models.DefaultSiteSettings(), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return st, nil
}

// Save upserts the settings row on its fixed id.
func (s *SettingsStore) Save(ctx context.Context, st models.SiteSettings) (models.SiteSettings, error) {
	st.ID = models.SiteSettingsID
	st.LastUpdated = s.now().UTC()
	if st.EarningMin < 0 {
		st.EarningMin = 0
	}
	if st.EarningMax < st.EarningMin {
		st.EarningMax = st.EarningMin
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&st).Error
	if err != nil {
		return st, fmt.Errorf("save site settings: %w", err)
	}
	return st, nil
}
