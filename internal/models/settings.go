package models

import (
	"strings"
	"time"
)

// SiteSettingsID is the fixed primary key of the single settings row.
const SiteSettingsID uint = 1

// SiteSettings holds the public job listing copy edited from the admin
// website maintenance screen.
type SiteSettings struct {
	ID            uint      `gorm:"primaryKey;autoIncrement:false" json:"-"`
	HeroTitle     string    `json:"hero_title"`
	HeroSubtitle  string    `json:"hero_subtitle"`
	JobDesc       string    `gorm:"type:text" json:"job_desc"`
	Requirements  string    `gorm:"type:text" json:"requirements"`
	Duties        string    `gorm:"type:text" json:"duties"`
	EarningMin    int       `json:"earning_min"`
	EarningMax    int       `json:"earning_max"`
	DailyInstalls string    `json:"daily_installs"`
	LastUpdated   time.Time `json:"last_updated"`
}

func (SiteSettings) TableName() string { return "site_settings" }

func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:            SiteSettingsID,
		HeroTitle:     "Now Hiring Satellite & Starlink Installers",
		HeroSubtitle:  "Independent field technicians, paid per completed install.",
		JobDesc:       "Install and service residential satellite, Starlink and low-voltage systems in your area.",
		Requirements:  "Reliable truck, van or SUV\nValid driver's license\nExtension ladder\nGeneral liability insurance",
		Duties:        "Roof and wall mounts\nCable routing\nCustomer walkthroughs",
		EarningMin:    800,
		EarningMax:    2000,
		DailyInstalls: "2-4",
	}
}

// RequirementLines splits the requirements copy into display lines.
func (s SiteSettings) RequirementLines() []string { return splitLines(s.Requirements) }

// DutyLines splits the duties copy into display lines.
func (s SiteSettings) DutyLines() []string { return splitLines(s.Duties) }

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
