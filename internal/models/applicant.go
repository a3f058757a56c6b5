package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Applicant struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;default:''" json:"name"`
	Phone       string    `gorm:"not null;default:''" json:"phone"`
	Email       string    `gorm:"not null;default:''" json:"email"`
	State       string    `gorm:"index;not null;default:''" json:"state"`
	Counties    string    `gorm:"type:text" json:"counties"`
	Radius      int       `gorm:"not null;default:0" json:"radius"`
	Experience  string    `json:"experience"`
	ExpTypes    string    `gorm:"type:text" json:"exp_types"`
	Vehicle     YesNo     `gorm:"type:varchar(3);not null;default:'No'" json:"vehicle"`
	VehicleType string    `json:"vehicle_type"`
	License     YesNo     `gorm:"type:varchar(3);not null;default:'No'" json:"license"`
	Ladder      YesNo     `gorm:"type:varchar(3);not null;default:'No'" json:"ladder"`
	Tools       YesNo     `gorm:"type:varchar(3);not null;default:'No'" json:"tools"`
	Insurance   Insurance `gorm:"type:varchar(8);not null;default:'No'" json:"insurance"`
	Photo1URL   string    `gorm:"column:photo1_url" json:"photo1_url"`
	Photo2URL   string    `gorm:"column:photo2_url" json:"photo2_url"`
	Status      Status    `gorm:"type:varchar(16);index;not null;default:'NEW'" json:"status"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Applicant) TableName() string { return "applicants" }

// Skills returns the selected skill tags.
func (a Applicant) Skills() []string { return SplitSkills(a.ExpTypes) }

// Photos returns the non-empty photo URLs.
func (a Applicant) Photos() []string {
	var out []string
	for _, u := range []string{a.Photo1URL, a.Photo2URL} {
		if strings.TrimSpace(u) != "" {
			out = append(out, u)
		}
	}
	return out
}

// ApplicantFields is what a public submission may set. Identity, status,
// notes and creation time are owned by the server.
type ApplicantFields struct {
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	State       string    `json:"state"`
	Counties    string    `json:"counties"`
	Radius      int       `json:"radius"`
	Experience  string    `json:"experience"`
	Skills      []string  `json:"skills"`
	VehicleType string    `json:"vehicle_type"`
	License     YesNo     `json:"license"`
	Ladder      YesNo     `json:"ladder"`
	Tools       YesNo     `json:"tools"`
	Insurance   Insurance `json:"insurance"`
	Photo1URL   string    `json:"-"`
	Photo2URL   string    `json:"-"`
}

// Clean trims free text and normalizes the enumerated answers.
func (f ApplicantFields) Clean() ApplicantFields {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.State = strings.ToUpper(strings.TrimSpace(f.State))
	f.Counties = strings.TrimSpace(f.Counties)
	f.Experience = strings.TrimSpace(f.Experience)
	if f.Radius < 0 {
		f.Radius = 0
	}
	f.VehicleType = NormalizeVehicleType(f.VehicleType)
	f.Insurance = ParseInsurance(string(f.Insurance))
	return f
}

// Applicant builds the row to insert. ID, Status and CreatedAt are left
// for the repository to stamp.
func (f ApplicantFields) Applicant() Applicant {
	f = f.Clean()
	return Applicant{
		Name:        f.Name,
		Phone:       f.Phone,
		Email:       f.Email,
		State:       f.State,
		Counties:    f.Counties,
		Radius:      f.Radius,
		Experience:  f.Experience,
		ExpTypes:    JoinSkills(f.Skills),
		Vehicle:     YesNo(f.VehicleType != ""),
		VehicleType: f.VehicleType,
		License:     f.License,
		Ladder:      f.Ladder,
		Tools:       f.Tools,
		Insurance:   f.Insurance,
		Photo1URL:   f.Photo1URL,
		Photo2URL:   f.Photo2URL,
	}
}

// ApplicantPatch is a partial update; nil fields are left untouched.
type ApplicantPatch struct {
	Name        *string    `json:"name,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Email       *string    `json:"email,omitempty"`
	State       *string    `json:"state,omitempty"`
	Counties    *string    `json:"counties,omitempty"`
	Radius      *int       `json:"radius,omitempty"`
	Experience  *string    `json:"experience,omitempty"`
	ExpTypes    *string    `json:"exp_types,omitempty"`
	VehicleType *string    `json:"vehicle_type,omitempty"`
	License     *YesNo     `json:"license,omitempty"`
	Ladder      *YesNo     `json:"ladder,omitempty"`
	Tools       *YesNo     `json:"tools,omitempty"`
	Insurance   *Insurance `json:"insurance,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

func (p ApplicantPatch) Empty() bool {
	return len(p.Columns()) == 0
}

// Columns maps the set fields to column values.
func (p ApplicantPatch) Columns() map[string]any {
	cols := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = strings.TrimSpace(*v)
		}
	}
	set("name", p.Name)
	set("phone", p.Phone)
	set("email", p.Email)
	set("counties", p.Counties)
	set("experience", p.Experience)
	if p.State != nil {
		cols["state"] = strings.ToUpper(strings.TrimSpace(*p.State))
	}
	if p.Radius != nil {
		cols["radius"] = NormalizeRadius(*p.Radius)
	}
	if p.ExpTypes != nil {
		cols["exp_types"] = JoinSkills(SplitSkills(*p.ExpTypes))
	}
	if p.VehicleType != nil {
		vt := NormalizeVehicleType(*p.VehicleType)
		cols["vehicle_type"] = vt
		cols["vehicle"] = YesNo(vt != "")
	}
	if p.License != nil {
		cols["license"] = *p.License
	}
	if p.Ladder != nil {
		cols["ladder"] = *p.Ladder
	}
	if p.Tools != nil {
		cols["tools"] = *p.Tools
	}
	if p.Insurance != nil {
		cols["insurance"] = ParseInsurance(string(*p.Insurance))
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	return cols
}

// Validate rejects a patch carrying an unknown status.
func (p ApplicantPatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(*p.Status))
	}
	return nil
}
