package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// YesNo is a boolean answer persisted as "Yes" or "No".
type YesNo bool

const (
	Yes YesNo = true
	No  YesNo = false
)

// ParseYesNo treats anything that is not an explicit yes as No.
func ParseYesNo(s string) YesNo {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "on":
		return Yes
	}
	return No
}

func (y YesNo) String() string {
	if y {
		return "Yes"
	}
	return "No"
}

func (y YesNo) Value() (driver.Value, error) {
	return y.String(), nil
}

func (y *YesNo) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*y = No
	case string:
		*y = ParseYesNo(v)
	case []byte:
		*y = ParseYesNo(string(v))
	case bool:
		*y = YesNo(v)
	case int64:
		*y = v != 0
	default:
		return fmt.Errorf("cannot scan %T into YesNo", src)
	}
	return nil
}

func (y YesNo) MarshalText() ([]byte, error) {
	return []byte(y.String()), nil
}

func (y *YesNo) UnmarshalText(b []byte) error {
	*y = ParseYesNo(string(b))
	return nil
}

// Insurance distinguishes a current policy from one the applicant plans to buy.
type Insurance string

const (
	InsuranceYes     Insurance = "Yes"
	InsurancePending Insurance = "Pending"
	InsuranceNo      Insurance = "No"
)

func ParseInsurance(s string) Insurance {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "yes" || v == "y" || v == "true":
		return InsuranceYes
	case v == "pending" || strings.Contains(v, "will") || strings.Contains(v, "plan"):
		return InsurancePending
	}
	return InsuranceNo
}

func (i Insurance) Value() (driver.Value, error) {
	return string(ParseInsurance(string(i))), nil
}

func (i *Insurance) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = InsuranceNo
	case string:
		*i = ParseInsurance(v)
	case []byte:
		*i = ParseInsurance(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Insurance", src)
	}
	return nil
}

func (i *Insurance) UnmarshalText(b []byte) error {
	*i = ParseInsurance(string(b))
	return nil
}

// Vehicle types offered on the application form. The empty value means none.
const (
	VehicleTruck = "Truck"
	VehicleVan   = "Van"
	VehicleSUV   = "SUV"
	VehicleCar   = "Car"
)

var VehicleTypes = []string{VehicleTruck, VehicleVan, VehicleSUV, VehicleCar}

// NormalizeVehicleType maps free text onto a known vehicle type or "".
func NormalizeVehicleType(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, t := range VehicleTypes {
		if strings.Contains(v, strings.ToLower(t)) {
			return t
		}
	}
	return ""
}

// Experience buckets offered on the application form.
var ExperienceOptions = []string{
	"Less than 1 year",
	"1-2 years",
	"3-5 years",
	"5+ years",
}

// Skill tags offered on the application form.
const (
	SkillSatellite   = "Satellite systems (DirecTV, HughesNet, Dish Network)"
	SkillStarlink    = "Starlink installation"
	SkillTVMounting  = "TV mounting"
	SkillSecurityCam = "Security camera installation"
	SkillHomeTheater = "Home theater/audio systems"
	SkillLowVoltage  = "Low voltage wiring (Cat5/Cat6/Coax)"
)

var SkillOptions = []string{
	SkillSatellite,
	SkillStarlink,
	SkillTVMounting,
	SkillSecurityCam,
	SkillHomeTheater,
	SkillLowVoltage,
}
