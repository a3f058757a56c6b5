package services

import (
	"crewdesk/internal/models"
)

// Answers are the application answers the classifier looks at.
// Zero values mean "No" or "not selected".
type Answers struct {
	Skills      []string
	HasVehicle  bool
	VehicleType string
	License     bool
	Insurance   models.Insurance
}

var installSkills = map[string]bool{
	models.SkillSatellite:   true,
	models.SkillStarlink:    true,
	models.SkillTVMounting:  true,
	models.SkillSecurityCam: true,
	models.SkillHomeTheater: true,
	models.SkillLowVoltage:  true,
}

var satelliteSkills = map[string]bool{
	models.SkillSatellite: true,
	models.SkillStarlink:  true,
}

// AnswersFrom extracts classifier input from a submission.
func AnswersFrom(f models.ApplicantFields) Answers {
	f = f.Clean()
	return Answers{
		Skills:      f.Skills,
		HasVehicle:  f.VehicleType != "",
		VehicleType: f.VehicleType,
		License:     bool(f.License),
		Insurance:   f.Insurance,
	}
}

// Classify maps answers to an initial status: REJECTED when any hard
// requirement is missing, PRIORITY for insured satellite installers with a
// truck or van, QUALIFIED otherwise.
func Classify(a Answers) models.Status {
	if disqualified(a) {
		return models.StatusRejected
	}
	if priority(a) {
		return models.StatusPriority
	}
	return models.StatusQualified
}

func disqualified(a Answers) bool {
	return !hasAny(a.Skills, installSkills) ||
		!a.HasVehicle ||
		!a.License ||
		a.Insurance != models.InsuranceYes && a.Insurance != models.InsurancePending
}

// An SUV satisfies the vehicle requirement but not priority.
func priority(a Answers) bool {
	vt := models.NormalizeVehicleType(a.VehicleType)
	return hasAny(a.Skills, satelliteSkills) &&
		a.Insurance == models.InsuranceYes &&
		(vt == models.VehicleTruck || vt == models.VehicleVan)
}

func hasAny(tags []string, set map[string]bool) bool {
	for _, t := range tags {
		if set[t] {
			return true
		}
	}
	return false
}

// IntakePolicy stamps the status of a new submission.
type IntakePolicy func(models.ApplicantFields) models.Status

// ClassifyPolicy pre-classifies every submission.
func ClassifyPolicy(f models.ApplicantFields) models.Status {
	return Classify(AnswersFrom(f))
}

// ReviewPolicy leaves every submission as NEW for a human to judge.
func ReviewPolicy(models.ApplicantFields) models.Status {
	return models.StatusNew
}

// PolicyByName resolves the INTAKE_POLICY setting.
func PolicyByName(name string) (IntakePolicy, bool) {
	switch name {
	case "classify":
		return ClassifyPolicy, true
	case "review":
		return ReviewPolicy, true
	}
	return nil, false
}
