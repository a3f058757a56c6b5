package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"crewdesk/internal/models"

	"github.com/sirupsen/logrus"
)

var ErrValidation = errors.New("invalid application")

// Submission is one completed public application form.
type Submission struct {
	Fields models.ApplicantFields
	Photos []Photo
}

// IntakeService turns submissions into stored applicants.
type IntakeService struct {
	repo     ApplicantRepository
	photos   *PhotoUploader
	notifier Notifier
	log      logrus.FieldLogger
}

func NewIntakeService(repo ApplicantRepository, photos *PhotoUploader, notifier Notifier, log logrus.FieldLogger) *IntakeService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &IntakeService{repo: repo, photos: photos, notifier: notifier, log: log}
}

// Validate checks the fields the form marks as required.
func Validate(f models.ApplicantFields) error {
	var problems []string
	if strings.TrimSpace(f.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(f.Phone) == "" {
		problems = append(problems, "phone is required")
	}
	if e := strings.TrimSpace(f.Email); e != "" {
		if _, err := mail.ParseAddress(e); err != nil {
			problems = append(problems, "email is not valid")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// Submit stores the application. Photos are uploaded first and silently
// dropped on failure; the initial status is decided by the repository.
func (s *IntakeService) Submit(ctx context.Context, sub Submission) (*models.Applicant, error) {
	f := sub.Fields.Clean()
	if err := Validate(f); err != nil {
		return nil, err
	}

	for i, p := range sub.Photos {
		if i >= 2 {
			s.log.WithField("count", len(sub.Photos)).Warn("extra photos ignored")
			break
		}
		u := s.photos.Upload(ctx, f.Name, p)
		if i == 0 {
			f.Photo1URL = u
		} else {
			f.Photo2URL = u
		}
	}

	a, err := s.repo.Insert(ctx, f)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{"applicant_id": a.ID, "status": a.Status})
	log.Info("application received")

	if a.Status == models.StatusPriority {
		if err := s.notifier.NotifyApplicant(ctx, a); err != nil {
			log.WithError(err).Warn("priority alert failed")
		}
	}
	return a, nil
}
