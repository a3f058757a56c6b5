package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crewdesk/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInterviewDisabled      = errors.New("skills interview is not enabled")
	ErrInterviewClosed        = errors.New("skills interview is finished")
	ErrInterviewerUnavailable = errors.New("interviewer unavailable")
)

// Interviewer writes the next hiring-manager message given the transcript
// so far and the applicant's newest answer.
type Interviewer interface {
	Reply(ctx context.Context, skills []string, history []models.InterviewTurn, answer string) (string, error)
}

// NopInterviewer is used when no model is configured.
type NopInterviewer struct{}

func (NopInterviewer) Reply(context.Context, []string, []models.InterviewTurn, string) (string, error) {
	return "", ErrInterviewDisabled
}

// OpeningQuestion is the first interviewer message, built from the skills
// the applicant ticked on the form.
func OpeningQuestion(skills []string) string {
	list := strings.Join(skills, ", ")
	if list == "" {
		list = "field installation"
	}
	return fmt.Sprintf("I see you have experience with: %s. Let's discuss that. "+
		"Pick one of those skills and tell me about a difficult installation you handled.", list)
}

// Interview is an applicant's transcript plus whether more answers are taken.
type Interview struct {
	Applicant *models.Applicant
	Turns     []models.InterviewTurn
	Open      bool
}

// InterviewService runs the optional post-submission skills interview and
// stores its transcript against the applicant.
type InterviewService struct {
	db          *gorm.DB
	applicants  ApplicantRepository
	interviewer Interviewer
	maxAnswers  int
	log         logrus.FieldLogger
	timeout     time.Duration
}

func NewInterviewService(db *gorm.DB, applicants ApplicantRepository, interviewer Interviewer, maxAnswers int, log logrus.FieldLogger) *InterviewService {
	if interviewer == nil {
		interviewer = NopInterviewer{}
	}
	return &InterviewService{
		db:          db,
		applicants:  applicants,
		interviewer: interviewer,
		maxAnswers:  maxAnswers,
		log:         log,
		timeout:     30 * time.Second,
	}
}

// Enabled reports whether a real interviewer is configured.
func (s *InterviewService) Enabled() bool {
	_, nop := s.interviewer.(NopInterviewer)
	return !nop
}

// Transcript returns the stored turns in the order they were spoken.
func (s *InterviewService) Transcript(ctx context.Context, id uuid.UUID) ([]models.InterviewTurn, error) {
	var turns []models.InterviewTurn
	err := s.db.WithContext(ctx).Where("applicant_id = ?", id).Order("id").Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("load interview %s: %w", id, err)
	}
	return turns, nil
}

func (s *InterviewService) load(ctx context.Context, id uuid.UUID) (*Interview, error) {
	if !s.Enabled() {
		return nil, ErrInterviewDisabled
	}
	a, err := s.applicants.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	turns, err := s.Transcript(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Interview{Applicant: a, Turns: turns, Open: models.Answers(turns) < s.maxAnswers}, nil
}

// Start returns the interview, asking the opening question on first visit.
func (s *InterviewService) Start(ctx context.Context, id uuid.UUID) (*Interview, error) {
	iv, err := s.load(ctx, id)
	if err != nil || len(iv.Turns) > 0 {
		return iv, err
	}
	opening := models.InterviewTurn{
		ApplicantID: id,
		Role:        models.RoleInterviewer,
		Content:     OpeningQuestion(iv.Applicant.Skills()),
	}
	if err := s.db.WithContext(ctx).Create(&opening).Error; err != nil {
		return nil, fmt.Errorf("start interview %s: %w", id, err)
	}
	iv.Turns = append(iv.Turns, opening)
	return iv, nil
}

// Answer records the applicant's reply and the interviewer's response.
// Nothing is stored when the interviewer fails, so the applicant can retry.
func (s *InterviewService) Answer(ctx context.Context, id uuid.UUID, answer string) (*Interview, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: answer is required", ErrValidation)
	}
	iv, err := s.Start(ctx, id)
	if err != nil {
		return nil, err
	}
	if !iv.Open {
		return iv, ErrInterviewClosed
	}

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	reply, err := s.interviewer.Reply(rctx, iv.Applicant.Skills(), iv.Turns, answer)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		s.log.WithError(err).WithField("applicant_id", id).Warn("interviewer did not reply")
		return iv, fmt.Errorf("%w: %v", ErrInterviewerUnavailable, err)
	}

	turns := []models.InterviewTurn{
		{ApplicantID: id, Role: models.RoleApplicant, Content: answer},
		{ApplicantID: id, Role: models.RoleInterviewer, Content: strings.TrimSpace(reply)},
	}
	if err := s.db.WithContext(ctx).Create(&turns).Error; err != nil {
		return nil, fmt.Errorf("save interview %s: %w", id, err)
	}
	iv.Turns = append(iv.Turns, turns...)
	iv.Open = models.Answers(iv.Turns) < s.maxAnswers
	return iv, nil
}
