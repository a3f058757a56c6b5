package models

import (
	"time"

	"github.com/google/uuid"
)

// InterviewRole names the speaker of one interview turn.
type InterviewRole string

const (
	RoleInterviewer InterviewRole = "model"
	RoleApplicant   InterviewRole = "user"
)

// InterviewTurn is one message of an applicant's skills interview.
type InterviewTurn struct {
	ID          uint          `gorm:"primaryKey" json:"-"`
	ApplicantID uuid.UUID     `gorm:"type:uuid;index;not null" json:"applicant_id"`
	Role        InterviewRole `gorm:"type:varchar(8);not null" json:"role"`
	Content     string        `gorm:"type:text" json:"content"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (InterviewTurn) TableName() string { return "interview_turns" }

// Answers counts the applicant's turns.
func Answers(turns []InterviewTurn) int {
	n := 0
	for _, t := range turns {
		if t.Role == RoleApplicant {
			n++
		}
	}
	return n
}
