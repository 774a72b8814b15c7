package question

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Question is one generated study item, tied to the snapshot it was derived
// from and optionally to the schedule day it belongs to.
type Question struct {
	QuestionID string    `gorm:"column:question_id;type:uuid;primaryKey"`
	SnapshotID string    `gorm:"column:snapshot_id;type:uuid;index;not null"`
	ScheduleID *string   `gorm:"column:schedule_id;type:uuid;index"`
	Prompt     string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"not null;default:now()"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.QuestionID == "" {
		q.QuestionID = uuid.NewString()
	}
	return nil
}

// QuestionAttempt is one submitted answer and its AI grading. Score and
// AIFeedback stay null until evaluation completes, so a grading failure
// never loses the raw answer.
type QuestionAttempt struct {
	QuestionAttemptID string    `gorm:"column:question_attempt_id;type:uuid;primaryKey"`
	UserID            string    `gorm:"column:user_id;type:uuid;index;not null"`
	QuestionID        string    `gorm:"column:question_id;type:uuid;index;not null"`
	UserAnswer        string    `gorm:"column:user_answer;type:text;not null"`
	AIFeedback        *string   `gorm:"column:ai_feedback;type:text"`
	Score             *int      `gorm:"column:score"`
	CreatedAt         time.Time `gorm:"not null;default:now()"`
}

func (a *QuestionAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.QuestionAttemptID == "" {
		a.QuestionAttemptID = uuid.NewString()
	}
	return nil
}

// QuestionStatus holds the user's latest outcome for a question. One row
// per (user, question); resubmissions overwrite the status in place.
type QuestionStatus struct {
	QuestionStatusID string    `gorm:"column:question_status_id;type:uuid;primaryKey"`
	UserID           string    `gorm:"column:user_id;type:uuid;index;not null"`
	QuestionID       string    `gorm:"column:question_id;type:uuid;index;not null"`
	Status           string    `gorm:"type:varchar(20);not null"`
	CreatedAt        time.Time `gorm:"not null;default:now()"`
}

func (s *QuestionStatus) BeforeCreate(tx *gorm.DB) error {
	if s.QuestionStatusID == "" {
		s.QuestionStatusID = uuid.NewString()
	}
	return nil
}
