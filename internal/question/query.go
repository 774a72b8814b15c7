package question

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// QuestionView is the read shape for the question endpoints. Snapshot and
// schedule linkage stay internal.
type QuestionView struct {
	QuestionID string    `json:"question_id"`
	Prompt     string    `json:"prompt"`
	CreatedAt  time.Time `json:"created_at"`
}

// QueryService reads questions through page ownership. Every lookup joins
// back to the user's pages, so one user can never see another's questions.
type QueryService struct {
	DB *gorm.DB
}

// WaitingQuestion returns the newest question on the user's pages that the
// user has not attempted yet, or nil when nothing is waiting.
func (s *QueryService) WaitingQuestion(ctx context.Context, userID string) (*QuestionView, error) {
	var rows []Question
	err := s.DB.WithContext(ctx).
		Model(&Question{}).
		Select("questions.*").
		Joins("join page_snapshots on page_snapshots.snapshot_id = questions.snapshot_id").
		Joins("join pages on pages.page_id = page_snapshots.page_id and pages.user_id = ?", userID).
		Joins("left join question_attempts on question_attempts.question_id = questions.question_id and question_attempts.user_id = ?", userID).
		Where("question_attempts.question_attempt_id is null").
		Order("questions.created_at desc").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toView(&rows[0]), nil
}

// FindOwned returns the question only when it hangs off one of the user's
// pages; nil otherwise. Not-owned and not-found are indistinguishable on
// purpose.
func (s *QueryService) FindOwned(ctx context.Context, userID, questionID string) (*QuestionView, error) {
	var q Question
	err := s.DB.WithContext(ctx).
		Model(&Question{}).
		Select("questions.*").
		Joins("join page_snapshots on page_snapshots.snapshot_id = questions.snapshot_id").
		Joins("join pages on pages.page_id = page_snapshots.page_id and pages.user_id = ?", userID).
		Where("questions.question_id = ?", questionID).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toView(&q), nil
}

func toView(q *Question) *QuestionView {
	return &QuestionView{
		QuestionID: q.QuestionID,
		Prompt:     q.Prompt,
		CreatedAt:  q.CreatedAt,
	}
}
