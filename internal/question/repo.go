package question

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttemptRepo is the gorm-backed AttemptStore.
type AttemptRepo struct {
	DB *gorm.DB
}

func (r *AttemptRepo) FindQuestion(ctx context.Context, questionID string) (*Question, error) {
	var q Question
	err := r.DB.WithContext(ctx).
		Where("question_id=?", questionID).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *AttemptRepo) CreateAttempt(ctx context.Context, a *QuestionAttempt) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *AttemptRepo) SaveAttempt(ctx context.Context, a *QuestionAttempt) error {
	return r.DB.WithContext(ctx).Save(a).Error
}

// UpsertStatus locks the existing row so two concurrent submissions for the
// same (user, question) serialize instead of violating the unique index.
func (r *AttemptRepo) UpsertStatus(ctx context.Context, userID, questionID, status string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing QuestionStatus
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id=? AND question_id=?", userID, questionID).
			First(&existing).Error
		if err == nil {
			existing.Status = status
			return tx.Save(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&QuestionStatus{
			UserID:     userID,
			QuestionID: questionID,
			Status:     status,
		}).Error
	})
}
