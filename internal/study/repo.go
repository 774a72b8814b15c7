package study

import (
	"context"
	"errors"

	"relearn/internal/push"
	"relearn/internal/question"
	"relearn/internal/source"

	"gorm.io/gorm"
)

// Repo implements the engine's store interfaces on gorm/Postgres.
type Repo struct {
	DB *gorm.DB
}

func (r *Repo) FindPlan(ctx context.Context, planID string) (*StudyPlan, error) {
	var plan StudyPlan
	err := r.DB.WithContext(ctx).Where("plan_id=?", planID).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *Repo) CreatePlan(ctx context.Context, plan *StudyPlan) error {
	return r.DB.WithContext(ctx).Create(plan).Error
}

func (r *Repo) CreateSchedules(ctx context.Context, seeds []*StudySchedule) error {
	if len(seeds) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(seeds).Error
}

func (r *Repo) SaveSchedule(ctx context.Context, s *StudySchedule) error {
	return r.DB.WithContext(ctx).Save(s).Error
}

func (r *Repo) OwnsPage(ctx context.Context, userID, pageID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&source.Page{}).
		Where("page_id=? AND user_id=?", pageID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repo) CountForSchedule(ctx context.Context, scheduleID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&question.Question{}).
		Where("schedule_id=?", scheduleID).
		Count(&count).Error
	return count, err
}

func (r *Repo) DeleteForSchedule(ctx context.Context, scheduleID string) error {
	return r.DB.WithContext(ctx).
		Where("schedule_id=?", scheduleID).
		Delete(&question.Question{}).Error
}

// SnapshotLookup adapts source.Service to the engine's SnapshotStore.
type SnapshotLookup struct {
	Source *source.Service
}

func (l *SnapshotLookup) LatestSnapshot(ctx context.Context, pageID string) (*Snapshot, error) {
	snap, err := l.Source.LatestSnapshot(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}
	return &Snapshot{SnapshotID: snap.SnapshotID}, nil
}

// QuestionGenerator adapts question.GenerationService to the engine's
// Generator.
type QuestionGenerator struct {
	Questions *question.GenerationService
}

func (g *QuestionGenerator) GenerateForSchedule(ctx context.Context, snapshotID string, count int, scheduleID string) error {
	_, err := g.Questions.GenerateFromSnapshot(ctx, snapshotID, count, &scheduleID)
	return err
}

// PushNotifier adapts push.Service to the engine's Notifier. The engine
// sends the default review reminder; invalid-token cleanup stays inside the
// push service.
type PushNotifier struct {
	Push *push.Service
}

func (n *PushNotifier) NotifyUser(ctx context.Context, userID string) (DeliveryResult, error) {
	res, err := n.Push.SendToUser(ctx, userID, push.Notification{})
	if err != nil {
		return DeliveryResult{}, err
	}
	return DeliveryResult{
		SuccessCount: res.SuccessCount,
		FailureCount: res.FailureCount,
	}, nil
}
