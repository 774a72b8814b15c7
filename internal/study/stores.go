package study

import (
	"context"
	"time"
)

// Snapshot is the slice of a content snapshot the engine cares about: its
// identity, compared against StudySchedule.SnapshotID.
type Snapshot struct {
	SnapshotID string
}

// DeliveryResult is the outcome of one notification fan-out.
type DeliveryResult struct {
	SuccessCount int
	FailureCount int
}

type PlanStore interface {
	// FindPlan returns nil when no plan exists with that id.
	FindPlan(ctx context.Context, planID string) (*StudyPlan, error)
	CreatePlan(ctx context.Context, plan *StudyPlan) error
}

type ScheduleStore interface {
	// CreateSchedules persists seeds and fills in their ScheduleIDs.
	CreateSchedules(ctx context.Context, seeds []*StudySchedule) error
	SaveSchedule(ctx context.Context, s *StudySchedule) error
}

type PageStore interface {
	OwnsPage(ctx context.Context, userID, pageID string) (bool, error)
}

type SnapshotStore interface {
	// LatestSnapshot returns nil when the page has never been captured.
	LatestSnapshot(ctx context.Context, pageID string) (*Snapshot, error)
}

type QuestionStore interface {
	CountForSchedule(ctx context.Context, scheduleID string) (int64, error)
	DeleteForSchedule(ctx context.Context, scheduleID string) error
}

type Generator interface {
	GenerateForSchedule(ctx context.Context, snapshotID string, count int, scheduleID string) error
}

type Notifier interface {
	NotifyUser(ctx context.Context, userID string) (DeliveryResult, error)
}

// Claimer leases due schedules for exclusive processing.
type Claimer interface {
	ClaimDue(ctx context.Context, limit int, staleAfter time.Duration) ([]StudySchedule, error)
}

// ScheduleProcessor runs the per-item pipeline; it never reports an error
// because every failure is persisted onto the schedule itself.
type ScheduleProcessor interface {
	ProcessSchedule(ctx context.Context, s *StudySchedule)
}
