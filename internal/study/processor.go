package study

import (
	"context"
	"errors"
	"log"
	"time"
)

// Processor runs the per-item pipeline for a claimed schedule: decide
// whether the questions must be regenerated, regenerate, deliver, record the
// outcome. A stale lease may hand the same schedule to another worker, so
// every side effect tolerates repeat invocation: regeneration is gated on
// the snapshot id and uses delete-then-regenerate.
type Processor struct {
	Plans     PlanStore
	Schedules ScheduleStore
	Snapshots SnapshotStore
	Questions QuestionStore
	Generator Generator
	Notifier  Notifier

	Now func() time.Time
}

// ProcessSchedule never reports an error: failures land on the schedule row
// as FAILED with a reason, so one bad item cannot take down its batch or the
// loop driving it.
func (p *Processor) ProcessSchedule(ctx context.Context, sched *StudySchedule) {
	if err := p.process(ctx, sched); err != nil {
		sched.Status = ScheduleFailed
		reason := err.Error()
		sched.FailureReason = &reason
		if saveErr := p.Schedules.SaveSchedule(ctx, sched); saveErr != nil {
			log.Printf("schedule %s: failed to persist failure: %v\n", sched.ScheduleID, saveErr)
		}
	}
}

func (p *Processor) process(ctx context.Context, sched *StudySchedule) error {
	plan, err := p.Plans.FindPlan(ctx, sched.PlanID)
	if err != nil {
		return err
	}
	if plan == nil {
		return errors.New("plan not found")
	}

	latest, err := p.Snapshots.LatestSnapshot(ctx, plan.PageID)
	if err != nil {
		return err
	}
	if latest == nil {
		return errors.New("latest snapshot not found")
	}

	existing, err := p.Questions.CountForSchedule(ctx, sched.ScheduleID)
	if err != nil {
		return err
	}
	needsRegenerate := existing == 0 ||
		sched.SnapshotID == nil || *sched.SnapshotID != latest.SnapshotID

	if needsRegenerate {
		if err := p.Questions.DeleteForSchedule(ctx, sched.ScheduleID); err != nil {
			return err
		}
		if err := p.Generator.GenerateForSchedule(ctx, latest.SnapshotID, plan.QuestionsPerDay, sched.ScheduleID); err != nil {
			return err
		}
		snapshotID := latest.SnapshotID
		generatedAt := p.now()
		sched.SnapshotID = &snapshotID
		sched.GeneratedAt = &generatedAt
	}

	result, err := p.Notifier.NotifyUser(ctx, plan.UserID)
	if err != nil {
		return err
	}
	if result.SuccessCount == 0 && result.FailureCount > 0 {
		return errors.New("push send failed")
	}

	sched.Status = ScheduleSent
	sched.FailureReason = nil
	return p.Schedules.SaveSchedule(ctx, sched)
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
