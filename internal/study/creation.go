package study

import (
	"context"
	"time"
)

const (
	MinDays            = 1
	MaxDays            = 5
	MinQuestionsPerDay = 3
	MaxQuestionsPerDay = 7
	MaxTotalQuestions  = 35
)

type CreatePlanInput struct {
	PageID          string
	Days            int
	QuestionsPerDay int
}

type PlanSummary struct {
	PlanID          string `json:"plan_id"`
	PageID          string `json:"page_id"`
	Days            int    `json:"days"`
	QuestionsPerDay int    `json:"questions_per_day"`
	TotalQuestions  int    `json:"total_questions"`
	StartsAt        string `json:"starts_at"`
	Timezone        string `json:"timezone"`
}

// PlanService creates plans and eagerly generates every day's questions from
// the page's current latest snapshot.
type PlanService struct {
	Plans     PlanStore
	Schedules ScheduleStore
	Pages     PageStore
	Snapshots SnapshotStore
	Generator Generator

	TZOffset time.Duration
	TZName   string

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

func ValidatePlanInput(in CreatePlanInput) error {
	if in.PageID == "" {
		return &ValidationError{Field: "page_id", Message: "required"}
	}
	if in.Days < MinDays || in.Days > MaxDays {
		return &ValidationError{Field: "days", Message: "must be between 1 and 5"}
	}
	if in.QuestionsPerDay < MinQuestionsPerDay || in.QuestionsPerDay > MaxQuestionsPerDay {
		return &ValidationError{Field: "questions_per_day", Message: "must be between 3 and 7"}
	}
	if in.Days*in.QuestionsPerDay > MaxTotalQuestions {
		return &ValidationError{Field: "days", Message: "total question count must be at most 35"}
	}
	return nil
}

// CreatePlan validates, persists the plan and its schedule seeds, then runs
// first-time generation for every day against the latest snapshot. When the
// page has no snapshot yet, every seed is marked FAILED and
// ErrSnapshotNotFound is returned. The persisted plan stays; a snapshot
// ingested later does not revive it. A generation failure on one day is
// recorded on that day alone and never aborts the others, so a successful
// return still requires inspecting per-day status.
func (s *PlanService) CreatePlan(ctx context.Context, userID string, in CreatePlanInput) (*PlanSummary, error) {
	if err := ValidatePlanInput(in); err != nil {
		return nil, err
	}

	owns, err := s.Pages.OwnsPage(ctx, userID, in.PageID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, ErrPageNotOwned
	}

	now := s.now()
	plan := &StudyPlan{
		UserID:          userID,
		PageID:          in.PageID,
		Days:            in.Days,
		QuestionsPerDay: in.QuestionsPerDay,
		TotalQuestions:  in.Days * in.QuestionsPerDay,
		StartsAt:        DateInZone(now, s.TZOffset),
		Timezone:        s.TZName,
		Status:          PlanActive,
	}
	if err := s.Plans.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}

	seeds := BuildScheduleSeeds(plan.PlanID, in.Days, now, s.TZOffset)
	if err := s.Schedules.CreateSchedules(ctx, seeds); err != nil {
		return nil, err
	}

	latest, err := s.Snapshots.LatestSnapshot(ctx, plan.PageID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		for _, sched := range seeds {
			sched.Status = ScheduleFailed
			reason := "latest snapshot not found"
			sched.FailureReason = &reason
			if err := s.Schedules.SaveSchedule(ctx, sched); err != nil {
				return nil, err
			}
		}
		return nil, ErrSnapshotNotFound
	}

	for _, sched := range seeds {
		if err := s.Generator.GenerateForSchedule(ctx, latest.SnapshotID, plan.QuestionsPerDay, sched.ScheduleID); err != nil {
			sched.Status = ScheduleFailed
			reason := err.Error()
			sched.FailureReason = &reason
		} else {
			snapshotID := latest.SnapshotID
			generatedAt := s.now()
			sched.SnapshotID = &snapshotID
			sched.GeneratedAt = &generatedAt
			sched.FailureReason = nil
		}
		if err := s.Schedules.SaveSchedule(ctx, sched); err != nil {
			return nil, err
		}
	}

	return &PlanSummary{
		PlanID:          plan.PlanID,
		PageID:          plan.PageID,
		Days:            plan.Days,
		QuestionsPerDay: plan.QuestionsPerDay,
		TotalQuestions:  plan.TotalQuestions,
		StartsAt:        plan.StartsAt,
		Timezone:        plan.Timezone,
	}, nil
}

func (s *PlanService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
