package study

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidatePlanInput(t *testing.T) {
	tests := []struct {
		name    string
		in      CreatePlanInput
		wantErr bool
	}{
		{"minimum", CreatePlanInput{PageID: "p", Days: 1, QuestionsPerDay: 3}, false},
		{"cap boundary", CreatePlanInput{PageID: "p", Days: 5, QuestionsPerDay: 7}, false},
		{"days too high", CreatePlanInput{PageID: "p", Days: 6, QuestionsPerDay: 3}, true},
		{"days zero", CreatePlanInput{PageID: "p", Days: 0, QuestionsPerDay: 3}, true},
		{"questions too low", CreatePlanInput{PageID: "p", Days: 3, QuestionsPerDay: 2}, true},
		{"questions too high", CreatePlanInput{PageID: "p", Days: 3, QuestionsPerDay: 8}, true},
		{"missing page", CreatePlanInput{Days: 3, QuestionsPerDay: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlanInput(tt.in)
			if tt.wantErr {
				if !IsValidationError(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func newPlanService(pages *fakePageStore, snaps *fakeSnapshotStore, gen *fakeGenerator) (*PlanService, *fakePlanStore, *fakeScheduleStore) {
	plans := newFakePlanStore()
	schedules := &fakeScheduleStore{}
	svc := &PlanService{
		Plans:     plans,
		Schedules: schedules,
		Pages:     pages,
		Snapshots: snaps,
		Generator: gen,
		TZOffset:  9 * time.Hour,
		TZName:    "Asia/Seoul",
		Now:       func() time.Time { return time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC) },
	}
	return svc, plans, schedules
}

func TestCreatePlanOwnershipRejected(t *testing.T) {
	pages := &fakePageStore{owner: map[string]string{"page-1": "someone-else"}}
	svc, plans, schedules := newPlanService(pages, &fakeSnapshotStore{}, &fakeGenerator{})

	_, err := svc.CreatePlan(context.Background(), "user-1", CreatePlanInput{
		PageID: "page-1", Days: 3, QuestionsPerDay: 5,
	})
	if !errors.Is(err, ErrPageNotOwned) {
		t.Fatalf("expected ErrPageNotOwned, got %v", err)
	}
	if len(plans.plans) != 0 || len(schedules.created) != 0 {
		t.Fatal("nothing should be persisted on ownership failure")
	}
}

func TestCreatePlanMissingSnapshotPersistsFailedPlan(t *testing.T) {
	pages := &fakePageStore{owner: map[string]string{"page-1": "user-1"}}
	gen := &fakeGenerator{}
	svc, plans, schedules := newPlanService(pages, &fakeSnapshotStore{snap: nil}, gen)

	_, err := svc.CreatePlan(context.Background(), "user-1", CreatePlanInput{
		PageID: "page-1", Days: 3, QuestionsPerDay: 5,
	})
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}

	// The plan and its schedules exist even though the caller got an error.
	if len(plans.plans) != 1 {
		t.Fatalf("expected the plan to be persisted, have %d", len(plans.plans))
	}
	if len(schedules.created) != 3 {
		t.Fatalf("expected 3 schedules, have %d", len(schedules.created))
	}
	for _, s := range schedules.created {
		saved, ok := schedules.lastSaved(s.ScheduleID)
		if !ok {
			t.Fatalf("schedule %s never saved", s.ScheduleID)
		}
		if saved.Status != ScheduleFailed {
			t.Errorf("schedule %s: status %q, want FAILED", s.ScheduleID, saved.Status)
		}
		if saved.FailureReason == nil || *saved.FailureReason != "latest snapshot not found" {
			t.Errorf("schedule %s: wrong failure reason %v", s.ScheduleID, saved.FailureReason)
		}
	}
	if len(gen.calls) != 0 {
		t.Fatal("generator must not be called without a snapshot")
	}
}

func TestCreatePlanGenerationFailureIsolated(t *testing.T) {
	pages := &fakePageStore{owner: map[string]string{"page-1": "user-1"}}
	snaps := &fakeSnapshotStore{snap: &Snapshot{SnapshotID: "snap-1"}}
	gen := &fakeGenerator{failFor: map[string]error{"sched-2": errors.New("model unavailable")}}
	svc, _, schedules := newPlanService(pages, snaps, gen)

	summary, err := svc.CreatePlan(context.Background(), "user-1", CreatePlanInput{
		PageID: "page-1", Days: 3, QuestionsPerDay: 5,
	})
	if err != nil {
		t.Fatalf("creation must succeed despite per-day failures: %v", err)
	}
	if summary.TotalQuestions != 15 {
		t.Fatalf("total questions %d, want 15", summary.TotalQuestions)
	}
	if len(gen.calls) != 3 {
		t.Fatalf("generator called %d times, want 3", len(gen.calls))
	}

	failed, _ := schedules.lastSaved("sched-2")
	if failed.Status != ScheduleFailed || failed.FailureReason == nil || *failed.FailureReason != "model unavailable" {
		t.Fatalf("failed day not recorded: %+v", failed)
	}

	for _, id := range []string{"sched-1", "sched-3"} {
		saved, _ := schedules.lastSaved(id)
		if saved.Status != SchedulePending {
			t.Errorf("%s: status %q, want PENDING for later delivery", id, saved.Status)
		}
		if saved.SnapshotID == nil || *saved.SnapshotID != "snap-1" {
			t.Errorf("%s: snapshot id not recorded", id)
		}
		if saved.GeneratedAt == nil {
			t.Errorf("%s: generated_at not set", id)
		}
	}
}

func TestCreatePlanSummaryFields(t *testing.T) {
	pages := &fakePageStore{owner: map[string]string{"page-1": "user-1"}}
	snaps := &fakeSnapshotStore{snap: &Snapshot{SnapshotID: "snap-1"}}
	svc, _, _ := newPlanService(pages, snaps, &fakeGenerator{})

	summary, err := svc.CreatePlan(context.Background(), "user-1", CreatePlanInput{
		PageID: "page-1", Days: 2, QuestionsPerDay: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.StartsAt != "2026-02-04" {
		t.Errorf("starts at %q", summary.StartsAt)
	}
	if summary.Timezone != "Asia/Seoul" {
		t.Errorf("timezone %q", summary.Timezone)
	}
	if summary.PageID != "page-1" || summary.Days != 2 || summary.QuestionsPerDay != 4 {
		t.Errorf("summary %+v", summary)
	}
}
