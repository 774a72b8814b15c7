package study

import (
	"context"
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func newProcessor(plans *fakePlanStore, snaps *fakeSnapshotStore, questions *fakeQuestionStore, gen *fakeGenerator, notifier *fakeNotifier) (*Processor, *fakeScheduleStore) {
	schedules := &fakeScheduleStore{}
	p := &Processor{
		Plans:     plans,
		Schedules: schedules,
		Snapshots: snaps,
		Questions: questions,
		Generator: gen,
		Notifier:  notifier,
		Now:       func() time.Time { return time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC) },
	}
	return p, schedules
}

func activePlan() *fakePlanStore {
	plans := newFakePlanStore()
	plans.plans["plan-1"] = &StudyPlan{
		PlanID:          "plan-1",
		UserID:          "user-1",
		PageID:          "page-1",
		Days:            3,
		QuestionsPerDay: 5,
		Status:          PlanActive,
	}
	return plans
}

func claimedSchedule() *StudySchedule {
	return &StudySchedule{
		ScheduleID: "sched-1",
		PlanID:     "plan-1",
		DayIndex:   0,
		Status:     ScheduleProcessing,
	}
}

func TestProcessScheduleSkipsRegenerationWhenCurrent(t *testing.T) {
	questions := newFakeQuestionStore()
	questions.counts["sched-1"] = 5
	gen := &fakeGenerator{}
	notifier := &fakeNotifier{result: DeliveryResult{SuccessCount: 1}}
	p, schedules := newProcessor(activePlan(), &fakeSnapshotStore{snap: &Snapshot{SnapshotID: "snap-1"}}, questions, gen, notifier)

	sched := claimedSchedule()
	sched.SnapshotID = strPtr("snap-1")

	p.ProcessSchedule(context.Background(), sched)

	if len(gen.calls) != 0 {
		t.Fatal("generator must not run when snapshot matches and questions exist")
	}
	if len(questions.deleted) != 0 {
		t.Fatal("no questions should be deleted")
	}
	if sched.Status != ScheduleSent {
		t.Fatalf("status %q, want SENT", sched.Status)
	}
	if sched.FailureReason != nil {
		t.Fatalf("failure reason %v", *sched.FailureReason)
	}
	if _, ok := schedules.lastSaved("sched-1"); !ok {
		t.Fatal("final state never persisted")
	}
	if notifier.calls != 1 {
		t.Fatalf("notifier called %d times", notifier.calls)
	}
}

func TestProcessScheduleRegeneratesOnSnapshotDrift(t *testing.T) {
	questions := newFakeQuestionStore()
	questions.counts["sched-1"] = 5
	gen := &fakeGenerator{}
	notifier := &fakeNotifier{result: DeliveryResult{SuccessCount: 1}}
	p, _ := newProcessor(activePlan(), &fakeSnapshotStore{snap: &Snapshot{SnapshotID: "snap-2"}}, questions, gen, notifier)

	sched := claimedSchedule()
	sched.SnapshotID = strPtr("snap-1")

	p.ProcessSchedule(context.Background(), sched)

	if len(questions.deleted) != 1 || questions.deleted[0] != "sched-1" {
		t.Fatalf("stale questions not deleted: %v", questions.deleted)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.calls))
	}
	if gen.calls[0].snapshotID != "snap-2" || gen.calls[0].count != 5 {
		t.Fatalf("wrong generator call: %+v", gen.calls[0])
	}
	if sched.SnapshotID == nil || *sched.SnapshotID != "snap-2" {
		t.Fatal("snapshot id not advanced")
	}
	if sched.GeneratedAt == nil {
		t.Fatal("generated_at not set")
	}
	if sched.Status != ScheduleSent {
		t.Fatalf("status %q", sched.Status)
	}
}

func TestProcessScheduleRegeneratesWhenNoQuestions(t *testing.T) {
	questions := newFakeQuestionStore() // zero questions
	gen := &fakeGenerator{}
	notifier := &fakeNotifier{result: DeliveryResult{SuccessCount: 1}}
	p, _ := newProcessor(activePlan(), &fakeSnapshotStore{snap: &Snapshot{SnapshotID: "snap-1"}}, questions, gen, notifier)

	sched := claimedSchedule()
	sched.SnapshotID = strPtr("snap-1") // matches, but nothing generated yet

	p.ProcessSchedule(context.Background(), sched)

	if len(gen.calls) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.calls))
	}
	if sched.Status != ScheduleSent {
		t.Fatalf("status %q", sched.Status)
	}
}

func TestProcessScheduleGeneratorFailureIsolatedFromSiblings(t *testing.T) {
	questions := newFakeQuestionStore()
	gen := &fakeGenerator{failFor: map[string]error{"sched-1": errors.New("generation quota exceeded")}}
	notifier := &fakeNotifier{result: DeliveryResult{SuccessCount: 1}}
	p, schedules := newProcessor(activePlan(), &fakeSnapshotStore{snap: &Snapshot{SnapshotID: "snap-1"}}, questions, gen, notifier)

	first := claimedSchedule()
	second := claimedSchedule()
	second.ScheduleID = "sched-2"
	second.DayIndex = 1

	p.ProcessSchedule(context.Background(), first)
	p.ProcessSchedule(context.Background(), second)

	if first.Status != ScheduleFailed {
		t.Fatalf("first status %q, want FAILED", first.Status)
	}
	if first.FailureReason == nil || *first.FailureReason != "generation quota exceeded" {
		t.Fatalf("first failure reason %v", first.FailureReason)
	}
	if saved, _ := schedules.lastSaved("sched-1"); saved.Status != ScheduleFailed {
		t.Fatal("first failure not persisted")
	}

	if second.Status != ScheduleSent {
		t.Fatalf("second status %q, want SENT", second.Status)
	}
	if notifier.calls != 1 {
		t.Fatalf("notifier called %d times, want 1 (only for the surviving item)", notifier.calls)
	}
}

func TestProcessScheduleDeliveryTotalFailure(t *testing.T) {
	questions := newFakeQuestionStore()
	questions.counts["sched-1"] = 5
	notifier := &fakeNotifier{result: DeliveryResult{SuccessCount: 0, FailureCount: 2}}
	p, _ := newProcessor(activePlan(), &fakeSnapshotStore{snap: &Snapshot{SnapshotID: "snap-1"}}, questions, &fakeGenerator{}, notifier)

	sched := claimedSchedule()
	sched.SnapshotID = strPtr("snap-1")

	p.ProcessSchedule(context.Background(), sched)

	if sched.Status != ScheduleFailed {
		t.Fatalf("status %q, want FAILED", sched.Status)
	}
	if sched.FailureReason == nil || *sched.FailureReason != "push send failed" {
		t.Fatalf("failure reason %v", sched.FailureReason)
	}
}

func TestProcessSchedulePartialDeliveryCountsAsSent(t *testing.T) {
	questions := newFakeQuestionStore()
	questions.counts["sched-1"] = 5
	notifier := &fakeNotifier{result: DeliveryResult{SuccessCount: 1, FailureCount: 3}}
	p, _ := newProcessor(activePlan(), &fakeSnapshotStore{snap: &Snapshot{SnapshotID: "snap-1"}}, questions, &fakeGenerator{}, notifier)

	sched := claimedSchedule()
	sched.SnapshotID = strPtr("snap-1")

	p.ProcessSchedule(context.Background(), sched)

	if sched.Status != ScheduleSent {
		t.Fatalf("status %q, want SENT", sched.Status)
	}
}

func TestProcessScheduleNoTokensCountsAsSent(t *testing.T) {
	questions := newFakeQuestionStore()
	questions.counts["sched-1"] = 5
	notifier := &fakeNotifier{result: DeliveryResult{}}
	p, _ := newProcessor(activePlan(), &fakeSnapshotStore{snap: &Snapshot{SnapshotID: "snap-1"}}, questions, &fakeGenerator{}, notifier)

	sched := claimedSchedule()
	sched.SnapshotID = strPtr("snap-1")

	p.ProcessSchedule(context.Background(), sched)

	if sched.Status != ScheduleSent {
		t.Fatalf("status %q, want SENT", sched.Status)
	}
}

func TestProcessSchedulePlanMissing(t *testing.T) {
	p, schedules := newProcessor(newFakePlanStore(), &fakeSnapshotStore{}, newFakeQuestionStore(), &fakeGenerator{}, &fakeNotifier{})

	sched := claimedSchedule()
	p.ProcessSchedule(context.Background(), sched)

	if sched.Status != ScheduleFailed {
		t.Fatalf("status %q", sched.Status)
	}
	if sched.FailureReason == nil || *sched.FailureReason != "plan not found" {
		t.Fatalf("failure reason %v", sched.FailureReason)
	}
	if _, ok := schedules.lastSaved("sched-1"); !ok {
		t.Fatal("failure not persisted")
	}
}

func TestProcessScheduleSnapshotMissing(t *testing.T) {
	p, _ := newProcessor(activePlan(), &fakeSnapshotStore{snap: nil}, newFakeQuestionStore(), &fakeGenerator{}, &fakeNotifier{})

	sched := claimedSchedule()
	p.ProcessSchedule(context.Background(), sched)

	if sched.Status != ScheduleFailed {
		t.Fatalf("status %q", sched.Status)
	}
	if sched.FailureReason == nil || *sched.FailureReason != "latest snapshot not found" {
		t.Fatalf("failure reason %v", sched.FailureReason)
	}
}

func TestProcessScheduleNotifierErrorFailsItem(t *testing.T) {
	questions := newFakeQuestionStore()
	questions.counts["sched-1"] = 5
	notifier := &fakeNotifier{err: errors.New("push transport down")}
	p, _ := newProcessor(activePlan(), &fakeSnapshotStore{snap: &Snapshot{SnapshotID: "snap-1"}}, questions, &fakeGenerator{}, notifier)

	sched := claimedSchedule()
	sched.SnapshotID = strPtr("snap-1")

	p.ProcessSchedule(context.Background(), sched)

	if sched.Status != ScheduleFailed {
		t.Fatalf("status %q", sched.Status)
	}
	if sched.FailureReason == nil || *sched.FailureReason != "push transport down" {
		t.Fatalf("failure reason %v", sched.FailureReason)
	}
}
