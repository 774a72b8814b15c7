package study

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type fakePlanStore struct {
	plans map[string]*StudyPlan
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{plans: map[string]*StudyPlan{}}
}

func (f *fakePlanStore) FindPlan(ctx context.Context, planID string) (*StudyPlan, error) {
	p, ok := f.plans[planID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlanStore) CreatePlan(ctx context.Context, plan *StudyPlan) error {
	if plan.PlanID == "" {
		plan.PlanID = fmt.Sprintf("plan-%d", len(f.plans)+1)
	}
	cp := *plan
	f.plans[plan.PlanID] = &cp
	return nil
}

type fakeScheduleStore struct {
	created []*StudySchedule
	saved   []StudySchedule
}

func (f *fakeScheduleStore) CreateSchedules(ctx context.Context, seeds []*StudySchedule) error {
	for i, s := range seeds {
		if s.ScheduleID == "" {
			s.ScheduleID = fmt.Sprintf("sched-%d", len(f.created)+i+1)
		}
	}
	f.created = append(f.created, seeds...)
	return nil
}

func (f *fakeScheduleStore) SaveSchedule(ctx context.Context, s *StudySchedule) error {
	f.saved = append(f.saved, *s)
	return nil
}

func (f *fakeScheduleStore) lastSaved(scheduleID string) (StudySchedule, bool) {
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].ScheduleID == scheduleID {
			return f.saved[i], true
		}
	}
	return StudySchedule{}, false
}

type fakePageStore struct {
	owner map[string]string // pageID -> userID
}

func (f *fakePageStore) OwnsPage(ctx context.Context, userID, pageID string) (bool, error) {
	return f.owner[pageID] == userID, nil
}

type fakeSnapshotStore struct {
	snap *Snapshot
	err  error
}

func (f *fakeSnapshotStore) LatestSnapshot(ctx context.Context, pageID string) (*Snapshot, error) {
	return f.snap, f.err
}

type fakeQuestionStore struct {
	counts  map[string]int64
	deleted []string
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{counts: map[string]int64{}}
}

func (f *fakeQuestionStore) CountForSchedule(ctx context.Context, scheduleID string) (int64, error) {
	return f.counts[scheduleID], nil
}

func (f *fakeQuestionStore) DeleteForSchedule(ctx context.Context, scheduleID string) error {
	f.deleted = append(f.deleted, scheduleID)
	f.counts[scheduleID] = 0
	return nil
}

type genCall struct {
	snapshotID string
	count      int
	scheduleID string
}

type fakeGenerator struct {
	calls   []genCall
	failFor map[string]error // by scheduleID
}

func (f *fakeGenerator) GenerateForSchedule(ctx context.Context, snapshotID string, count int, scheduleID string) error {
	f.calls = append(f.calls, genCall{snapshotID: snapshotID, count: count, scheduleID: scheduleID})
	if f.failFor != nil {
		if err, ok := f.failFor[scheduleID]; ok {
			return err
		}
	}
	return nil
}

type fakeNotifier struct {
	result DeliveryResult
	err    error
	calls  int
}

func (f *fakeNotifier) NotifyUser(ctx context.Context, userID string) (DeliveryResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeClaimer struct {
	mu      sync.Mutex
	batches [][]StudySchedule
	err     error
	calls   int
}

func (f *fakeClaimer) ClaimDue(ctx context.Context, limit int, staleAfter time.Duration) ([]StudySchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeClaimer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeProcessor struct {
	mu        sync.Mutex
	processed []string
}

func (f *fakeProcessor) ProcessSchedule(ctx context.Context, s *StudySchedule) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, s.ScheduleID)
}

func (f *fakeProcessor) processedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.processed...)
}
