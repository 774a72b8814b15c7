package study

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"
)

// ClaimService leases due schedules. Correctness across any number of
// concurrent workers rests on Postgres row locks plus SKIP LOCKED: two
// overlapping claims never return the same row, and rows locked by another
// claim are skipped instead of waited on.
type ClaimService struct {
	DB *gorm.DB
}

// ClaimDue transitions up to limit due rows to PROCESSING and returns them.
// Eligible rows are PENDING rows whose scheduled_at has passed, plus
// PROCESSING rows untouched for longer than staleAfter, so a worker that
// died mid-item is reclaimable once its lease goes stale. The transaction covers
// only the select+update; no external call ever runs under the lock.
func (c *ClaimService) ClaimDue(ctx context.Context, limit int, staleAfter time.Duration) ([]StudySchedule, error) {
	var claimed []StudySchedule

	err := c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Raw(`
with due as (
  select schedule_id
  from study_schedules
  where scheduled_at <= now()
    and (
      status = 'PENDING'
      or (status = 'PROCESSING' and updated_at <= now() - make_interval(secs => ?))
    )
  order by scheduled_at asc
  limit ?
  for update skip locked
)
update study_schedules
set status = 'PROCESSING', failure_reason = null, updated_at = now()
where schedule_id in (select schedule_id from due)
returning *;
`, staleAfter.Seconds(), limit).Scan(&claimed).Error
	})
	if err != nil {
		return nil, err
	}

	// RETURNING rows come back in update order; process oldest first.
	sort.Slice(claimed, func(i, j int) bool {
		return claimed[i].ScheduledAt.Before(claimed[j].ScheduledAt)
	})
	return claimed, nil
}
