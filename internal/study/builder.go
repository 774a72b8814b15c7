package study

import "time"

// BuildScheduleSeeds returns one PENDING schedule per day, dayIndex 0..days-1.
// Day N is scheduled at local midnight of (anchor's local date + N days),
// expressed as a UTC instant. "Local" means the plan's fixed numeric offset;
// no IANA tables, so DST transitions are not accounted for. Pure given anchor.
func BuildScheduleSeeds(planID string, days int, anchor time.Time, offset time.Duration) []*StudySchedule {
	seeds := make([]*StudySchedule, 0, days)
	shifted := anchor.UTC().Add(offset)

	for i := 0; i < days; i++ {
		y, m, d := shifted.AddDate(0, 0, i).Date()
		localMidnightUTC := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(-offset)

		seeds = append(seeds, &StudySchedule{
			PlanID:      planID,
			DayIndex:    i,
			ScheduledAt: localMidnightUTC,
			Status:      SchedulePending,
		})
	}
	return seeds
}

// DateInZone formats t's calendar date in the fixed-offset zone.
func DateInZone(t time.Time, offset time.Duration) string {
	return t.UTC().Add(offset).Format("2006-01-02")
}
