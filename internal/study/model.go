package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PlanActive = "ACTIVE"
	PlanDone   = "DONE"
)

// Schedule statuses. SENT and FAILED are terminal: the claim query never
// returns them, so neither is retried automatically.
const (
	SchedulePending    = "PENDING"
	ScheduleProcessing = "PROCESSING"
	ScheduleSent       = "SENT"
	ScheduleFailed     = "FAILED"
)

// StudyPlan is a user's request for Days days of generated questions from
// one connected page. Created once; the engine never mutates it.
type StudyPlan struct {
	PlanID          string    `gorm:"column:plan_id;type:uuid;primaryKey"`
	UserID          string    `gorm:"column:user_id;type:uuid;index;not null"`
	PageID          string    `gorm:"column:page_id;type:uuid;index;not null"`
	Days            int       `gorm:"not null"`
	QuestionsPerDay int       `gorm:"not null"`
	TotalQuestions  int       `gorm:"not null"`
	StartsAt        string    `gorm:"column:starts_at;type:date;not null"`
	Timezone        string    `gorm:"type:varchar(50);not null"`
	Status          string    `gorm:"type:varchar(20);not null"`
	CreatedAt       time.Time `gorm:"not null;default:now()"`
}

func (p *StudyPlan) BeforeCreate(tx *gorm.DB) error {
	if p.PlanID == "" {
		p.PlanID = uuid.NewString()
	}
	return nil
}

// StudySchedule is one day's unit of work within a plan. SnapshotID records
// which content version the current questions were generated from; comparing
// it to the page's latest snapshot is the regeneration idempotency signal.
// UpdatedAt doubles as the lease heartbeat for staleness detection.
type StudySchedule struct {
	ScheduleID    string     `gorm:"column:schedule_id;type:uuid;primaryKey"`
	PlanID        string     `gorm:"column:plan_id;type:uuid;index;not null"`
	DayIndex      int        `gorm:"column:day_index;not null"`
	ScheduledAt   time.Time  `gorm:"column:scheduled_at;not null"`
	SnapshotID    *string    `gorm:"column:snapshot_id;type:uuid"`
	GeneratedAt   *time.Time `gorm:"column:generated_at"`
	Status        string     `gorm:"type:varchar(20);not null"`
	FailureReason *string    `gorm:"column:failure_reason;type:text"`
	CreatedAt     time.Time  `gorm:"not null;default:now()"`
	UpdatedAt     time.Time  `gorm:"not null;default:now()"`
}

func (s *StudySchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ScheduleID == "" {
		s.ScheduleID = uuid.NewString()
	}
	return nil
}
