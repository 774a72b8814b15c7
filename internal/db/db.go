package db

import (
	"fmt"

	"relearn/internal/auth"
	"relearn/internal/push"
	"relearn/internal/question"
	"relearn/internal/source"
	"relearn/internal/study"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&source.Page{},
		&source.PageSnapshot{},
		&study.StudyPlan{},
		&study.StudySchedule{},
		&question.Question{},
		&question.QuestionAttempt{},
		&question.QuestionStatus{},
		&push.PushToken{},
		&push.PushSendLog{},
	); err != nil {
		return err
	}

	// One day per plan
	if err := gdb.Exec(`create unique index if not exists uq_schedules_plan_day on study_schedules(plan_id, day_index);`).Error; err != nil {
		return err
	}

	// Claim query: status filter then due ordering
	if err := gdb.Exec(`create index if not exists idx_schedules_due on study_schedules(status, scheduled_at);`).Error; err != nil {
		return err
	}

	// One status row per (user, question); resubmissions update in place
	if err := gdb.Exec(`create unique index if not exists uq_question_status_user_question on question_statuses(user_id, question_id);`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_snapshots_page_created on page_snapshots(page_id, created_at desc);`,
		`create index if not exists idx_questions_schedule_snapshot on questions(schedule_id, snapshot_id);`,
		`create index if not exists idx_push_logs_user_created on push_send_logs(user_id, created_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
