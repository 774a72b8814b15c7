package push

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PushToken struct {
	PushTokenID string    `gorm:"column:push_token_id;type:uuid;primaryKey"`
	UserID      string    `gorm:"column:user_id;type:uuid;index;not null"`
	Token       string    `gorm:"type:text;uniqueIndex;not null"`
	Platform    string    `gorm:"type:varchar(20);not null;default:'WEB'"`
	DeviceType  string    `gorm:"type:varchar(30);not null;default:'UNKNOWN'"`
	UserAgent   *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null;default:now()"`
	UpdatedAt   time.Time `gorm:"not null;default:now()"`
}

func (t *PushToken) BeforeCreate(tx *gorm.DB) error {
	if t.PushTokenID == "" {
		t.PushTokenID = uuid.NewString()
	}
	return nil
}

type PushSendLog struct {
	PushSendLogID string         `gorm:"column:push_send_log_id;type:uuid;primaryKey"`
	UserID        string         `gorm:"column:user_id;type:uuid;index;not null"`
	PushTokenID   *string        `gorm:"column:push_token_id;type:uuid"`
	Title         string         `gorm:"type:varchar(200);not null"`
	Body          string         `gorm:"type:varchar(2000);not null"`
	Data          datatypes.JSON `gorm:"type:jsonb"`
	Status        string         `gorm:"type:varchar(20);not null"`
	ErrorCode     *string        `gorm:"type:varchar(100)"`
	CreatedAt     time.Time      `gorm:"not null;default:now()"`
}

func (l *PushSendLog) BeforeCreate(tx *gorm.DB) error {
	if l.PushSendLogID == "" {
		l.PushSendLogID = uuid.NewString()
	}
	return nil
}
