package source

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Page is a connected upstream content page owned by one user.
type Page struct {
	PageID         string    `gorm:"column:page_id;type:uuid;primaryKey"`
	UserID         string    `gorm:"column:user_id;type:uuid;index;not null"`
	ExternalPageID string    `gorm:"column:external_page_id;uniqueIndex;not null"`
	Title          string    `gorm:"type:text;not null"`
	URL            string    `gorm:"column:url;type:text;not null"`
	IsConnected    bool      `gorm:"not null;default:true"`
	ConnectedAt    time.Time `gorm:"not null;default:now()"`
	CreatedAt      time.Time `gorm:"not null;default:now()"`
}

func (p *Page) BeforeCreate(tx *gorm.DB) error {
	if p.PageID == "" {
		p.PageID = uuid.NewString()
	}
	return nil
}

// PageSnapshot is an immutable versioned capture of a page's content.
// ContentHash dedupes identical captures; SnapshotID is the idempotency
// signal the schedule engine compares against.
type PageSnapshot struct {
	SnapshotID  string         `gorm:"column:snapshot_id;type:uuid;primaryKey"`
	PageID      string         `gorm:"column:page_id;type:uuid;index;not null"`
	Content     datatypes.JSON `gorm:"type:jsonb;not null"`
	ContentHash string         `gorm:"column:content_hash;type:varchar(64);uniqueIndex;not null"`
	CreatedAt   time.Time      `gorm:"not null;default:now()"`
}

func (s *PageSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.SnapshotID == "" {
		s.SnapshotID = uuid.NewString()
	}
	return nil
}
