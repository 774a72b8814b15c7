package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrPageNotFound = errors.New("page not found")
var ErrEmptyContent = errors.New("snapshot content is empty")

type Service struct {
	DB *gorm.DB
}

type ConnectPageInput struct {
	ExternalPageID string
	Title          string
	URL            string
}

func (s *Service) ConnectPage(ctx context.Context, userID string, in ConnectPageInput) (*Page, error) {
	p := Page{
		UserID:         userID,
		ExternalPageID: strings.TrimSpace(in.ExternalPageID),
		Title:          strings.TrimSpace(in.Title),
		URL:            strings.TrimSpace(in.URL),
		IsConnected:    true,
		ConnectedAt:    time.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// IngestSnapshot stores a new capture of the page's content. A capture whose
// hash matches an existing snapshot returns that snapshot instead of
// creating a new version, so unchanged content never triggers regeneration.
func (s *Service) IngestSnapshot(ctx context.Context, userID, pageID string, content datatypes.JSON) (*PageSnapshot, error) {
	if len(content) == 0 {
		return nil, ErrEmptyContent
	}

	var page Page
	if err := s.DB.WithContext(ctx).
		Where("page_id=? AND user_id=?", pageID, userID).
		First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	hash := HashContent(content)

	var existing PageSnapshot
	err := s.DB.WithContext(ctx).
		Where("content_hash=?", hash).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	snap := PageSnapshot{
		PageID:      page.PageID,
		Content:     content,
		ContentHash: hash,
	}
	if err := s.DB.WithContext(ctx).Create(&snap).Error; err != nil {
		return nil, err
	}
	return &snap, nil
}

// LatestSnapshot returns the newest snapshot for a page, or nil when the
// page has never been captured.
func (s *Service) LatestSnapshot(ctx context.Context, pageID string) (*PageSnapshot, error) {
	var snap PageSnapshot
	err := s.DB.WithContext(ctx).
		Where("page_id=?", pageID).
		Order("created_at desc").
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

// FindOwnedPage loads a page only when it belongs to the given user.
func (s *Service) FindOwnedPage(ctx context.Context, userID, pageID string) (*Page, error) {
	var page Page
	err := s.DB.WithContext(ctx).
		Where("page_id=? AND user_id=?", pageID, userID).
		First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
