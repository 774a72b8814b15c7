package push

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"
)

var ErrEmptyToken = errors.New("push token is empty")

// Notification is the payload delivered to every device of one user.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// SendResult aggregates one SendToUser fan-out.
type SendResult struct {
	SuccessCount        int
	FailureCount        int
	InvalidTokenRemoved int
}

type Service struct {
	DB     *gorm.DB
	Sender Sender
}

type RegisterTokenInput struct {
	Token      string
	Platform   string
	DeviceType string
	UserAgent  *string
}

// RegisterToken upserts by token value: a token re-registered by another
// account moves to that account.
func (s *Service) RegisterToken(ctx context.Context, userID string, in RegisterTokenInput) (*PushToken, error) {
	token := strings.TrimSpace(in.Token)
	if token == "" {
		return nil, ErrEmptyToken
	}

	platform := strings.TrimSpace(in.Platform)
	if platform == "" {
		platform = "WEB"
	}
	deviceType := strings.TrimSpace(in.DeviceType)
	if deviceType == "" {
		deviceType = "UNKNOWN"
	}

	var existing PushToken
	err := s.DB.WithContext(ctx).Where("token=?", token).First(&existing).Error
	if err == nil {
		existing.UserID = userID
		existing.Platform = platform
		existing.DeviceType = deviceType
		existing.UserAgent = in.UserAgent
		if err := s.DB.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	t := PushToken{
		UserID:     userID,
		Token:      token,
		Platform:   platform,
		DeviceType: deviceType,
		UserAgent:  in.UserAgent,
	}
	if err := s.DB.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) DeleteToken(ctx context.Context, userID, token string) error {
	return s.DB.WithContext(ctx).
		Where("user_id=? AND token=?", userID, token).
		Delete(&PushToken{}).Error
}

// SendToUser fans the notification out to every registered device of the
// user. Dead tokens are removed as they are discovered; every attempt is
// written to the send log. A user with no tokens yields zero counts.
func (s *Service) SendToUser(ctx context.Context, userID string, n Notification) (SendResult, error) {
	var tokens []PushToken
	if err := s.DB.WithContext(ctx).Where("user_id=?", userID).Find(&tokens).Error; err != nil {
		return SendResult{}, err
	}
	if len(tokens) == 0 {
		return SendResult{}, nil
	}

	if n.Title == "" {
		n.Title = "A week has passed!"
	}
	if n.Body == "" {
		n.Body = "Review now and remember it longer."
	}

	var out SendResult
	for _, t := range tokens {
		res, err := s.Sender.SendToToken(ctx, t.Token, n)
		if err != nil {
			out.FailureCount++
			s.writeLog(ctx, userID, &t, n, string(SendFail), nil)
			continue
		}

		switch res.Status {
		case SendOK:
			out.SuccessCount++
		case SendInvalid:
			out.InvalidTokenRemoved++
			if err := s.DB.WithContext(ctx).Where("token=?", t.Token).Delete(&PushToken{}).Error; err != nil {
				log.Printf("push: failed to remove invalid token: %v\n", err)
			}
		default:
			out.FailureCount++
		}
		s.writeLog(ctx, userID, &t, n, string(res.Status), res.ErrorCode)
	}
	return out, nil
}

func (s *Service) writeLog(ctx context.Context, userID string, t *PushToken, n Notification, status string, errorCode *string) {
	entry := PushSendLog{
		UserID:      userID,
		PushTokenID: &t.PushTokenID,
		Title:       n.Title,
		Body:        n.Body,
		Status:      status,
		ErrorCode:   errorCode,
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("push: failed to write send log: %v\n", err)
	}
}
