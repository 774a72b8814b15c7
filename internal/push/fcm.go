package push

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SendStatus classifies one delivery attempt.
type SendStatus string

const (
	SendOK      SendStatus = "OK"
	SendInvalid SendStatus = "INVALID" // token is dead and should be removed
	SendFail    SendStatus = "FAIL"
)

type TokenSendResult struct {
	Status    SendStatus
	ErrorCode *string
}

// Sender delivers one message to one device token.
type Sender interface {
	SendToToken(ctx context.Context, token string, n Notification) (TokenSendResult, error)
}

type serviceAccount struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
}

// FCMSender talks to the FCM HTTP v1 API, exchanging a service-account JWT
// for a short-lived OAuth access token which is cached until near expiry.
type FCMSender struct {
	ProjectID  string
	HTTPClient *http.Client

	// TokenURL/SendURL override the Google endpoints (tests).
	TokenURL string
	SendURL  string

	account    serviceAccount
	privateKey *rsa.PrivateKey

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewFCMSender loads the service-account JSON file and parses its key.
func NewFCMSender(projectID, serviceAccountFile string) (*FCMSender, error) {
	raw, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account: %w", err)
	}
	var acct serviceAccount
	if err := json.Unmarshal(raw, &acct); err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	if acct.ClientEmail == "" || acct.PrivateKey == "" {
		return nil, errors.New("service account is missing client_email or private_key")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(acct.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	if projectID == "" {
		projectID = acct.ProjectID
	}
	return &FCMSender{
		ProjectID:  projectID,
		account:    acct,
		privateKey: key,
	}, nil
}

func (s *FCMSender) SendToToken(ctx context.Context, token string, n Notification) (TokenSendResult, error) {
	accessToken, err := s.getAccessToken(ctx)
	if err != nil {
		return TokenSendResult{}, err
	}

	sendURL := s.SendURL
	if sendURL == "" {
		sendURL = fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", s.ProjectID)
	}

	msg := map[string]any{
		"message": map[string]any{
			"token": token,
			"notification": map[string]string{
				"title": n.Title,
				"body":  n.Body,
			},
		},
	}
	if len(n.Data) > 0 {
		msg["message"].(map[string]any)["data"] = n.Data
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return TokenSendResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendURL, bytes.NewReader(body))
	if err != nil {
		return TokenSendResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return TokenSendResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return TokenSendResult{Status: SendOK}, nil
	}

	errorCode := extractFCMErrorCode(resp.Body)
	if resp.StatusCode == http.StatusNotFound || errorCode == "UNREGISTERED" || errorCode == "INVALID_ARGUMENT" {
		res := TokenSendResult{Status: SendInvalid}
		if errorCode != "" {
			res.ErrorCode = &errorCode
		}
		return res, nil
	}

	res := TokenSendResult{Status: SendFail}
	if errorCode != "" {
		res.ErrorCode = &errorCode
	}
	return res, nil
}

func (s *FCMSender) getAccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Until(s.expiresAt) > time.Minute {
		return s.accessToken, nil
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.account.ClientEmail,
		"scope": "https://www.googleapis.com/auth/firebase.messaging",
		"aud":   "https://oauth2.googleapis.com/token",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if s.account.PrivateKeyID != "" {
		t.Header["kid"] = s.account.PrivateKeyID
	}
	assertion, err := t.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign fcm assertion: %w", err)
	}

	tokenURL := s.TokenURL
	if tokenURL == "" {
		tokenURL = "https://oauth2.googleapis.com/token"
	}
	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("fcm token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("fcm token request failed: status=%d body=%s", resp.StatusCode, text)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	s.accessToken = out.AccessToken
	s.expiresAt = now.Add(time.Duration(out.ExpiresIn) * time.Second)
	return s.accessToken, nil
}

func (s *FCMSender) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func extractFCMErrorCode(r io.Reader) string {
	var body struct {
		Error struct {
			Details []struct {
				ErrorCode string `json:"errorCode"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	for _, d := range body.Error.Details {
		if d.ErrorCode != "" {
			return d.ErrorCode
		}
	}
	return ""
}
