package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"relearn/internal/auth"
	"relearn/internal/push"
)

type PushHandler struct {
	Svc            *push.Service
	VapidPublicKey string
}

type registerTokenReq struct {
	Token      string `json:"token"`
	Platform   string `json:"platform"`
	DeviceType string `json:"device_type"`
}

func (h *PushHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req registerTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	var userAgent *string
	if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
		userAgent = &ua
	}

	t, err := h.Svc.RegisterToken(r.Context(), uid, push.RegisterTokenInput{
		Token:      req.Token,
		Platform:   req.Platform,
		DeviceType: req.DeviceType,
		UserAgent:  userAgent,
	})
	if err != nil {
		if errors.Is(err, push.ErrEmptyToken) {
			http.Error(w, "token required", http.StatusBadRequest)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"push_token_id": t.PushTokenID,
		"platform":      t.Platform,
		"device_type":   t.DeviceType,
	})
}

type deleteTokenReq struct {
	Token string `json:"token"`
}

func (h *PushHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req deleteTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		http.Error(w, "token required", http.StatusBadRequest)
		return
	}

	if err := h.Svc.DeleteToken(r.Context(), uid, req.Token); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PushHandler) VapidKey(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"vapid_public_key": h.VapidPublicKey,
	})
}
