package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"relearn/internal/auth"
	"relearn/internal/source"

	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"
)

type PageHandler struct {
	Svc *source.Service
}

type connectPageReq struct {
	ExternalPageID string `json:"external_page_id"`
	Title          string `json:"title"`
	URL            string `json:"url"`
}

func (h *PageHandler) Connect(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req connectPageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ExternalPageID) == "" || strings.TrimSpace(req.Title) == "" {
		http.Error(w, "external_page_id and title required", http.StatusBadRequest)
		return
	}

	page, err := h.Svc.ConnectPage(r.Context(), uid, source.ConnectPageInput{
		ExternalPageID: req.ExternalPageID,
		Title:          req.Title,
		URL:            req.URL,
	})
	if err != nil {
		http.Error(w, "page already connected", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"page_id": page.PageID,
		"title":   page.Title,
	})
}

type ingestSnapshotReq struct {
	Content json.RawMessage `json:"content"`
}

func (h *PageHandler) IngestSnapshot(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	pageID := chi.URLParam(r, "id")

	var req ingestSnapshotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	snap, err := h.Svc.IngestSnapshot(r.Context(), uid, pageID, datatypes.JSON(req.Content))
	if err != nil {
		switch {
		case errors.Is(err, source.ErrPageNotFound):
			http.Error(w, "page not found", http.StatusNotFound)
		case errors.Is(err, source.ErrEmptyContent):
			http.Error(w, "content required", http.StatusBadRequest)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"snapshot_id":  snap.SnapshotID,
		"content_hash": snap.ContentHash,
	})
}
