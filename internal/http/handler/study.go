package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"relearn/internal/auth"
	"relearn/internal/study"
)

type StudyHandler struct {
	Plans *study.PlanService
}

type createPlanReq struct {
	PageID          string `json:"page_id"`
	Days            int    `json:"days"`
	QuestionsPerDay int    `json:"questions_per_day"`
}

func (h *StudyHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createPlanReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	summary, err := h.Plans.CreatePlan(r.Context(), uid, study.CreatePlanInput{
		PageID:          req.PageID,
		Days:            req.Days,
		QuestionsPerDay: req.QuestionsPerDay,
	})
	if err != nil {
		switch {
		case study.IsValidationError(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, study.ErrPageNotOwned):
			http.Error(w, "page not found", http.StatusForbidden)
		case errors.Is(err, study.ErrSnapshotNotFound):
			http.Error(w, "latest page snapshot not found", http.StatusNotFound)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"plan": summary})
}
