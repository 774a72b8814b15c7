package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"relearn/internal/auth"
	"relearn/internal/question"

	"github.com/go-chi/chi/v5"
)

type QuestionHandler struct {
	Query     *question.QueryService
	Attempts  *question.AttemptService
	Generator *question.GenerationService
}

func (h *QuestionHandler) Waiting(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	view, err := h.Query.WaitingQuestion(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"waiting_question": view})
}

func (h *QuestionHandler) Detail(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	questionID := chi.URLParam(r, "id")

	view, err := h.Query.FindOwned(r.Context(), uid, questionID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if view == nil {
		http.Error(w, "question not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"question": view})
}

type generateQuestionsReq struct {
	SnapshotID     string `json:"snapshot_id"`
	QuestionsCount int    `json:"questions_count"`
}

func (h *QuestionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req generateQuestionsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SnapshotID) == "" {
		http.Error(w, "snapshot_id required", http.StatusBadRequest)
		return
	}
	count := req.QuestionsCount
	if count == 0 {
		count = 5
	}
	if count < 1 {
		http.Error(w, "questions_count must be positive", http.StatusBadRequest)
		return
	}

	questions, err := h.Generator.GenerateForUser(r.Context(), uid, req.SnapshotID, count)
	if err != nil {
		switch {
		case errors.Is(err, question.ErrSnapshotNotFound):
			http.Error(w, "snapshot not found", http.StatusNotFound)
		case errors.Is(err, question.ErrPageNotOwned):
			http.Error(w, "snapshot not owned", http.StatusForbidden)
		case errors.Is(err, question.ErrEmptySnapshot):
			http.Error(w, "snapshot has no text content", http.StatusBadRequest)
		case errors.Is(err, question.ErrInsufficient):
			http.Error(w, "question generation came back short", http.StatusBadGateway)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	items := make([]map[string]any, 0, len(questions))
	for _, q := range questions {
		items = append(items, map[string]any{
			"question_id": q.QuestionID,
			"prompt":      q.Prompt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"questions": items})
}

type submitAttemptReq struct {
	Answer string `json:"answer"`
}

func (h *QuestionHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	questionID := chi.URLParam(r, "id")

	var req submitAttemptReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Answer) == "" {
		http.Error(w, "answer required", http.StatusBadRequest)
		return
	}

	result, err := h.Attempts.SubmitAttempt(r.Context(), uid, questionID, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, question.ErrQuestionNotFound):
			http.Error(w, "question not found", http.StatusNotFound)
		case errors.Is(err, question.ErrEvaluation):
			http.Error(w, "answer evaluation failed", http.StatusBadGateway)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"attempt": result})
}
