package question

import (
	"context"
	"errors"
)

// Attempt outcomes derived from the evaluation score.
const (
	AttemptPass = "PASS"
	AttemptWeak = "WEAK"
	AttemptFail = "FAIL"
)

var ErrQuestionNotFound = errors.New("question not found")

// AttemptStore is the persistence the attempt flow needs.
type AttemptStore interface {
	// FindQuestion returns nil when the question does not exist.
	FindQuestion(ctx context.Context, questionID string) (*Question, error)
	CreateAttempt(ctx context.Context, a *QuestionAttempt) error
	SaveAttempt(ctx context.Context, a *QuestionAttempt) error
	// UpsertStatus records the latest outcome for (user, question),
	// overwriting any previous row.
	UpsertStatus(ctx context.Context, userID, questionID, status string) error
}

// Evaluator grades one answer against its question.
type Evaluator interface {
	Evaluate(ctx context.Context, question, answer string) (Evaluation, error)
}

// AttemptService records a submitted answer, grades it, and keeps the
// per-question status current.
type AttemptService struct {
	Store AttemptStore
	Eval  Evaluator
}

type AttemptResult struct {
	AttemptID string `json:"attempt_id"`
	Result    string `json:"result"`
	Score     int    `json:"score"`
	Feedback  string `json:"feedback"`
}

// SubmitAttempt persists the raw answer before grading, so a grading
// failure leaves the attempt row with a null score instead of losing the
// answer. The status upsert only runs after a successful evaluation.
func (s *AttemptService) SubmitAttempt(ctx context.Context, userID, questionID, answer string) (*AttemptResult, error) {
	q, err := s.Store.FindQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}

	attempt := &QuestionAttempt{
		UserID:     userID,
		QuestionID: questionID,
		UserAnswer: answer,
	}
	if err := s.Store.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	ev, err := s.Eval.Evaluate(ctx, q.Prompt, answer)
	if err != nil {
		return nil, err
	}

	attempt.Score = &ev.Score
	attempt.AIFeedback = &ev.Feedback
	if err := s.Store.SaveAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	result := scoreResult(attempt.Score)
	if err := s.Store.UpsertStatus(ctx, userID, questionID, result); err != nil {
		return nil, err
	}

	return &AttemptResult{
		AttemptID: attempt.QuestionAttemptID,
		Result:    result,
		Score:     ev.Score,
		Feedback:  ev.Feedback,
	}, nil
}

func scoreResult(score *int) string {
	switch {
	case score == nil:
		return AttemptFail
	case *score >= 70:
		return AttemptPass
	case *score >= 40:
		return AttemptWeak
	default:
		return AttemptFail
	}
}
