package question

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEvaluation marks any unusable grading reply from the model. Callers
// match it with errors.Is; the wrapped detail says what was wrong.
var ErrEvaluation = errors.New("ai evaluation failed")

// Evaluation is the graded outcome for one submitted answer.
type Evaluation struct {
	Score    int
	Feedback string
}

// EvaluationService grades a free-form answer against its question with a
// single model call and a strict JSON reply contract.
type EvaluationService struct {
	Client TextClient
}

func (e *EvaluationService) Evaluate(ctx context.Context, question, answer string) (Evaluation, error) {
	raw, err := e.Client.GenerateText(ctx, buildEvalPrompt(question, answer))
	if err != nil {
		return Evaluation{}, err
	}

	ev, err := parseEvaluation(raw)
	if err != nil {
		return Evaluation{}, err
	}
	if ev.Score < 0 || ev.Score > 100 {
		return Evaluation{}, fmt.Errorf("%w: score %d out of range", ErrEvaluation, ev.Score)
	}
	if ev.Feedback == "" {
		return Evaluation{}, fmt.Errorf("%w: empty feedback", ErrEvaluation)
	}
	return ev, nil
}

func buildEvalPrompt(question, answer string) string {
	lines := []string{
		"You are an interview answer evaluator.",
		"Read the question and answer, then output score and feedback as JSON only.",
		`Output format: {"score": 0-100, "feedback": "..."}`,
		"",
		"Question:",
		question,
		"",
		"Answer:",
		answer,
	}
	return strings.Join(lines, "\n")
}

// parseEvaluation pulls the score/feedback JSON object out of a model
// reply, tolerating code fences and surrounding prose.
func parseEvaluation(raw string) (Evaluation, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 && !strings.HasPrefix(trimmed, "{") {
			trimmed = trimmed[i+1:]
		}
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start == -1 || end <= start {
		return Evaluation{}, fmt.Errorf("%w: no JSON object in reply", ErrEvaluation)
	}

	var parsed struct {
		Score    *float64 `json:"score"`
		Feedback *string  `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &parsed); err != nil {
		return Evaluation{}, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	if parsed.Score == nil || parsed.Feedback == nil {
		return Evaluation{}, fmt.Errorf("%w: score or feedback missing", ErrEvaluation)
	}
	return Evaluation{
		Score:    int(*parsed.Score),
		Feedback: strings.TrimSpace(*parsed.Feedback),
	}, nil
}
