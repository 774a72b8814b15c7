package question

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"relearn/internal/source"

	"gorm.io/gorm"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")
var ErrEmptySnapshot = errors.New("snapshot has no text content")
var ErrInsufficient = errors.New("generated fewer questions than requested")
var ErrPageNotOwned = errors.New("page does not belong to user")

// TextClient produces free-form text for a prompt.
type TextClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type GenerationService struct {
	DB     *gorm.DB
	Client TextClient
	Pages  *source.Service
}

// GenerateFromSnapshot produces count questions from the given snapshot and
// persists them, tagged with scheduleID when present. Questions already
// stored for the same (schedule, snapshot) pair are reused instead of
// calling the generator again; a partial set is discarded and regenerated.
func (g *GenerationService) GenerateFromSnapshot(ctx context.Context, snapshotID string, count int, scheduleID *string) ([]Question, error) {
	snap, err := g.loadSnapshot(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	return g.generate(ctx, snap, count, scheduleID)
}

// GenerateForUser is the on-demand path: same pipeline, but the snapshot's
// page must belong to the caller. These questions carry no schedule tag.
func (g *GenerationService) GenerateForUser(ctx context.Context, userID, snapshotID string, count int) ([]Question, error) {
	snap, err := g.loadSnapshot(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	if _, err := g.Pages.FindOwnedPage(ctx, userID, snap.PageID); err != nil {
		if errors.Is(err, source.ErrPageNotFound) {
			return nil, ErrPageNotOwned
		}
		return nil, err
	}
	return g.generate(ctx, snap, count, nil)
}

func (g *GenerationService) loadSnapshot(ctx context.Context, snapshotID string) (*source.PageSnapshot, error) {
	var snap source.PageSnapshot
	if err := g.DB.WithContext(ctx).
		Where("snapshot_id=?", snapshotID).
		First(&snap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return &snap, nil
}

func (g *GenerationService) generate(ctx context.Context, snap *source.PageSnapshot, count int, scheduleID *string) ([]Question, error) {
	snapshotID := snap.SnapshotID

	if scheduleID != nil {
		var existing []Question
		if err := g.DB.WithContext(ctx).
			Where("schedule_id=? AND snapshot_id=?", *scheduleID, snapshotID).
			Order("created_at asc").
			Find(&existing).Error; err != nil {
			return nil, err
		}
		if len(existing) >= count {
			return existing[:count], nil
		}
		if len(existing) > 0 {
			if err := g.DB.WithContext(ctx).
				Where("schedule_id=? AND snapshot_id=?", *scheduleID, snapshotID).
				Delete(&Question{}).Error; err != nil {
				return nil, err
			}
		}
	}

	plain := extractPlainText(snap.Content)
	if plain == "" {
		return nil, ErrEmptySnapshot
	}

	prompt := buildPrompt(plain, count)
	raw, err := g.Client.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	prompts := parseQuestions(raw)

	// One corrective round when the model comes back short.
	if len(prompts) < count {
		raw, err = g.Client.GenerateText(ctx, prompt+fmt.Sprintf("\n\nReturn exactly %d questions as a JSON string array and nothing else.", count))
		if err != nil {
			return nil, err
		}
		prompts = parseQuestions(raw)
	}

	if len(prompts) < count {
		return nil, ErrInsufficient
	}
	if len(prompts) > count {
		prompts = prompts[:count]
	}

	questions := make([]Question, 0, len(prompts))
	for _, p := range prompts {
		questions = append(questions, Question{
			SnapshotID: snapshotID,
			ScheduleID: scheduleID,
			Prompt:     p,
		})
	}
	if err := g.DB.WithContext(ctx).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func buildPrompt(plainText string, count int) string {
	lines := []string{
		"You are a role-neutral interview question generator.",
		fmt.Sprintf("From the study notes below, generate exactly %d interview questions.", count),
		"Prefer questions that reflect the role, domain and work context visible in the notes.",
		"Probe understanding, problem solving and practical application, not rote definitions.",
		"Ask about causes, impact, alternatives and trade-offs; include edge cases and operational risk.",
		fmt.Sprintf("At least half of the %d questions must be why/how/what-if questions.", count),
		"Each question is a single sentence; no duplicates or near-paraphrases.",
		"Do not invent facts beyond the notes.",
		"Do not include answers, explanations, numbering, markdown or code blocks.",
		fmt.Sprintf("Output only a JSON string array of length %d.", count),
		`Example output: ["question 1","question 2"]`,
		"",
		"Notes:",
		plainText,
	}
	return strings.Join(lines, "\n")
}

var listPrefixRe = regexp.MustCompile(`^\s*[\d-]+\s*[.)]?\s*`)

// parseQuestions pulls a JSON string array out of a model reply, tolerating
// code fences and surrounding prose; falls back to line splitting.
func parseQuestions(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 && !strings.HasPrefix(trimmed, "[") {
			trimmed = trimmed[i+1:]
		}
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.IndexByte(trimmed, '[')
	end := strings.LastIndexByte(trimmed, ']')
	if start != -1 && end > start {
		var parsed []any
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &parsed); err == nil {
			out := make([]string, 0, len(parsed))
			for _, item := range parsed {
				s := strings.TrimSpace(fmt.Sprint(item))
				if s != "" {
					out = append(out, s)
				}
			}
			return out
		}
	}

	var out []string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(listPrefixRe.ReplaceAllString(line, ""))
		if line == "" || line == "```json" || line == "```" || line == "[" || line == "]" {
			continue
		}
		line = strings.Trim(line, `"`)
		line = strings.ReplaceAll(line, `\"`, `"`)
		out = append(out, line)
	}
	return out
}

func extractPlainText(content []byte) string {
	var doc struct {
		PlainText string `json:"plainText"`
	}
	if err := json.Unmarshal(content, &doc); err != nil {
		return ""
	}
	return strings.TrimSpace(doc.PlainText)
}
