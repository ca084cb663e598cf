package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/interviewiz/internal/llm"
	"github.com/abhisek/interviewiz/internal/skillgap"
	"github.com/abhisek/interviewiz/internal/topics"
)

// maxResumeChars bounds the text sent to the model.
const maxResumeChars = 12000

// Schema is the JSON shape the model must return.
var Schema = &llm.Schema{
	Name:        "candidate-profile",
	Description: "Structured candidate profile extracted from resume text",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":             map[string]any{"type": "string"},
			"role_level":       map[string]any{"type": "string", "enum": []any{"junior", "mid", "senior"}},
			"years_experience": map[string]any{"type": "integer", "minimum": 0, "maximum": 60},
			"skills": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"summary": map[string]any{"type": "string"},
		},
		"required":             []any{"role_level", "years_experience", "skills"},
		"additionalProperties": false,
	},
}

const systemPrompt = `You read resumes for a technical interview platform.
Extract the candidate's name, seniority (junior, mid or senior), total years of
professional experience, concrete technical skills and a one-sentence summary.
Use only what the text states. Prefer lower-case skill names.`

// Extractor extracts profiles with an LLM and falls back to the keyword
// heuristics when the model is unavailable or returns invalid output.
type Extractor struct {
	provider llm.Provider
	logger   *slog.Logger
}

// NewExtractor creates an Extractor. A nil provider always uses heuristics.
func NewExtractor(provider llm.Provider, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{provider: provider, logger: logger}
}

// Extract returns the candidate profile for text. The error is non-nil only
// when ctx is done.
func (e *Extractor) Extract(ctx context.Context, text string) (*Profile, error) {
	fallback := Extract(text)
	if e.provider == nil || strings.TrimSpace(text) == "" {
		return fallback, nil
	}

	if len(text) > maxResumeChars {
		text = text[:maxResumeChars]
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeProfile)
	resp, err := e.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: text}},
		Schema:      Schema,
		MaxTokens:   800,
		Temperature: 0,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.WarnContext(ctx, "profile extraction failed, using heuristics", slog.Any("error", err))
		return fallback, nil
	}

	p, err := decode(resp.Content)
	if err != nil {
		e.logger.WarnContext(ctx, "profile extraction returned invalid output, using heuristics", slog.Any("error", err))
		return fallback, nil
	}

	// Topics come from the same table the evaluator uses, not the model.
	p.Topics = fallback.Topics
	if p.Name == "" {
		p.Name = fallback.Name
	}
	return p, nil
}

func decode(raw json.RawMessage) (*Profile, error) {
	if err := llm.ValidateJSON(Schema, raw); err != nil {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.RoleLevel = skillgap.NormalizeRole(p.RoleLevel)
	for i, s := range p.Skills {
		p.Skills[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return &p, nil
}

// FocusTopics returns display names of the profile's topics for prompts.
func (p *Profile) FocusTopics() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.Topics))
	for _, id := range p.Topics {
		out = append(out, topics.Get(id).Name)
	}
	return out
}
