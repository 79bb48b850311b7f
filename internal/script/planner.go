package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"promptreel/internal/llm"
	"promptreel/pkg/prompts"
)

var ErrEmptyScript = errors.New("script is empty")

// Planner turns one free-text topic into an ordered, validated script. The
// language model is asked for a single JSON object; a malformed reply is
// retried exactly once before being surfaced as fatal.
type Planner struct {
	llm           llm.Client
	prompts       *prompts.Prompts
	voices        VoiceTable
	maxDirectives int
	targetSeconds int
}

type PlannerOptions struct {
	LLM           llm.Client
	Prompts       *prompts.Prompts
	Voices        VoiceTable
	MaxDirectives int
	TargetSeconds int
}

type planPayload struct {
	Tone   string             `json:"tone"`
	Script []directivePayload `json:"script"`
}

type directivePayload struct {
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
	VoiceID     string `json:"voice_id"`
}

func NewPlanner(opts PlannerOptions) *Planner {
	return &Planner{
		llm:           opts.LLM,
		prompts:       opts.Prompts,
		voices:        opts.Voices,
		maxDirectives: opts.MaxDirectives,
		targetSeconds: opts.TargetSeconds,
	}
}

func (p *Planner) Plan(ctx context.Context, topic string) ([]Directive, error) {
	messages, err := p.buildMessages(topic)
	if err != nil {
		return nil, fmt.Errorf("plan script: %w", err)
	}

	directives, err := p.planOnce(ctx, messages)
	if err == nil {
		return directives, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	slog.Warn("Malformed script generation, retrying once", "error", err)
	directives, retryErr := p.planOnce(ctx, messages)
	if retryErr != nil {
		return nil, fmt.Errorf("malformed script generation: %w", retryErr)
	}
	return directives, nil
}

func (p *Planner) buildMessages(topic string) ([]llm.Message, error) {
	system, err := p.prompts.RenderPlannerSystem(prompts.PlannerParams{
		MaxDirectives:      p.maxDirectives,
		TargetSeconds:      p.targetSeconds,
		DocumentaryVoice:   p.voices.Documentary,
		UpbeatVoice:        p.voices.Upbeat,
		PromotionalVoice:   p.voices.Promotional,
		InstructionalVoice: p.voices.Instructional,
		NarratorVoice:      p.voices.Narrator,
	})
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}

	user, err := p.prompts.RenderPlan(prompts.PlanParams{Topic: topic})
	if err != nil {
		return nil, fmt.Errorf("render plan prompt: %w", err)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}, nil
}

func (p *Planner) planOnce(ctx context.Context, messages []llm.Message) ([]Directive, error) {
	content, err := p.llm.ChatJSON(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}
	return p.parsePlan(content)
}

func (p *Planner) parsePlan(content string) ([]Directive, error) {
	var payload planPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("parse script json: %w", err)
	}

	if len(payload.Script) == 0 {
		return nil, ErrEmptyScript
	}

	directives := make([]Directive, 0, len(payload.Script))
	for i, d := range payload.Script {
		text := strings.TrimSpace(d.Text)
		imagePrompt := strings.TrimSpace(d.ImagePrompt)
		if text == "" {
			return nil, fmt.Errorf("directive %d has no text", i)
		}
		if imagePrompt == "" {
			return nil, fmt.Errorf("directive %d has no image prompt", i)
		}
		directives = append(directives, Directive{
			Text:        text,
			ImagePrompt: imagePrompt,
			VoiceID:     d.VoiceID,
		})
	}

	if p.maxDirectives > 0 && len(directives) > p.maxDirectives {
		slog.Warn("Script exceeds directive limit, truncating",
			"got", len(directives), "limit", p.maxDirectives)
		directives = directives[:p.maxDirectives]
	}

	p.normalizeVoices(directives, payload.Tone)
	return directives, nil
}

// normalizeVoices enforces a single narrator across the whole script: the
// first voice found in the table wins, falling back to the tone lookup when
// the model picked nothing usable.
func (p *Planner) normalizeVoices(directives []Directive, tone string) {
	voiceID := ""
	for _, d := range directives {
		if p.voices.Contains(d.VoiceID) {
			voiceID = d.VoiceID
			break
		}
	}
	if voiceID == "" {
		voiceID = p.voices.ForTone(tone)
	}

	for i := range directives {
		if directives[i].VoiceID != voiceID {
			if directives[i].VoiceID != "" {
				slog.Debug("Normalizing directive voice",
					"index", i, "from", directives[i].VoiceID, "to", voiceID)
			}
			directives[i].VoiceID = voiceID
		}
	}
}
