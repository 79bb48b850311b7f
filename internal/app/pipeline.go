package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"promptreel/internal/clip"
	"promptreel/internal/llm"
	"promptreel/internal/script"
	"promptreel/internal/video"
	"promptreel/pkg/prompts"
)

// Pipeline turns one topic prompt into a narrated video: plan a script, fan
// out per-directive media generation, compose the ordered segments. Each
// invocation owns its own output session; no state is shared between runs.
type Pipeline struct {
	service *Service
}

type GenerateResult struct {
	Title       string
	Directives  []script.Directive
	OutputDir   string
	VideoPath   string
	Duration    float64
	ContentType string
}

func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service}
}

func (p *Pipeline) Generate(ctx context.Context, topic string) (*GenerateResult, error) {
	slog.Info("Planning script...", "topic", topic)
	directives, err := p.service.Planner().Plan(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("plan script: %w", err)
	}
	slog.Info("Script planned", "directives", len(directives), "voice", directives[0].VoiceID)

	title := p.generateTitle(ctx, directives, topic)

	session := newRunSession(p.service.Config().Video.OutputDir)
	if err := session.finalize(title); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	defer session.cleanupScratch()

	_ = os.WriteFile(session.scriptPath(), []byte(scriptText(directives)), 0644)

	slog.Info("Assembling clips...", "count", len(directives))
	pairs, err := p.service.Assembler().Assemble(ctx, session.scratchDir(), directives)
	if err != nil {
		return nil, err
	}
	if len(pairs) != len(directives) {
		return nil, fmt.Errorf("assembly mismatch: %d pairs for %d directives", len(pairs), len(directives))
	}

	slog.Info("Composing video...", "segments", len(pairs))
	artifact, err := p.service.Compositor().Compose(ctx, toSegments(pairs), session.scratchDir(), session.videoPath())
	if err != nil {
		return nil, err
	}

	slog.Info("Video composed", "path", artifact.Path, "duration", artifact.Duration)

	return &GenerateResult{
		Title:       title,
		Directives:  directives,
		OutputDir:   session.dir,
		VideoPath:   artifact.Path,
		Duration:    artifact.Duration,
		ContentType: artifact.ContentType,
	}, nil
}

func (p *Pipeline) generateTitle(ctx context.Context, directives []script.Directive, fallback string) string {
	prompt, err := p.service.Prompts().RenderTitle(prompts.TitleParams{Script: scriptText(directives)})
	if err != nil {
		return fallback
	}

	title, err := p.service.LLM().Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: p.service.Prompts().System.Title},
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil || strings.TrimSpace(title) == "" {
		slog.Debug("Title generation failed, using topic", "error", err)
		return fallback
	}
	return strings.TrimSpace(title)
}

func scriptText(directives []script.Directive) string {
	lines := make([]string, len(directives))
	for i, d := range directives {
		lines[i] = d.Text
	}
	return strings.Join(lines, "\n")
}

func toSegments(pairs []clip.MediaPair) []video.Segment {
	segments := make([]video.Segment, len(pairs))
	for i, pair := range pairs {
		segments[i] = video.Segment{
			ImagePath:     pair.ImagePath,
			AudioPath:     pair.AudioPath,
			AudioDuration: pair.Duration,
		}
	}
	return segments
}
