package app

import (
	"fmt"

	"promptreel/internal/clip"
	"promptreel/internal/image"
	"promptreel/internal/llm"
	"promptreel/internal/script"
	"promptreel/internal/speech"
	"promptreel/internal/speech/elevenlabs"
	"promptreel/internal/video"
	"promptreel/pkg/config"
	"promptreel/pkg/prompts"
)

// BuildService constructs the full production wiring from configuration.
func BuildService(cfg *config.Config) (*Service, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	llmClient, err := llm.NewGroqClient(cfg.GroqAPIKey, cfg.Groq.Model)
	if err != nil {
		return nil, err
	}

	speechProvider, err := buildSpeechProvider(cfg)
	if err != nil {
		return nil, err
	}

	imageClient := image.NewClient(cfg.OpenAIAPIKey, image.Options{
		Model:       cfg.Image.Model,
		Size:        cfg.Image.Size,
		Quality:     cfg.Image.Quality,
		CallsPerMin: cfg.Clip.ImageCallsPerMin,
	})

	planner := script.NewPlanner(script.PlannerOptions{
		LLM:           llmClient,
		Prompts:       p,
		Voices:        voiceTable(cfg),
		MaxDirectives: cfg.Script.MaxDirectives,
		TargetSeconds: cfg.Script.TargetSeconds,
	})

	assembler := clip.NewAssembler(imageClient, speechProvider, cfg.Clip.Parallelism)

	compositor := video.NewCompositor(video.CompositorOptions{
		Resolution:     cfg.Video.Resolution,
		FrameRate:      cfg.Video.FrameRate,
		PaddingSeconds: cfg.Video.PaddingSeconds,
	})

	return NewService(ServiceOptions{
		Config:     cfg,
		Prompts:    p,
		LLM:        llmClient,
		Speech:     speechProvider,
		Planner:    planner,
		Assembler:  assembler,
		Compositor: compositor,
	}), nil
}

func buildSpeechProvider(cfg *config.Config) (speech.Provider, error) {
	switch cfg.Speech.Provider {
	case "stub":
		return speech.NewStubProvider(speech.DefaultWordsPerMinute), nil
	case "elevenlabs":
		return elevenlabs.NewClient(elevenlabs.Config{
			APIKeys:    cfg.ElevenLabsAPIKeys,
			Model:      cfg.Speech.Model,
			Speed:      cfg.Speech.Speed,
			Stability:  cfg.Speech.Stability,
			Similarity: cfg.Speech.Similarity,
		}), nil
	default:
		return nil, fmt.Errorf("unknown speech provider: %s", cfg.Speech.Provider)
	}
}

func voiceTable(cfg *config.Config) script.VoiceTable {
	return script.VoiceTable{
		Documentary:   cfg.Voices.Documentary,
		Upbeat:        cfg.Voices.Upbeat,
		Promotional:   cfg.Voices.Promotional,
		Instructional: cfg.Voices.Instructional,
		Narrator:      cfg.Voices.Narrator,
	}
}
