package app

import (
	"path/filepath"

	"promptreel/internal/chat"
	"promptreel/internal/clip"
	"promptreel/internal/llm"
	"promptreel/internal/script"
	"promptreel/internal/speech"
	"promptreel/internal/video"
	"promptreel/pkg/config"
	"promptreel/pkg/prompts"
)

// Service wires the pipeline's collaborators together. Every component is
// injected so tests can substitute doubles.
type Service struct {
	cfg        *config.Config
	prompts    *prompts.Prompts
	llm        llm.Client
	speech     speech.Provider
	planner    *script.Planner
	assembler  *clip.Assembler
	compositor *video.Compositor
}

type ServiceOptions struct {
	Config     *config.Config
	Prompts    *prompts.Prompts
	LLM        llm.Client
	Speech     speech.Provider
	Planner    *script.Planner
	Assembler  *clip.Assembler
	Compositor *video.Compositor
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:        opts.Config,
		prompts:    opts.Prompts,
		llm:        opts.LLM,
		speech:     opts.Speech,
		planner:    opts.Planner,
		assembler:  opts.Assembler,
		compositor: opts.Compositor,
	}
}

func (s *Service) Config() *config.Config        { return s.cfg }
func (s *Service) Prompts() *prompts.Prompts     { return s.prompts }
func (s *Service) LLM() llm.Client               { return s.llm }
func (s *Service) Speech() speech.Provider       { return s.speech }
func (s *Service) Planner() *script.Planner      { return s.planner }
func (s *Service) Assembler() *clip.Assembler    { return s.assembler }
func (s *Service) Compositor() *video.Compositor { return s.compositor }

// NewChatSession starts a fresh narrated chat session using the fixed
// narrator voice.
func (s *Service) NewChatSession() *chat.Session {
	return chat.NewSession(chat.SessionOptions{
		LLM:          s.llm,
		Speech:       s.speech,
		VoiceID:      s.cfg.Voices.Narrator,
		AudioDir:     filepath.Join(s.cfg.Video.OutputDir, "chat"),
		SystemPrompt: s.prompts.System.Chat,
	})
}
