package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"promptreel/internal/llm"
	"promptreel/internal/speech"
)

// ErrTurnInFlight is returned when Submit is called while another submit on
// the same session has not finished. Turns are never interleaved.
var ErrTurnInFlight = errors.New("chat: a turn is already in flight")

// Turn is one completed question/answer exchange plus its narration. The ID
// is assigned at creation time and stays stable for the session's lifetime.
type Turn struct {
	ID        string
	Question  string
	Answer    string
	AudioPath string
}

// Session holds the in-memory history of one ongoing exchange. History only
// grows by append and is owned exclusively by this session.
type Session struct {
	mu sync.Mutex

	id       string
	llm      llm.Client
	speech   speech.Provider
	voiceID  string
	audioDir string
	system   string

	history []llm.Message
	turns   []Turn
}

type SessionOptions struct {
	LLM          llm.Client
	Speech       speech.Provider
	VoiceID      string
	AudioDir     string
	SystemPrompt string
}

func NewSession(opts SessionOptions) *Session {
	return &Session{
		id:       uuid.NewString(),
		llm:      opts.LLM,
		speech:   opts.Speech,
		voiceID:  opts.VoiceID,
		audioDir: opts.AudioDir,
		system:   opts.SystemPrompt,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Submit appends the user's message, asks the language model for a reply,
// narrates it with the session's fixed voice, and records the completed turn.
// Nothing is recorded when any step fails. A concurrent Submit is rejected
// with ErrTurnInFlight.
func (s *Session) Submit(ctx context.Context, text string) (*Turn, error) {
	if !s.mu.TryLock() {
		return nil, ErrTurnInFlight
	}
	defer s.mu.Unlock()

	messages := s.buildMessages(text)

	reply, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("chat reply: %w", err)
	}

	turn := Turn{
		ID:       uuid.NewString(),
		Question: text,
		Answer:   reply,
	}

	audioPath, err := s.narrate(ctx, turn.ID, reply)
	if err != nil {
		return nil, fmt.Errorf("narrate reply: %w", err)
	}
	turn.AudioPath = audioPath

	s.history = append(s.history,
		llm.Message{Role: llm.RoleUser, Content: text},
		llm.Message{Role: llm.RoleAssistant, Content: reply},
	)
	s.turns = append(s.turns, turn)

	return &turn, nil
}

func (s *Session) buildMessages(text string) []llm.Message {
	messages := make([]llm.Message, 0, len(s.history)+2)
	if s.system != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: s.system})
	}
	messages = append(messages, s.history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: text})
	return messages
}

func (s *Session) narrate(ctx context.Context, turnID, reply string) (string, error) {
	result, err := s.speech.Synthesize(ctx, reply, s.voiceID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.audioDir, 0755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	path := filepath.Join(s.audioDir, fmt.Sprintf("turn_%s.mp3", turnID))
	if err := os.WriteFile(path, result.Audio, 0644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}

	return path, nil
}

// Turns returns a copy of the completed turns in chronological order.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// History returns a copy of the raw conversation, two messages per turn.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]llm.Message, len(s.history))
	copy(history, s.history)
	return history
}
