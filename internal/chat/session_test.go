package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"promptreel/internal/llm"
	"promptreel/internal/speech"
)

type chatLLM struct {
	mu       sync.Mutex
	replies  []string
	err      error
	block    chan struct{}
	messages [][]llm.Message
}

func (c *chatLLM) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	c.mu.Lock()
	c.messages = append(c.messages, messages)
	idx := len(c.messages) - 1
	block := c.block
	c.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if c.err != nil {
		return "", c.err
	}
	if idx < len(c.replies) {
		return c.replies[idx], nil
	}
	return fmt.Sprintf("reply %d", idx), nil
}

func (c *chatLLM) ChatJSON(ctx context.Context, messages []llm.Message) (string, error) {
	return c.Chat(ctx, messages)
}

func newTestSession(client llm.Client, dir string) *Session {
	return NewSession(SessionOptions{
		LLM:          client,
		Speech:       speech.NewStubProvider(150),
		VoiceID:      "narrator",
		AudioDir:     dir,
		SystemPrompt: "You are a narrator.",
	})
}

func TestSubmitRecordsTurn(t *testing.T) {
	dir := t.TempDir()
	client := &chatLLM{replies: []string{"The answer is four."}}
	session := newTestSession(client, dir)

	turn, err := session.Submit(context.Background(), "What is two plus two?")
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if turn.Question != "What is two plus two?" {
		t.Errorf("question = %q", turn.Question)
	}
	if turn.Answer != "The answer is four." {
		t.Errorf("answer = %q", turn.Answer)
	}
	if turn.ID == "" {
		t.Error("turn has no id")
	}
	if _, err := os.Stat(turn.AudioPath); err != nil {
		t.Errorf("narration audio missing: %v", err)
	}
	if filepath.Dir(turn.AudioPath) != dir {
		t.Errorf("audio written outside session dir: %s", turn.AudioPath)
	}

	turns := session.Turns()
	if len(turns) != 1 || turns[0].ID != turn.ID {
		t.Errorf("Turns() = %v, want the recorded turn", turns)
	}
}

func TestSubmitGrowsHistoryByTwo(t *testing.T) {
	client := &chatLLM{}
	session := newTestSession(client, t.TempDir())

	for i := 0; i < 3; i++ {
		if _, err := session.Submit(context.Background(), fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("Submit() %d error: %v", i, err)
		}
	}

	history := session.History()
	if len(history) != 6 {
		t.Fatalf("history length = %d, want 6", len(history))
	}
	for i := 0; i < len(history); i += 2 {
		if history[i].Role != llm.RoleUser {
			t.Errorf("history[%d] role = %q, want user", i, history[i].Role)
		}
		if history[i+1].Role != llm.RoleAssistant {
			t.Errorf("history[%d] role = %q, want assistant", i+1, history[i+1].Role)
		}
	}
}

func TestSubmitSendsSystemAndHistory(t *testing.T) {
	client := &chatLLM{}
	session := newTestSession(client, t.TempDir())

	_, _ = session.Submit(context.Background(), "first")
	_, _ = session.Submit(context.Background(), "second")

	if len(client.messages) != 2 {
		t.Fatalf("got %d llm calls, want 2", len(client.messages))
	}

	second := client.messages[1]
	// system + first exchange + new user message.
	if len(second) != 4 {
		t.Fatalf("second call has %d messages, want 4", len(second))
	}
	if second[0].Role != llm.RoleSystem {
		t.Errorf("first message role = %q, want system", second[0].Role)
	}
	if second[3].Content != "second" {
		t.Errorf("last message = %q, want second", second[3].Content)
	}
}

func TestSubmitFailureRecordsNothing(t *testing.T) {
	client := &chatLLM{err: errors.New("model unavailable")}
	session := newTestSession(client, t.TempDir())

	if _, err := session.Submit(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from failing llm")
	}

	if len(session.Turns()) != 0 {
		t.Error("failed submit recorded a turn")
	}
	if len(session.History()) != 0 {
		t.Error("failed submit grew the history")
	}
}

func TestSubmitRejectsConcurrentTurn(t *testing.T) {
	block := make(chan struct{})
	client := &chatLLM{block: block}
	session := newTestSession(client, t.TempDir())

	firstDone := make(chan error, 1)
	go func() {
		_, err := session.Submit(context.Background(), "slow question")
		firstDone <- err
	}()

	// Wait until the first submit is inside the llm call.
	for {
		client.mu.Lock()
		started := len(client.messages) > 0
		client.mu.Unlock()
		if started {
			break
		}
	}

	if _, err := session.Submit(context.Background(), "eager question"); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("concurrent Submit() error = %v, want ErrTurnInFlight", err)
	}

	close(block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first Submit() error: %v", err)
	}
	if len(session.Turns()) != 1 {
		t.Errorf("got %d turns, want 1", len(session.Turns()))
	}
}

func TestTurnIDsAreDistinct(t *testing.T) {
	session := newTestSession(&chatLLM{}, t.TempDir())

	first, _ := session.Submit(context.Background(), "one")
	second, _ := session.Submit(context.Background(), "two")

	if first.ID == second.ID {
		t.Errorf("turn ids collide: %s", first.ID)
	}
	if session.ID() == "" {
		t.Error("session has no id")
	}
}
