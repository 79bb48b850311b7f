package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"promptreel/internal/clip"
	"promptreel/internal/script"
)

func TestSanitizeForPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Deep Sea Creatures", want: "deep_sea_creatures"},
		{name: "punctuation", in: "What?! A title...", want: "what_a_title"},
		{name: "unicode", in: "café & crème", want: "caf_cr_me"},
		{name: "empty", in: "", want: ""},
		{name: "onlySymbols", in: "???", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeForPath(tt.in); got != tt.want {
				t.Errorf("sanitizeForPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRunSessionFinalize(t *testing.T) {
	base := t.TempDir()
	session := newRunSession(base)

	if err := session.finalize("My Great Video!"); err != nil {
		t.Fatalf("finalize() error: %v", err)
	}

	if !strings.HasPrefix(session.dir, base) {
		t.Errorf("session dir %q outside base %q", session.dir, base)
	}
	if !strings.HasSuffix(session.dir, "_my_great_video") {
		t.Errorf("session dir = %q, want sanitized title suffix", session.dir)
	}
	if info, err := os.Stat(session.scratchDir()); err != nil || !info.IsDir() {
		t.Errorf("scratch dir not created: %v", err)
	}
	if filepath.Dir(session.videoPath()) != session.dir {
		t.Errorf("video path %q outside session dir", session.videoPath())
	}
}

func TestRunSessionFinalizeEmptyTitle(t *testing.T) {
	session := newRunSession(t.TempDir())

	if err := session.finalize("!!!"); err != nil {
		t.Fatalf("finalize() error: %v", err)
	}
	if !strings.HasSuffix(session.dir, "_untitled") {
		t.Errorf("session dir = %q, want untitled fallback", session.dir)
	}
}

func TestRunSessionFinalizeTruncatesTitle(t *testing.T) {
	session := newRunSession(t.TempDir())

	if err := session.finalize(strings.Repeat("very long title ", 20)); err != nil {
		t.Fatalf("finalize() error: %v", err)
	}
	name := filepath.Base(session.dir)
	// timestamp prefix is 15 chars plus the underscore separator.
	if len(name) > 16+50 {
		t.Errorf("session dir name too long: %d chars", len(name))
	}
}

func TestRunSessionCleanupScratch(t *testing.T) {
	session := newRunSession(t.TempDir())
	if err := session.finalize("cleanup"); err != nil {
		t.Fatalf("finalize() error: %v", err)
	}

	leftover := filepath.Join(session.scratchDir(), "seg_000.mp4")
	_ = os.WriteFile(leftover, []byte("x"), 0644)

	session.cleanupScratch()

	if _, err := os.Stat(session.scratchDir()); !os.IsNotExist(err) {
		t.Error("scratch dir still present after cleanup")
	}
	if _, err := os.Stat(session.dir); err != nil {
		t.Errorf("session dir removed with scratch: %v", err)
	}
}

func TestScriptText(t *testing.T) {
	directives := []script.Directive{
		{Text: "First line."},
		{Text: "Second line."},
	}

	if got := scriptText(directives); got != "First line.\nSecond line." {
		t.Errorf("scriptText() = %q", got)
	}
}

func TestToSegments(t *testing.T) {
	pairs := []clip.MediaPair{
		{Index: 0, ImagePath: "a.png", AudioPath: "a.mp3", Duration: 2.5},
		{Index: 1, ImagePath: "b.png", AudioPath: "b.mp3", Duration: 3.1},
	}

	segments := toSegments(pairs)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].ImagePath != "a.png" || segments[0].AudioDuration != 2.5 {
		t.Errorf("segment 0 = %+v", segments[0])
	}
	if segments[1].AudioPath != "b.mp3" || segments[1].AudioDuration != 3.1 {
		t.Errorf("segment 1 = %+v", segments[1])
	}
}
