package video

import (
	"context"
	"math"
	"strings"
	"testing"
)

func TestParseResolution(t *testing.T) {
	tests := []struct {
		name       string
		res        string
		wantWidth  int
		wantHeight int
	}{
		{name: "portrait", res: "1080x1920", wantWidth: 1080, wantHeight: 1920},
		{name: "landscape", res: "1920x1080", wantWidth: 1920, wantHeight: 1080},
		{name: "empty", res: "", wantWidth: 1080, wantHeight: 1920},
		{name: "garbage", res: "widexhigh", wantWidth: 1080, wantHeight: 1920},
		{name: "missingHeight", res: "1080", wantWidth: 1080, wantHeight: 1920},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := parseResolution(tt.res)
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("parseResolution(%q) = %dx%d, want %dx%d", tt.res, w, h, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestNewCompositorDefaults(t *testing.T) {
	c := NewCompositor(CompositorOptions{})

	if c.width != 1080 || c.height != 1920 {
		t.Errorf("resolution = %dx%d, want 1080x1920", c.width, c.height)
	}
	if c.frameRate != 24 {
		t.Errorf("frameRate = %d, want 24", c.frameRate)
	}
	if c.padding != 1 {
		t.Errorf("padding = %d, want 1", c.padding)
	}
	if c.ffmpegPath != "ffmpeg" {
		t.Errorf("ffmpegPath = %q, want ffmpeg", c.ffmpegPath)
	}
}

func TestSegmentDuration(t *testing.T) {
	c := NewCompositor(CompositorOptions{PaddingSeconds: 1})

	tests := []struct {
		name  string
		audio float64
		want  float64
	}{
		{name: "fractionalFloors", audio: 3.7, want: 4},
		{name: "wholeSeconds", audio: 3.0, want: 4},
		{name: "subSecond", audio: 0.4, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.segmentDuration(context.Background(), Segment{AudioDuration: tt.audio})
			if err != nil {
				t.Fatalf("segmentDuration() error: %v", err)
			}
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("segmentDuration(%f) = %f, want %f", tt.audio, got, tt.want)
			}
		})
	}
}

func TestSegmentDurationLargerPadding(t *testing.T) {
	c := NewCompositor(CompositorOptions{PaddingSeconds: 2})

	got, err := c.segmentDuration(context.Background(), Segment{AudioDuration: 2.9})
	if err != nil {
		t.Fatalf("segmentDuration() error: %v", err)
	}
	if got != 4 {
		t.Errorf("segmentDuration() = %f, want 4", got)
	}
}

func TestConcatListContent(t *testing.T) {
	content, err := concatListContent([]string{"a.mp4", "b.mp4"})
	if err != nil {
		t.Fatalf("concatListContent() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, "file '") || !strings.HasSuffix(line, "'") {
			t.Errorf("line %d not in concat format: %q", i, line)
		}
		if !strings.Contains(line, "/") {
			t.Errorf("line %d should hold an absolute path: %q", i, line)
		}
	}
}

func TestComposeEmptySegments(t *testing.T) {
	c := NewCompositor(CompositorOptions{})

	if _, err := c.Compose(context.Background(), nil, t.TempDir(), "out.mp4"); err == nil {
		t.Fatal("expected error for empty segment list")
	}
}
