package speech

import (
	"context"
	"math"
	"testing"
)

func TestEstimateTimingsFromDuration(t *testing.T) {
	timings := EstimateTimingsFromDuration("Hello wonderful world", 3.0)

	if len(timings) != 3 {
		t.Fatalf("got %d timings, want 3", len(timings))
	}
	if timings[0].StartTime != 0 {
		t.Errorf("first start = %f, want 0", timings[0].StartTime)
	}
	if math.Abs(timings[2].EndTime-3.0) > 0.001 {
		t.Errorf("last end = %f, want 3.0", timings[2].EndTime)
	}
	for i := 1; i < len(timings); i++ {
		if timings[i].StartTime < timings[i-1].EndTime-0.001 {
			t.Errorf("timing %d overlaps previous", i)
		}
	}
}

func TestEstimateTimingsEmptyText(t *testing.T) {
	if timings := EstimateTimingsFromDuration("", 2.0); timings != nil {
		t.Errorf("got %v, want nil for empty text", timings)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name    string
		timings []WordTiming
		want    float64
	}{
		{name: "nil", timings: nil, want: 0},
		{name: "empty", timings: []WordTiming{}, want: 0},
		{
			name: "multiple",
			timings: []WordTiming{
				{Word: "a", StartTime: 0, EndTime: 0.5},
				{Word: "b", StartTime: 0.5, EndTime: 1.2},
			},
			want: 1.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duration(tt.timings); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateAudioDuration(t *testing.T) {
	// 16000 bytes at 128 kbit/s is exactly one second.
	if got := EstimateAudioDuration(make([]byte, 16000)); math.Abs(got-1.0) > 0.001 {
		t.Errorf("EstimateAudioDuration() = %f, want 1.0", got)
	}
}

func TestStubProviderSynthesize(t *testing.T) {
	provider := NewStubProvider(120)

	result, err := provider.Synthesize(context.Background(), "one two three four", "any-voice")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}

	// 4 words at 120 wpm is 2 seconds.
	if math.Abs(result.Duration-2.0) > 0.001 {
		t.Errorf("duration = %f, want 2.0", result.Duration)
	}
	if len(result.Timings) != 4 {
		t.Errorf("got %d timings, want 4", len(result.Timings))
	}

	if len(result.Audio) < wavHeaderSize {
		t.Fatalf("audio too short: %d bytes", len(result.Audio))
	}
	if string(result.Audio[0:4]) != "RIFF" {
		t.Error("audio does not start with RIFF header")
	}
	if string(result.Audio[8:12]) != "WAVE" {
		t.Error("audio missing WAVE marker")
	}
}

func TestStubProviderDefaultsRate(t *testing.T) {
	provider := NewStubProvider(0)

	result, err := provider.Synthesize(context.Background(), "hello", "v")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if result.Duration <= 0 {
		t.Error("expected positive duration with default rate")
	}
}
