package speech

import (
	"context"
	"strings"
)

const DefaultWordsPerMinute = 150.0

// WordTiming is the narration window of a single spoken word, in seconds from
// the start of the audio.
type WordTiming struct {
	Word      string
	StartTime float64
	EndTime   float64
}

// Result is one synthesized narration: the audio bytes, the measured duration
// in seconds, and word-level timings when the service provides them.
type Result struct {
	Audio    []byte
	Duration float64
	Timings  []WordTiming
}

// Provider converts one text string plus a voice identifier into audio.
// A non-success upstream status is fatal to the item being synthesized.
type Provider interface {
	Synthesize(ctx context.Context, text, voiceID string) (*Result, error)
}

func Duration(timings []WordTiming) float64 {
	if len(timings) == 0 {
		return 0
	}
	return timings[len(timings)-1].EndTime
}

// EstimateTimingsFromDuration spreads words evenly over the known duration,
// weighting longer words slightly heavier, then rescales to fit exactly.
func EstimateTimingsFromDuration(text string, duration float64) []WordTiming {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	avgWordDuration := duration / float64(len(words))
	timings := make([]WordTiming, len(words))
	currentTime := 0.0

	for i, word := range words {
		wordDuration := avgWordDuration * (0.8 + 0.4*float64(len(word))/5.0)
		timings[i] = WordTiming{
			Word:      word,
			StartTime: currentTime,
			EndTime:   currentTime + wordDuration,
		}
		currentTime += wordDuration
	}

	if currentTime > 0 {
		scale := duration / currentTime
		for i := range timings {
			timings[i].StartTime *= scale
			timings[i].EndTime *= scale
		}
	}

	return timings
}

func EstimateTimings(text string, audio []byte) []WordTiming {
	return EstimateTimingsFromDuration(text, EstimateAudioDuration(audio))
}

// EstimateAudioDuration assumes 128 kbit/s MP3, which is what the speech
// services return by default.
func EstimateAudioDuration(audio []byte) float64 {
	bitrate := 128000.0
	return float64(len(audio)*8) / bitrate
}
