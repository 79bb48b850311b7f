package clip

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"promptreel/internal/script"
	"promptreel/internal/speech"
)

// MediaPair is the generated image and narration audio for one directive,
// stored as scratch files, plus the narration duration in seconds. Pairs are
// consumed once by the compositor and disposable afterwards.
type MediaPair struct {
	Index     int
	ImagePath string
	AudioPath string
	Duration  float64
}

// ImageSynthesizer generates one image per prompt and downloads the asset.
type ImageSynthesizer interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Download(ctx context.Context, imageURL string) ([]byte, error)
}

// Assembler converts each script directive into a media pair. Directives are
// processed with bounded parallelism; output order always matches directive
// order. Any failed directive aborts the whole assembly.
type Assembler struct {
	images      ImageSynthesizer
	speech      speech.Provider
	parallelism int
}

func NewAssembler(images ImageSynthesizer, speechProvider speech.Provider, parallelism int) *Assembler {
	if parallelism <= 0 {
		parallelism = 2
	}
	return &Assembler{
		images:      images,
		speech:      speechProvider,
		parallelism: parallelism,
	}
}

func (a *Assembler) Assemble(ctx context.Context, scratchDir string, directives []script.Directive) ([]MediaPair, error) {
	if len(directives) == 0 {
		return nil, fmt.Errorf("no directives to assemble")
	}

	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		index int
		pair  MediaPair
		err   error
	}

	results := make(chan result, len(directives))
	semaphore := make(chan struct{}, a.parallelism)

	for i, directive := range directives {
		go func(index int, d script.Directive) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			slog.Info("Generating clip media", "clip", index+1, "total", len(directives))
			pair, err := a.assembleOne(ctx, scratchDir, index, d)
			if err != nil {
				results <- result{index: index, err: err}
				return
			}
			results <- result{index: index, pair: *pair}
		}(i, directive)
	}

	pairs := make([]MediaPair, len(directives))
	failedIndex := -1
	var firstErr error

	for range directives {
		r := <-results
		if r.err != nil {
			cancel()
			if failedIndex == -1 || r.index < failedIndex {
				failedIndex = r.index
				firstErr = r.err
			}
			continue
		}
		pairs[r.index] = r.pair
	}

	if firstErr != nil {
		return nil, fmt.Errorf("clip generation failed at index %d: %w", failedIndex, firstErr)
	}

	return pairs, nil
}

func (a *Assembler) assembleOne(ctx context.Context, scratchDir string, index int, d script.Directive) (*MediaPair, error) {
	imagePath, err := a.fetchImage(ctx, scratchDir, index, d.ImagePrompt)
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}

	audioPath, duration, err := a.synthesizeNarration(ctx, scratchDir, index, d)
	if err != nil {
		return nil, fmt.Errorf("narration: %w", err)
	}

	return &MediaPair{
		Index:     index,
		ImagePath: imagePath,
		AudioPath: audioPath,
		Duration:  duration,
	}, nil
}

func (a *Assembler) fetchImage(ctx context.Context, scratchDir string, index int, prompt string) (string, error) {
	imageURL, err := a.images.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	data, err := a.images.Download(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}

	path := filepath.Join(scratchDir, fmt.Sprintf("img_%03d_%s%s", index, uuid.NewString(), imageExt(data)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}

	return path, nil
}

func (a *Assembler) synthesizeNarration(ctx context.Context, scratchDir string, index int, d script.Directive) (string, float64, error) {
	result, err := a.speech.Synthesize(ctx, d.Text, d.VoiceID)
	if err != nil {
		return "", 0, fmt.Errorf("synthesize: %w", err)
	}

	duration := result.Duration
	if duration == 0 {
		duration = speech.EstimateAudioDuration(result.Audio)
	}

	path := filepath.Join(scratchDir, fmt.Sprintf("audio_%03d_%s%s", index, uuid.NewString(), audioExt(result.Audio)))
	if err := os.WriteFile(path, result.Audio, 0644); err != nil {
		return "", 0, fmt.Errorf("write: %w", err)
	}

	return path, duration, nil
}

func imageExt(data []byte) string {
	if len(data) >= 4 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G' {
		return ".png"
	}
	return ".jpg"
}

func audioExt(data []byte) string {
	if len(data) >= 4 && data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' {
		return ".wav"
	}
	return ".mp3"
}
