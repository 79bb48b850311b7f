package video

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultFFmpegPath = "ffmpeg"
	defaultFFprobe    = "ffprobe"
	defaultFrameRate  = 24
	defaultPadding    = 1

	// ContentType of every artifact the compositor produces.
	ContentType = "video/mp4"
)

// Segment is one ordered piece of the final video: a still image shown for
// the duration of its narration plus fixed padding.
type Segment struct {
	ImagePath     string
	AudioPath     string
	AudioDuration float64
}

// Artifact is the finished composed video. Ownership passes to the caller.
type Artifact struct {
	Path        string
	Duration    float64
	ContentType string
}

// Compositor stitches ordered image+audio segments into one video with hard
// cuts, encoded at a fixed frame rate with libx264/aac.
type Compositor struct {
	ffmpegPath string
	ffprobe    string
	width      int
	height     int
	frameRate  int
	padding    int
}

type CompositorOptions struct {
	Resolution     string
	FrameRate      int
	PaddingSeconds int
}

func NewCompositor(opts CompositorOptions) *Compositor {
	width, height := parseResolution(opts.Resolution)
	frameRate := opts.FrameRate
	if frameRate <= 0 {
		frameRate = defaultFrameRate
	}
	padding := opts.PaddingSeconds
	if padding <= 0 {
		padding = defaultPadding
	}

	return &Compositor{
		ffmpegPath: defaultFFmpegPath,
		ffprobe:    defaultFFprobe,
		width:      width,
		height:     height,
		frameRate:  frameRate,
		padding:    padding,
	}
}

func parseResolution(res string) (int, int) {
	parts := strings.Split(res, "x")
	if len(parts) != 2 {
		return 1080, 1920
	}
	w, err1 := strconv.Atoi(parts[0])
	h, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 1080, 1920
	}
	return w, h
}

// Compose encodes each segment and concatenates them in order into
// outputPath. Intermediate files live in scratchDir and are removed before
// returning, success or not.
func (c *Compositor) Compose(ctx context.Context, segments []Segment, scratchDir, outputPath string) (*Artifact, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("composition failed: no segments")
	}

	segmentPaths := make([]string, 0, len(segments))
	defer func() {
		for _, p := range segmentPaths {
			_ = os.Remove(p)
		}
	}()

	totalDuration := 0.0
	for i, seg := range segments {
		duration, err := c.segmentDuration(ctx, seg)
		if err != nil {
			return nil, fmt.Errorf("composition failed: segment %d: %w", i, err)
		}

		segPath := filepath.Join(scratchDir, fmt.Sprintf("seg_%03d.mp4", i))
		if err := c.encodeSegment(ctx, seg, duration, segPath); err != nil {
			return nil, fmt.Errorf("composition failed: segment %d: %w", i, err)
		}
		segmentPaths = append(segmentPaths, segPath)
		totalDuration += duration
	}

	if err := c.concatSegments(ctx, segmentPaths, scratchDir, outputPath); err != nil {
		_ = os.Remove(outputPath)
		return nil, fmt.Errorf("composition failed: %w", err)
	}

	return &Artifact{
		Path:        outputPath,
		Duration:    totalDuration,
		ContentType: ContentType,
	}, nil
}

// segmentDuration is floor(narration seconds) plus the fixed padding. The
// audio file is probed when the caller did not measure it.
func (c *Compositor) segmentDuration(ctx context.Context, seg Segment) (float64, error) {
	audioDuration := seg.AudioDuration
	if audioDuration <= 0 {
		probed, err := c.probeDuration(ctx, seg.AudioPath)
		if err != nil {
			return 0, err
		}
		audioDuration = probed
	}
	return math.Floor(audioDuration) + float64(c.padding), nil
}

func (c *Compositor) encodeSegment(ctx context.Context, seg Segment, duration float64, outputPath string) error {
	scaleFilter := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		c.width, c.height, c.width, c.height)

	args := []string{
		"-y",
		"-loop", "1",
		"-i", seg.ImagePath,
		"-i", seg.AudioPath,
		"-t", fmt.Sprintf("%.2f", duration),
		"-vf", scaleFilter,
		"-r", strconv.Itoa(c.frameRate),
		"-pix_fmt", "yuv420p",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-ar", "44100",
		"-preset", "fast",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg encode failed: %w, output: %s", err, string(output))
	}
	return nil
}

func (c *Compositor) concatSegments(ctx context.Context, segmentPaths []string, scratchDir, outputPath string) error {
	listPath := filepath.Join(scratchDir, "concat_list.txt")
	listContent, err := concatListContent(segmentPaths)
	if err != nil {
		return err
	}
	if err := os.WriteFile(listPath, []byte(listContent), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer func() { _ = os.Remove(listPath) }()

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w, output: %s", err, string(output))
	}
	return nil
}

func concatListContent(paths []string) (string, error) {
	var builder strings.Builder
	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("resolve path: %w", err)
		}
		fmt.Fprintf(&builder, "file '%s'\n", absPath)
	}
	return builder.String(), nil
}

func (c *Compositor) probeDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(ctx, c.ffprobe, args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var dur float64
	if _, err := fmt.Sscanf(string(output), "%f", &dur); err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return dur, nil
}
