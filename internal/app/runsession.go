package app

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// runSession owns the output directory of one pipeline invocation: the final
// video lives at the session root, intermediate assets in a scratch
// subdirectory that is always removed after composition.
type runSession struct {
	id      string
	dir     string
	baseDir string
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func newRunSession(baseDir string) *runSession {
	return &runSession{
		id:      time.Now().Format("20060102_150405"),
		baseDir: baseDir,
	}
}

func (s *runSession) finalize(title string) error {
	sanitized := sanitizeForPath(title)
	if sanitized == "" {
		sanitized = "untitled"
	}
	if len(sanitized) > 50 {
		sanitized = sanitized[:50]
	}

	s.dir = filepath.Join(s.baseDir, fmt.Sprintf("%s_%s", s.id, sanitized))
	return os.MkdirAll(s.scratchDir(), 0755)
}

func (s *runSession) videoPath() string  { return filepath.Join(s.dir, "video.mp4") }
func (s *runSession) scriptPath() string { return filepath.Join(s.dir, "script.txt") }
func (s *runSession) scratchDir() string { return filepath.Join(s.dir, "scratch") }

func (s *runSession) cleanupScratch() {
	_ = os.RemoveAll(s.scratchDir())
}

func sanitizeForPath(s string) string {
	s = strings.ToLower(s)
	s = sanitizeRegex.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
