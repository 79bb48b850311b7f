package elevenlabs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"promptreel/internal/speech"
	"promptreel/pkg/httputil"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1"
	defaultTimeout = 120 * time.Second
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the ElevenLabs with-timestamps endpoint. Multiple API keys
// are rotated when one runs into its quota; any other upstream failure is
// returned as-is.
type Client struct {
	apiKeys    []string
	keyIndex   uint64
	httpClient doer
	baseURL    string
	model      string
	speed      float64
	stability  float64
	similarity float64
}

type Config struct {
	APIKeys    []string
	Model      string
	Speed      float64
	Stability  float64
	Similarity float64
}

type option func(*Client)

type timestampResponse struct {
	AudioBase64 string     `json:"audio_base64"`
	Alignment   *alignment `json:"alignment"`
}

type alignment struct {
	Characters          []string  `json:"characters"`
	CharacterStartTimes []float64 `json:"character_start_times_seconds"`
	CharacterEndTimes   []float64 `json:"character_end_times_seconds"`
}

func withBaseURL(url string) option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func withHTTPClient(client doer) option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func NewClient(cfg Config) speech.Provider {
	return newClient(cfg)
}

func newClient(cfg Config, opts ...option) *Client {
	keys := cfg.APIKeys
	if len(keys) == 0 {
		keys = []string{""}
	}

	c := &Client{
		apiKeys: keys,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: defaultTimeout},
			httputil.DefaultRetryConfig(),
		),
		baseURL:    defaultBaseURL,
		model:      cfg.Model,
		speed:      cfg.Speed,
		stability:  cfg.Stability,
		similarity: cfg.Similarity,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (*speech.Result, error) {
	url := fmt.Sprintf("%s/text-to-speech/%s/with-timestamps", c.baseURL, voiceID)

	start := c.nextKeyIndex()
	var err error
	for i := 0; i < len(c.apiKeys); i++ {
		key := c.apiKeys[(start+i)%len(c.apiKeys)]

		var result *speech.Result
		result, err = c.doRequestWithKey(ctx, url, text, key)
		if err == nil {
			return result, nil
		}
		if !isQuotaError(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("all api keys exhausted: %w", err)
}

func (c *Client) nextKeyIndex() int {
	if len(c.apiKeys) == 1 {
		return 0
	}
	idx := atomic.AddUint64(&c.keyIndex, 1) - 1
	return int(idx % uint64(len(c.apiKeys)))
}

func (c *Client) doRequestWithKey(ctx context.Context, url, text, apiKey string) (*speech.Result, error) {
	req, err := c.buildRequest(ctx, url, text, apiKey)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs: %s - %s", resp.Status, string(body))
	}

	return parseResponse(text, body)
}

func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "quota_exceeded") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "429")
}

func (c *Client) buildRequest(ctx context.Context, url, text, apiKey string) (*http.Request, error) {
	payload := map[string]any{
		"text":     text,
		"model_id": c.model,
		"voice_settings": map[string]any{
			"stability":        c.stability,
			"similarity_boost": c.similarity,
			"speed":            c.speed,
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", apiKey)

	return req, nil
}

func parseResponse(text string, body []byte) (*speech.Result, error) {
	var tsResp timestampResponse
	if err := json.Unmarshal(body, &tsResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(tsResp.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}

	timings := parseTimings(text, tsResp.Alignment)
	if len(timings) == 0 {
		timings = speech.EstimateTimings(text, audio)
	}

	return &speech.Result{
		Audio:    audio,
		Duration: speech.Duration(timings),
		Timings:  timings,
	}, nil
}

// parseTimings maps the character-level alignment onto the whitespace-split
// words of the request text. Falls back to estimation when alignment is
// missing or does not cover the text.
func parseTimings(text string, align *alignment) []speech.WordTiming {
	if align == nil || len(align.Characters) == 0 {
		return nil
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	timings := make([]speech.WordTiming, 0, len(words))
	charIdx := 0

	for _, word := range words {
		for charIdx < len(align.Characters) && align.Characters[charIdx] == " " {
			charIdx++
		}

		if charIdx >= len(align.Characters) {
			break
		}

		startIdx := charIdx
		endIdx := startIdx
		matchedChars := 0
		for endIdx < len(align.Characters) && matchedChars < len(word) {
			if align.Characters[endIdx] != " " {
				matchedChars++
			}
			endIdx++
		}

		if startIdx < len(align.CharacterStartTimes) && endIdx-1 < len(align.CharacterEndTimes) {
			timings = append(timings, speech.WordTiming{
				Word:      word,
				StartTime: align.CharacterStartTimes[startIdx],
				EndTime:   align.CharacterEndTimes[endIdx-1],
			})
		}

		charIdx = endIdx
	}

	return timings
}
