package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"promptreel/pkg/httputil"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1/images/generations"
	generateTimeout   = 60 * time.Second
	downloadTimeout   = 30 * time.Second
	minValidImageSize = 100
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client generates one image per descriptive prompt via an OpenAI-compatible
// image endpoint and downloads the resulting asset. Generation calls are
// rate limited client-side.
type Client struct {
	apiKey     string
	model      string
	size       string
	quality    string
	httpClient doer
	downloader doer
	limiter    *rate.Limiter
	baseURL    string
}

type Options struct {
	Model       string
	Size        string
	Quality     string
	CallsPerMin int
}

type option func(*Client)

func withBaseURL(url string) option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func withHTTPClient(client doer) option {
	return func(c *Client) {
		c.httpClient = client
		c.downloader = client
	}
}

type generateRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

type generateResponse struct {
	Data  []generatedImage `json:"data"`
	Error *apiError        `json:"error,omitempty"`
}

type generatedImage struct {
	URL string `json:"url"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewClient(apiKey string, opts Options) *Client {
	return newClient(apiKey, opts)
}

func newClient(apiKey string, opts Options, testOpts ...option) *Client {
	callsPerMin := opts.CallsPerMin
	if callsPerMin <= 0 {
		callsPerMin = 15
	}

	c := &Client{
		apiKey:  apiKey,
		model:   opts.Model,
		size:    opts.Size,
		quality: opts.Quality,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: generateTimeout},
			httputil.DefaultRetryConfig(),
		),
		downloader: httputil.NewRetryClient(
			&http.Client{Timeout: downloadTimeout},
			httputil.DefaultRetryConfig(),
		),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(callsPerMin)), 1),
		baseURL: defaultBaseURL,
	}

	for _, opt := range testOpts {
		opt(c)
	}

	return c
}

// Generate returns the URL of a freshly generated image for the prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	reqBody := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		N:       1,
		Size:    c.size,
		Quality: c.quality,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if genResp.Error != nil && genResp.Error.Message != "" {
			return "", fmt.Errorf("image generation: %s", genResp.Error.Message)
		}
		return "", fmt.Errorf("image generation: %s", resp.Status)
	}

	if len(genResp.Data) == 0 || genResp.Data[0].URL == "" {
		return "", fmt.Errorf("no image in response")
	}

	return genResp.Data[0].URL, nil
}

// Download fetches a generated asset and rejects responses that are not a
// plausible image.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.downloader.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	if !isValidImage(data) {
		return nil, fmt.Errorf("downloaded data is not a valid image")
	}

	return data, nil
}

func isValidImage(data []byte) bool {
	if len(data) < minValidImageSize {
		return false
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return true
	}
	return bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47})
}
