// Package videoproc talks to the external video processing service that
// turns a social video into a transcript and a collage of key frames.
package videoproc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bonchef/internal/domain"
	"bonchef/internal/infra"
)

// ErrNotConfigured indicates that no processor endpoint was configured.
var ErrNotConfigured = errors.New("videoproc: base url is required")

// Options configures the processing client.
type Options struct {
	BaseURL        string
	APIKey         string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the video processor.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *infra.Logger
}

type processRequest struct {
	URL string `json:"url"`
}

type processResponse struct {
	Transcript string `json:"transcript"`
	CollageURL string `json:"collage_url"`
	Error      string `json:"error"`
}

// NewClient constructs a client. Processing a video takes minutes, so the
// default timeout is generous.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		apiKey:     strings.TrimSpace(opts.APIKey),
		httpClient: httpClient,
		logger:     infra.LoggerOrDiscard(opts.Logger),
	}
}

// ProcessURL downloads and processes the video at videoURL.
func (c *Client) ProcessURL(ctx context.Context, videoURL string) domain.Result[domain.ProcessedVideo] {
	start := time.Now()
	out, err := c.process(ctx, videoURL)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", videoURL).Dur("took", time.Since(start)).Msg("videoproc: processing failed")
		return domain.Fail[domain.ProcessedVideo]("video kon niet worden verwerkt")
	}
	c.logger.Debug().
		Str("url", videoURL).
		Int("transcript_chars", len(out.Transcript)).
		Dur("took", time.Since(start)).
		Msg("videoproc: processed video")
	return domain.Ok(out)
}

func (c *Client) process(ctx context.Context, videoURL string) (domain.ProcessedVideo, error) {
	if c.baseURL == "" {
		return domain.ProcessedVideo{}, ErrNotConfigured
	}
	body, err := json.Marshal(processRequest{URL: strings.TrimSpace(videoURL)})
	if err != nil {
		return domain.ProcessedVideo{}, fmt.Errorf("videoproc: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", bytes.NewReader(body))
	if err != nil {
		return domain.ProcessedVideo{}, fmt.Errorf("videoproc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ProcessedVideo{}, fmt.Errorf("videoproc: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.ProcessedVideo{}, fmt.Errorf("videoproc: read response: %w", err)
	}

	var decoded processResponse
	decodeErr := json.Unmarshal(raw, &decoded)
	if resp.StatusCode >= 300 {
		if decodeErr == nil && decoded.Error != "" {
			return domain.ProcessedVideo{}, fmt.Errorf("videoproc: status %d: %s", resp.StatusCode, decoded.Error)
		}
		return domain.ProcessedVideo{}, fmt.Errorf("videoproc: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if decodeErr != nil {
		return domain.ProcessedVideo{}, fmt.Errorf("videoproc: decode response: %w", decodeErr)
	}
	if strings.TrimSpace(decoded.Transcript) == "" && strings.TrimSpace(decoded.CollageURL) == "" {
		return domain.ProcessedVideo{}, errors.New("videoproc: empty result")
	}
	return domain.ProcessedVideo{
		Transcript: strings.TrimSpace(decoded.Transcript),
		CollageURL: strings.TrimSpace(decoded.CollageURL),
	}, nil
}
