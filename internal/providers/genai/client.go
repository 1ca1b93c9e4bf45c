package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bonchef/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("genai: api key is required")

// ErrEmptyResponse is returned when the model produced no usable content.
var ErrEmptyResponse = errors.New("genai: empty response")

const maxDownloadBytes = 25 << 20

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin facade over the Gemini generateContent REST endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	imageModel string
	httpClient *http.Client
	logger     *infra.Logger
}

// Part is one piece of multimodal input. Exactly one of Text, Data or
// FileURI is expected to be set.
type Part struct {
	Text     string
	MimeType string
	Data     []byte
	FileURI  string
}

// TextPart builds a text Part.
func TextPart(text string) Part {
	return Part{Text: text}
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	FileData   *geminiFileData   `json:"fileData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri,omitempty"`
}

type geminiGenerationConfig struct {
	CandidateCount     int      `json:"candidateCount,omitempty"`
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
	Temperature        *float64 `json:"temperature,omitempty"`
}

type geminiGenerateContentRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("genai: parse base url: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		imageModel: imageModel,
		httpClient: client,
		logger:     infra.LoggerOrDiscard(opts.Logger),
	}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// GenerateJSON asks the model for a JSON document and returns its raw text.
func (c *Client) GenerateJSON(ctx context.Context, system string, parts ...Part) (string, error) {
	return c.generateText(ctx, system, "application/json", parts)
}

// GenerateText asks the model for a plain text answer.
func (c *Client) GenerateText(ctx context.Context, system string, parts ...Part) (string, error) {
	return c.generateText(ctx, system, "text/plain", parts)
}

func (c *Client) generateText(ctx context.Context, system, mime string, parts []Part) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	payload := geminiGenerateContentRequest{
		Contents:         []geminiContent{{Role: "user", Parts: toGeminiParts(parts)}},
		GenerationConfig: &geminiGenerationConfig{CandidateCount: 1, ResponseMimeType: mime},
	}
	if strings.TrimSpace(system) != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	start := time.Now()
	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, c.model, payload, &response); err != nil {
		return "", err
	}

	var b strings.Builder
	if len(response.Candidates) > 0 {
		for _, part := range response.Candidates[0].Content.Parts {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug().
		Str("model", c.model).
		Str("mime", mime).
		Dur("took", time.Since(start)).
		Msg("genai: generated content")
	return text, nil
}

// GenerateImage renders an image for prompt and returns its bytes and MIME type.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	if c.apiKey == "" {
		return nil, "", ErrMissingAPIKey
	}
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:     1,
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, c.imageModel, payload, &response); err != nil {
		return nil, "", err
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			data, mime, err := c.decodeInlineAsset(ctx, part)
			if err != nil {
				c.logger.Warn().Err(err).Str("model", c.imageModel).Msg("genai: skip undecodable image part")
				continue
			}
			if len(data) == 0 {
				continue
			}
			if mime == "" {
				mime = http.DetectContentType(data)
			}
			return data, mime, nil
		}
	}
	return nil, "", ErrEmptyResponse
}

// Download fetches remote media so it can be sent inline.
func (c *Client) Download(ctx context.Context, rawURL string) (Part, error) {
	data, mime, err := c.downloadFile(ctx, rawURL)
	if err != nil {
		return Part{}, err
	}
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return Part{MimeType: mime, Data: data}, nil
}

func toGeminiParts(parts []Part) []geminiPart {
	out := make([]geminiPart, 0, len(parts))
	for _, p := range parts {
		switch {
		case len(p.Data) > 0:
			out = append(out, geminiPart{InlineData: &geminiInlineData{
				MimeType: p.MimeType,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
		case p.FileURI != "":
			out = append(out, geminiPart{FileData: &geminiFileData{MimeType: p.MimeType, FileURI: p.FileURI}})
		case strings.TrimSpace(p.Text) != "":
			out = append(out, geminiPart{Text: p.Text})
		}
	}
	return out
}

func (c *Client) invokeGemini(ctx context.Context, model string, payload any, out any) error {
	endpoint := c.baseURL + fmt.Sprintf("/models/%s:generateContent", url.PathEscape(model))
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func (c *Client) decodeInlineAsset(ctx context.Context, part geminiPart) ([]byte, string, error) {
	if part.InlineData != nil && part.InlineData.Data != "" {
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, "", fmt.Errorf("decode inline data: %w", err)
		}
		return data, part.InlineData.MimeType, nil
	}

	if part.FileData != nil && part.FileData.FileURI != "" {
		data, mime, err := c.downloadFile(ctx, part.FileData.FileURI)
		if err != nil {
			return nil, "", err
		}
		return data, firstNonEmpty(part.FileData.MimeType, mime), nil
	}

	return nil, "", nil
}

func (c *Client) downloadFile(ctx context.Context, uri string) ([]byte, string, error) {
	target := uri
	gemini := false
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
		gemini = true
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	if gemini && c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", fmt.Errorf("download file status %d", resp.StatusCode)
	}

	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	if len(blob) > maxDownloadBytes {
		return nil, "", fmt.Errorf("download file exceeds %d bytes", maxDownloadBytes)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
