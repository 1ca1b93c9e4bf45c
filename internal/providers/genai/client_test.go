package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestGenerateJSONSendsSystemAndParts(t *testing.T) {
	var captured geminiGenerateContentRequest
	var capturedURL string
	client, err := NewClient(Options{
		APIKey: "secret",
		Model:  "gemini-test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			capturedURL = r.URL.String()
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"{\"ok\":"},{"text":"true}"}]}}]}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	out, err := client.GenerateJSON(context.Background(), "system prompt",
		TextPart("caption"),
		Part{MimeType: "image/png", Data: []byte{1, 2, 3}},
		Part{MimeType: "image/jpeg", FileURI: "https://cdn.example.com/a.jpg"},
		TextPart("   "),
	)
	if err != nil {
		t.Fatalf("GenerateJSON returned error: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(capturedURL, "/models/gemini-test:generateContent") || !strings.Contains(capturedURL, "key=secret") {
		t.Fatalf("unexpected url %q", capturedURL)
	}
	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != "system prompt" {
		t.Fatalf("system instruction missing: %#v", captured.SystemInstruction)
	}
	if captured.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("response mime = %q", captured.GenerationConfig.ResponseMimeType)
	}
	parts := captured.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 3 (blank text dropped)", len(parts))
	}
	if parts[1].InlineData == nil || parts[1].InlineData.Data != base64.StdEncoding.EncodeToString([]byte{1, 2, 3}) {
		t.Fatalf("inline data not encoded: %#v", parts[1])
	}
	if parts[2].FileData == nil || parts[2].FileData.FileURI != "https://cdn.example.com/a.jpg" {
		t.Fatalf("file data missing: %#v", parts[2])
	}
}

func TestGenerateJSONSurfacesAPIError(t *testing.T) {
	client, _ := NewClient(Options{
		APIKey: "secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`), nil
		})},
	})

	_, err := client.GenerateJSON(context.Background(), "", TextPart("x"))
	if err == nil || !strings.Contains(err.Error(), "gemini status 429: quota") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateJSONRequiresAPIKey(t *testing.T) {
	client, _ := NewClient(Options{})
	if _, err := client.GenerateJSON(context.Background(), "", TextPart("x")); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestGenerateImageDecodesInlineData(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest")
	body := `{"candidates":[{"content":{"parts":[{"text":"hier is je foto"},{"inlineData":{"mimeType":"image/png","data":"` + base64.StdEncoding.EncodeToString(png) + `"}}]}}]}`
	client, _ := NewClient(Options{
		APIKey: "secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if !strings.Contains(r.URL.Path, "gemini-2.5-flash-image") {
				t.Fatalf("image request sent to %q", r.URL.Path)
			}
			return jsonResponse(http.StatusOK, body), nil
		})},
	})

	data, mime, err := client.GenerateImage(context.Background(), "stamppot")
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if mime != "image/png" || string(data) != string(png) {
		t.Fatalf("got %q %q", mime, data)
	}
}

func TestDownloadStripsMimeParameters(t *testing.T) {
	client, _ := NewClient(Options{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Query().Get("key") != "" {
				t.Fatalf("api key leaked to third-party host")
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"audio/mpeg; charset=binary"}},
				Body:       io.NopCloser(strings.NewReader("ID3audio")),
			}, nil
		})},
		APIKey: "secret",
	})

	part, err := client.Download(context.Background(), "https://cdn.example.com/voice.mp3")
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if part.MimeType != "audio/mpeg" || string(part.Data) != "ID3audio" {
		t.Fatalf("part = %#v", part)
	}
}
