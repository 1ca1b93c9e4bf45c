package videoproc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type captureTransport struct {
	status   int
	body     string
	lastReq  *http.Request
	lastBody []byte
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	req.Body.Close()
	c.lastReq = req
	c.lastBody = body
	return &http.Response{
		StatusCode: c.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(c.body))),
	}, nil
}

func TestProcessURLPayload(t *testing.T) {
	transport := &captureTransport{status: http.StatusOK, body: `{"transcript":" Eerst de uien fruiten. ","collage_url":"https://cdn.bonchef.io/collage.jpg"}`}
	client := NewClient(Options{
		BaseURL:    "https://video.bonchef.io/",
		APIKey:     "token",
		HTTPClient: &http.Client{Transport: transport},
	})

	res := client.ProcessURL(context.Background(), "https://www.tiktok.com/@c/video/1")
	if !res.Success {
		t.Fatalf("ProcessURL failed: %s", res.Error)
	}
	if res.Data.Transcript != "Eerst de uien fruiten." || res.Data.CollageURL != "https://cdn.bonchef.io/collage.jpg" {
		t.Fatalf("data = %#v", res.Data)
	}
	if transport.lastReq.URL.String() != "https://video.bonchef.io/process" {
		t.Fatalf("url = %s", transport.lastReq.URL)
	}
	if got := transport.lastReq.Header.Get("Authorization"); got != "Bearer token" {
		t.Fatalf("authorization = %q", got)
	}
	var payload map[string]string
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["url"] != "https://www.tiktok.com/@c/video/1" {
		t.Fatalf("payload = %#v", payload)
	}
}

func TestProcessURLFailuresAreSoft(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		status  int
		body    string
	}{
		{name: "not configured", baseURL: "", status: http.StatusOK, body: `{}`},
		{name: "server error", baseURL: "https://video", status: http.StatusBadGateway, body: `{"error":"ffmpeg crashed"}`},
		{name: "empty result", baseURL: "https://video", status: http.StatusOK, body: `{"transcript":""}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := NewClient(Options{
				BaseURL:    tc.baseURL,
				HTTPClient: &http.Client{Transport: &captureTransport{status: tc.status, body: tc.body}},
			})
			res := client.ProcessURL(context.Background(), "https://x/v")
			if res.Success {
				t.Fatalf("expected failure, got %#v", res.Data)
			}
			if strings.Contains(res.Error, "ffmpeg") {
				t.Fatalf("upstream error leaked: %q", res.Error)
			}
		})
	}
}
