package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"bonchef/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type memoryObjects struct {
	puts map[string]string
}

func (m *memoryObjects) Put(_ context.Context, key string, _ []byte, contentType string) (string, error) {
	if m.puts == nil {
		m.puts = map[string]string{}
	}
	m.puts[key] = contentType
	return "https://img.bonchef.io/" + key, nil
}

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	webpBytes = []byte{
		'R', 'I', 'F', 'F', 0x1a, 0x00, 0x00, 0x00, 'W', 'E', 'B', 'P',
		'V', 'P', '8', 'L', 0x0d, 0x00, 0x00, 0x00,
		0x2f, 0x00, 0x00, 0x00, 0x10, 0x07, 0x10, 0x11, 0x11, 0x88, 0x88, 0xfe, 0x07, 0x00,
	}
)

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "recipes/a.png", want: "recipes/a.png"},
		{in: "/recipes//b.png", want: "recipes/b.png"},
		{in: `recipes\c.png`, want: "recipes/c.png"},
		{in: "../etc/passwd", wantErr: true},
		{in: "  ", wantErr: true},
	}
	for _, tc := range cases {
		got, err := sanitizeKey(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("sanitizeKey(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestFileStorePutReturnsPublicURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	url, err := store.Put(context.Background(), "recipes/x.png", pngBytes, "image/png")
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if url != "http://localhost:8080/static/recipes/x.png" {
		t.Fatalf("url = %q", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "recipes", "x.png")); err != nil {
		t.Fatalf("file not written: %v", err)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	client := &fakeS3{}
	store := newS3Store(client, S3Config{Bucket: "bonchef", Region: "eu-west-1"})

	url, err := store.Put(context.Background(), "/recipes/a.png", pngBytes, "image/png")
	if err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if url != "https://bonchef.s3.eu-west-1.amazonaws.com/recipes/a.png" {
		t.Fatalf("url = %q", url)
	}
	if *client.input.Key != "recipes/a.png" || *client.input.ContentType != "image/png" {
		t.Fatalf("input = %#v", client.input)
	}
}

func TestPublicBaseURL(t *testing.T) {
	cases := []struct {
		cfg  S3Config
		want string
	}{
		{S3Config{Bucket: "b", Region: "r", PublicBaseURL: "https://cdn.bonchef.io/"}, "https://cdn.bonchef.io"},
		{S3Config{Bucket: "b", Region: "r", Endpoint: "http://minio:9000", UsePathStyle: true}, "http://minio:9000/b"},
		{S3Config{Bucket: "b", Region: "ams3", Endpoint: "https://ams3.digitaloceanspaces.com"}, "https://b.ams3.digitaloceanspaces.com"},
	}
	for _, tc := range cases {
		if got := publicBaseURL(tc.cfg); got != tc.want {
			t.Fatalf("publicBaseURL(%+v) = %q, want %q", tc.cfg, got, tc.want)
		}
	}
}

func TestUploadAcceptedFormats(t *testing.T) {
	objects := &memoryObjects{}
	store := NewImageStore(objects, ImageOptions{})
	store.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	url, err := store.Upload(context.Background(), pngBytes, "image/png")
	if err != nil {
		t.Fatalf("Upload png returned error: %v", err)
	}
	if !strings.HasPrefix(url, "https://img.bonchef.io/recipes/2026/03/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q", url)
	}

	url, err = store.Upload(context.Background(), webpBytes, "image/webp")
	if err != nil {
		t.Fatalf("Upload webp returned error: %v", err)
	}
	key := strings.TrimPrefix(url, "https://img.bonchef.io/")
	if objects.puts[key] != "image/jpeg" {
		t.Fatalf("webp must be labelled image/jpeg, got %q", objects.puts[key])
	}
}

func TestUploadSniffsUnlabelledAVIF(t *testing.T) {
	objects := &memoryObjects{}
	store := NewImageStore(objects, ImageOptions{})
	avif := []byte("\x00\x00\x00\x1cftypavif\x00\x00\x00\x00avifmif1")

	for _, label := range []string{"", "application/octet-stream"} {
		url, err := store.Upload(context.Background(), avif, label)
		if err != nil {
			t.Fatalf("Upload(%q) returned error: %v", label, err)
		}
		if !strings.HasSuffix(url, ".avif") {
			t.Fatalf("url = %q", url)
		}
		if got := objects.puts[strings.TrimPrefix(url, "https://img.bonchef.io/")]; got != "image/avif" {
			t.Fatalf("content type = %q", got)
		}
	}
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	store := NewImageStore(&memoryObjects{}, ImageOptions{})
	for _, tc := range []struct {
		data []byte
		mime string
	}{
		{[]byte("GIF89a"), "image/gif"},
		{[]byte("RIFF\x00\x00\x00\x00WEBPjunk"), "image/webp"},
		{nil, "image/png"},
	} {
		_, err := store.Upload(context.Background(), tc.data, tc.mime)
		if !errors.Is(err, domain.ErrUnsupportedImageFormat) {
			t.Fatalf("Upload(%s) err = %v, want ErrUnsupportedImageFormat", tc.mime, err)
		}
		if !strings.Contains(err.Error(), "screenshot") {
			t.Fatalf("message must suggest a screenshot: %q", err.Error())
		}
	}
}

func TestUploadFromURL(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		switch r.URL.Path {
		case "/a.png":
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"image/png"}},
				Body:       io.NopCloser(strings.NewReader(string(pngBytes))),
			}, nil
		case "/anim.gif":
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"image/gif"}},
				Body:       io.NopCloser(strings.NewReader("GIF89a")),
			}, nil
		case "/gone.png":
			return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(""))}, nil
		}
		return nil, errors.New("dial tcp: no such host")
	})}
	store := NewImageStore(&memoryObjects{}, ImageOptions{
		HTTPClient:    client,
		Placeholder:   "https://static.bonchef.io/p.png",
		PublicBaseURL: "https://img.bonchef.io",
	})
	ctx := context.Background()

	url, err := store.UploadFromURL(ctx, "https://x/a.png")
	if err != nil || !strings.HasPrefix(url, "https://img.bonchef.io/recipes/") {
		t.Fatalf("UploadFromURL = %q, %v", url, err)
	}

	for _, src := range []string{"", "https://x/gone.png", "https://down/missing.png", "https://x/anim.gif"} {
		got, err := store.UploadFromURL(ctx, src)
		if err != nil || got != "https://static.bonchef.io/p.png" {
			t.Fatalf("UploadFromURL(%q) = %q, %v; want placeholder", src, got, err)
		}
	}

	own := "https://img.bonchef.io/recipes/2026/01/x.png"
	if got, _ := store.UploadFromURL(ctx, own); got != own {
		t.Fatalf("own url re-uploaded: %q", got)
	}
}
