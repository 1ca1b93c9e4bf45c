package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/webp"

	"bonchef/internal/domain"
	"bonchef/internal/infra"
)

// UnsupportedFormatMessage is shown when a user image is not accepted.
const UnsupportedFormatMessage = "Dit afbeeldingsformaat wordt niet ondersteund. Gebruik PNG, JPEG, WEBP of AVIF, of maak een screenshot van de afbeelding en probeer het opnieuw."

const defaultMaxImageBytes = 15 << 20

// ObjectStore writes objects and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".jpg",
	"image/avif": ".avif",
}

// ImageOptions configures an ImageStore.
type ImageOptions struct {
	Placeholder   string
	PublicBaseURL string
	HTTPClient    *http.Client
	MaxBytes      int64
	Logger        *infra.Logger
}

// ImageStore re-hosts recipe images in managed storage.
type ImageStore struct {
	objects     ObjectStore
	placeholder string
	ownPrefix   string
	client      *http.Client
	maxBytes    int64
	logger      *infra.Logger
	now         func() time.Time
}

func NewImageStore(objects ObjectStore, opts ImageOptions) *ImageStore {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = infra.DefaultPlaceholderImageURL
	}
	return &ImageStore{
		objects:     objects,
		placeholder: placeholder,
		ownPrefix:   strings.TrimRight(opts.PublicBaseURL, "/"),
		client:      client,
		maxBytes:    maxBytes,
		logger:      infra.LoggerOrDiscard(opts.Logger),
		now:         time.Now,
	}
}

// Placeholder returns the image used when nothing can be re-hosted.
func (s *ImageStore) Placeholder() string {
	return s.placeholder
}

// Upload stores data and returns its public URL. WEBP images are stored with
// a JPEG content type label; the bytes are not transcoded.
func (s *ImageStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	mime := normalizeContentType(contentType)
	if mime == "" || mime == "application/octet-stream" {
		mime = sniffImageType(data)
	}
	ext, ok := extensions[mime]
	if !ok || len(data) == 0 {
		return "", domain.NewImportError(domain.ErrUnsupportedImageFormat, UnsupportedFormatMessage,
			fmt.Errorf("content type %q", contentType))
	}
	if mime == "image/webp" {
		if _, err := webp.DecodeConfig(bytes.NewReader(data)); err != nil {
			return "", domain.NewImportError(domain.ErrUnsupportedImageFormat, UnsupportedFormatMessage, err)
		}
		mime = "image/jpeg"
	}

	now := s.now().UTC()
	key := fmt.Sprintf("recipes/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
	url, err := s.objects.Put(ctx, key, data, mime)
	if err != nil {
		return "", err
	}
	s.logger.Debug().Str("key", key).Str("content_type", mime).Int("bytes", len(data)).Msg("storage: image uploaded")
	return url, nil
}

// UploadFromURL downloads a remote image and re-hosts it. Absent,
// unreachable or unsupported sources resolve to the placeholder image.
func (s *ImageStore) UploadFromURL(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return s.placeholder, nil
	}
	if rawURL == s.placeholder || (s.ownPrefix != "" && strings.HasPrefix(rawURL, s.ownPrefix+"/")) {
		return rawURL, nil
	}

	data, contentType, err := s.download(ctx, rawURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", rawURL).Msg("storage: image unreachable, using placeholder")
		return s.placeholder, nil
	}
	url, err := s.Upload(ctx, data, contentType)
	if err != nil {
		if _, ok := domain.AsImportError(err); ok {
			s.logger.Warn().Err(err).Str("url", rawURL).Msg("storage: image format rejected, using placeholder")
			return s.placeholder, nil
		}
		return "", err
	}
	return url, nil
}

func (s *ImageStore) download(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/png,image/jpeg,image/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", s.maxBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// IsSupportedImageType reports whether contentType is an accepted upload format.
func IsSupportedImageType(contentType string) bool {
	_, ok := extensions[normalizeContentType(contentType)]
	return ok
}

// sniffImageType extends http.DetectContentType with AVIF, which it does
// not recognise. AVIF files are ISO-BMFF with an avif or avis brand.
func sniffImageType(data []byte) string {
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		if brand := string(data[8:12]); brand == "avif" || brand == "avis" {
			return "image/avif"
		}
	}
	return normalizeContentType(http.DetectContentType(data))
}

func normalizeContentType(contentType string) string {
	mime := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if mime == "image/jpg" || mime == "image/pjpeg" {
		return "image/jpeg"
	}
	return mime
}
