package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrTooManyQueued     = errors.New("too many queued jobs")
	ErrInvalidTransition = errors.New("invalid job status transition")

	ErrFetchExhausted         = errors.New("fetch exhausted")
	ErrExtractionFailed       = errors.New("extraction failed")
	ErrUnsupportedSourceType  = errors.New("unsupported source type")
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
	ErrValidationRejected     = errors.New("validation rejected")
	ErrPlatformScrapeFailed   = errors.New("platform scrape failed")
)

// ImportError carries a message that is safe to show to end users next to
// the taxonomy kind and the underlying cause.
type ImportError struct {
	Kind    error
	Message string
	Cause   error
}

// NewImportError builds an ImportError. An empty message falls back to the
// kind's text.
func NewImportError(kind error, message string, cause error) *ImportError {
	return &ImportError{Kind: kind, Message: message, Cause: cause}
}

func (e *ImportError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "import failed"
}

func (e *ImportError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}

// AsImportError reports whether err carries an ImportError.
func AsImportError(err error) (*ImportError, bool) {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
