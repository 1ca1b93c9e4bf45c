package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{name: "pending to completed", from: JobStatusPending, to: JobStatusCompleted, want: true},
		{name: "pending to failed", from: JobStatusPending, to: JobStatusFailed, want: true},
		{name: "completed to pending", from: JobStatusCompleted, to: JobStatusPending, want: false},
		{name: "failed to pending", from: JobStatusFailed, to: JobStatusPending, want: false},
		{name: "completed to failed", from: JobStatusCompleted, to: JobStatusFailed, want: false},
		{name: "pending to pending", from: JobStatusPending, to: JobStatusPending, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Fatalf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestParseSourceType(t *testing.T) {
	if st, ok := ParseSourceType(" Vertical_Video "); !ok || st != SourceVerticalVideo {
		t.Fatalf("ParseSourceType = %q, %v", st, ok)
	}
	if _, ok := ParseSourceType("podcast"); ok {
		t.Fatalf("expected podcast to be rejected")
	}
}

func TestImportErrorMatchesKindAndCause(t *testing.T) {
	cause := fmt.Errorf("fetch: %w", ErrFetchExhausted)
	err := fmt.Errorf("process: %w", NewImportError(ErrExtractionFailed, "Kon de pagina niet lezen", cause))

	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected kind to match")
	}
	if !errors.Is(err, ErrFetchExhausted) {
		t.Fatalf("expected cause to match")
	}
	ie, ok := AsImportError(err)
	if !ok {
		t.Fatalf("expected ImportError in chain")
	}
	if ie.Error() != "Kon de pagina niet lezen" {
		t.Fatalf("Error() = %q", ie.Error())
	}
}

func TestResultUnpack(t *testing.T) {
	data, err := Ok("transcript").Unpack()
	if err != nil || data != "transcript" {
		t.Fatalf("Unpack ok = %q, %v", data, err)
	}
	_, err = Fail[string]("boom").Unpack()
	if err == nil || err.Error() != "boom" {
		t.Fatalf("Unpack fail err = %v", err)
	}
	if r := FailErr[int](nil); r.Success || r.Error == "" {
		t.Fatalf("FailErr(nil) = %#v", r)
	}
}
