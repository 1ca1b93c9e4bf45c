package domain

import (
	"strings"
	"time"
)

// SourceType enumerates the supported import modalities.
type SourceType string

const (
	SourceURL           SourceType = "url"
	SourceImage         SourceType = "image"
	SourceText          SourceType = "text"
	SourceVerticalVideo SourceType = "vertical_video"
	SourceDishcovery    SourceType = "dishcovery"
)

// SourceTypes lists every recognised source type in dispatch order.
var SourceTypes = []SourceType{SourceURL, SourceImage, SourceText, SourceVerticalVideo, SourceDishcovery}

// ParseSourceType resolves a raw value into a known SourceType.
func ParseSourceType(raw string) (SourceType, bool) {
	candidate := SourceType(strings.ToLower(strings.TrimSpace(raw)))
	for _, st := range SourceTypes {
		if st == candidate {
			return st, true
		}
	}
	return "", false
}

// JobStatus enumerates import job lifecycle states.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

var validTransitions = map[JobStatus][]JobStatus{
	JobStatusPending: {JobStatusCompleted, JobStatusFailed},
}

// CanTransition reports whether a job may move from one status to another.
// Terminal states have no outgoing transitions.
func CanTransition(from, to JobStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ImportJob is a user-initiated request to turn external content into a recipe.
type ImportJob struct {
	ID           string
	UserID       string
	SourceType   SourceType
	SourceData   string
	Status       JobStatus
	RecipeID     *string
	ErrorMessage *string
	CreatedAt    time.Time
	ClaimedAt    *time.Time
}

// DishcoveryPayload is the compound source_data of a dishcovery job.
type DishcoveryPayload struct {
	PhotoURL    string `json:"photoUrl"`
	Description string `json:"description,omitempty"`
	AudioURL    string `json:"audioUrl,omitempty"`
}
