package domain

import (
	"fmt"
	"time"
)

// TrainingStatus enumerates the lifecycle of a persona training run. The
// same vocabulary applies to both the visual and the voice pipeline.
type TrainingStatus string

const (
	TrainingStatusTraining TrainingStatus = "training"
	TrainingStatusReady    TrainingStatus = "ready"
)

// ParseTrainingStatus validates a caller-supplied status string. Only the
// exact enumeration values are accepted; anything else is rejected before
// it can reach persistence.
func ParseTrainingStatus(s string) (TrainingStatus, error) {
	switch TrainingStatus(s) {
	case TrainingStatusTraining, TrainingStatusReady:
		return TrainingStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Persona is a user's trained likeness record. The owning user id is fixed
// at creation time; updates may only touch the training statuses and the
// archive reference.
type Persona struct {
	ID              string
	UserID          string
	VisualStatus    TrainingStatus
	VoiceStatus     TrainingStatus
	TrainingArchive string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PersonaUpsert carries the fields a caller may set when creating or
// merging a persona record. Empty statuses mean "keep the stored value".
type PersonaUpsert struct {
	PersonaID       string
	UserID          string
	VisualStatus    TrainingStatus
	VoiceStatus     TrainingStatus
	TrainingArchive string
}
