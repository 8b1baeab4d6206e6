package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/kursadbilgin/folio-engine/internal/domain"
)

// DispatchEvent announces that a newsletter run finished. It carries counts
// only; recipient addresses never leave the API process.
type DispatchEvent struct {
	EventID      string    `json:"eventId"`
	RequestID    string    `json:"requestId,omitempty"`
	Subject      string    `json:"subject"`
	Tags         []string  `json:"tags"`
	SuccessCount int       `json:"successCount"`
	FailureCount int       `json:"failureCount"`
	SkippedCount int       `json:"skippedCount"`
	Canceled     bool      `json:"canceled"`
	DispatchedAt time.Time `json:"dispatchedAt"`
}

// NewDispatchEvent summarizes result for msg.
func NewDispatchEvent(eventID string, msg domain.DispatchMessage, result *domain.DispatchResult, at time.Time) DispatchEvent {
	event := DispatchEvent{
		EventID:      eventID,
		Subject:      msg.Subject,
		Tags:         domain.NormalizeTags(msg.Tags),
		DispatchedAt: at.UTC(),
	}
	if result != nil {
		event.SuccessCount = result.SuccessCount
		event.FailureCount = result.FailureCount
		event.SkippedCount = result.SkippedCount
		event.Canceled = result.Canceled
	}
	return event
}

func (e DispatchEvent) Validate() error {
	if strings.TrimSpace(e.EventID) == "" {
		return fmt.Errorf("eventId is required")
	}
	if strings.TrimSpace(e.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if e.SuccessCount < 0 || e.FailureCount < 0 || e.SkippedCount < 0 {
		return fmt.Errorf("counts must not be negative")
	}
	if e.DispatchedAt.IsZero() {
		return fmt.Errorf("dispatchedAt is required")
	}
	return nil
}
