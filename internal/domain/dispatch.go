package domain

import (
	"fmt"
	"strings"
)

// MaxNewsletterSubject bounds the subject line length in characters.
const MaxNewsletterSubject = 200

// DispatchMessage is one newsletter to be sent to a filtered recipient set.
type DispatchMessage struct {
	Subject string
	Content string
	Tags    []string
}

func (m *DispatchMessage) Validate() error {
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if n := len([]rune(m.Subject)); n > MaxNewsletterSubject {
		return fmt.Errorf("%w: subject exceeds %d characters (got %d)", ErrValidation, MaxNewsletterSubject, n)
	}
	return nil
}

// RecipientError is one failed send, keyed by recipient address.
type RecipientError struct {
	Recipient string
	Reason    string
}

// DispatchResult is the accounting of one bulk send invocation.
type DispatchResult struct {
	SuccessCount int
	FailureCount int
	// SkippedCount counts recipients never attempted because the caller went away.
	SkippedCount int
	Failures     []RecipientError
	Canceled     bool
}

func (r *DispatchResult) Total() int {
	if r == nil {
		return 0
	}
	return r.SuccessCount + r.FailureCount + r.SkippedCount
}

// Errors returns the per-recipient failures as a recipient→reason map.
func (r *DispatchResult) Errors() map[string]string {
	out := make(map[string]string)
	if r == nil {
		return out
	}
	for _, f := range r.Failures {
		out[f.Recipient] = f.Reason
	}
	return out
}

// Summary renders a short human message derived from the counts.
func (r *DispatchResult) Summary() string {
	if r == nil || r.Total() == 0 {
		return "No subscribers matched; nothing was sent"
	}

	noun := "subscribers"
	if r.SuccessCount == 1 {
		noun = "subscriber"
	}
	msg := fmt.Sprintf("Newsletter sent to %d %s", r.SuccessCount, noun)
	if r.FailureCount > 0 {
		msg = fmt.Sprintf("%s, %d failed", msg, r.FailureCount)
	}
	if r.SkippedCount > 0 {
		msg = fmt.Sprintf("%s, %d not attempted", msg, r.SkippedCount)
	}
	return msg
}
