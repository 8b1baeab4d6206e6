package domain

import "strings"

// IntegrationStatus is the ephemeral state of a provider, recomputed on every request.
type IntegrationStatus string

const (
	IntegrationUnconfigured IntegrationStatus = "unconfigured"
	IntegrationConfigured   IntegrationStatus = "configured"
	IntegrationReachable    IntegrationStatus = "reachable"
	IntegrationUnreachable  IntegrationStatus = "unreachable"
)

func (s IntegrationStatus) String() string { return string(s) }

func (s IntegrationStatus) IsValid() bool {
	switch s {
	case IntegrationUnconfigured, IntegrationConfigured, IntegrationReachable, IntegrationUnreachable:
		return true
	}
	return false
}

// KeyPresence reports whether a configuration key is set. It never carries the value.
type KeyPresence struct {
	Key     string
	Present bool
}

// IntegrationDescriptor identifies a provider and which of its required keys are present.
type IntegrationDescriptor struct {
	Name         string
	RequiredKeys []KeyPresence
	OptionalKeys []KeyPresence
}

// Configured reports whether every required key is present.
func (d IntegrationDescriptor) Configured() bool {
	for _, k := range d.RequiredKeys {
		if !k.Present {
			return false
		}
	}
	return true
}

// MissingKeys returns the required keys that are absent, in declaration order.
func (d IntegrationDescriptor) MissingKeys() []string {
	missing := make([]string, 0)
	for _, k := range d.RequiredKeys {
		if !k.Present {
			missing = append(missing, k.Key)
		}
	}
	return missing
}

// NewKeyPresence builds a KeyPresence from a raw configuration value.
func NewKeyPresence(key string, value string) KeyPresence {
	return KeyPresence{Key: key, Present: strings.TrimSpace(value) != ""}
}
