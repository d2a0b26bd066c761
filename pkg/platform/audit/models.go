package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can apply different retention.
type EventCategory string

const (
	// CategorySecurity covers events that change who can bypass MFA.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine factor checks.
	CategoryOperations EventCategory = "operations"
)

// Action names the audited operation.
type Action string

const (
	ActionFactorChecked        Action = "factor_checked"
	ActionFactorRecordCreated  Action = "factor_record_created"
	ActionFactorSettingsUpdate Action = "factor_settings_updated"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	UserID    string        `json:"user_id,omitempty"`
	Factor    string        `json:"factor"`
	Action    Action        `json:"action"`
	Decision  string        `json:"decision,omitempty"`
	// Reason carries non-PII detail, e.g. the matched domain rule.
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	// ActorID is the administrator behind a settings change.
	ActorID string `json:"actor_id,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher accepts events from services. Implementations must not block the
// caller on a slow sink.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}
