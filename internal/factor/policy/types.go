package policy

// FactorName identifies this factor in stored records and metrics.
const FactorName = "domain"

// DefaultWeight is used when no usable weight is configured.
const DefaultWeight = 100

// State is the outcome of an evaluation. There is no error state.
type State string

const (
	StatePass    State = "pass"
	StateNeutral State = "neutral"
)

// Config is the administrator-controlled policy. AllowedDomains holds one
// entry per configured line; Evaluate normalizes it again, so callers may
// pass raw lines.
type Config struct {
	Enabled        bool
	Weight         int
	AllowedDomains []string
}

// Input is the per-check subject.
type Input struct {
	Email string
}

// Result is what the host's aggregate scoring consumes.
type Result struct {
	State  State
	Points int
	// MatchedDomain is the configured entry that matched, empty when neutral.
	MatchedDomain string
}

// Capabilities lists host lifecycle features this factor does not take part in.
type Capabilities struct {
	RequiresInput      bool
	RequiresSetup      bool
	SupportsRevocation bool
	ShowSetupButtons   bool
	StoresUserData     bool
}

// Descriptor is the static metadata the host displays.
type Descriptor struct {
	Name           string
	DisplayName    string
	Info           string
	Summary        string
	PossibleStates []State
	Capabilities   Capabilities
}
