// Package policy decides whether a user's email domain lets them bypass MFA.
//
// Everything here is pure: no I/O, no shared state. Every case the policy
// cannot decide (disabled, nothing configured, empty or malformed email)
// resolves to StateNeutral; only an affirmative domain match yields StatePass.
package policy

import (
	"fmt"
	"strconv"
	"strings"

	"domainfactor/internal/factor/lang"
	"domainfactor/pkg/email"
	pstrings "domainfactor/pkg/platform/strings"
)

// Evaluate applies the policy to a single input.
// Rule order (fail-fast to neutral):
//  1. Policy disabled
//  2. No domains configured after normalization
//  3. Empty email
//  4. Email without exactly one '@'
//  5. First configured domain equal to the email domain, ignoring ASCII case
func Evaluate(cfg Config, in Input) Result {
	neutral := Result{State: StateNeutral}

	if !cfg.Enabled {
		return neutral
	}

	domains := NormalizeDomains(cfg.AllowedDomains)
	if len(domains) == 0 {
		return neutral
	}

	if in.Email == "" {
		return neutral
	}

	_, userDomain, ok := email.SplitAddress(in.Email)
	if !ok {
		return neutral
	}
	userDomain = pstrings.ToLowerASCII(userDomain)

	for _, domain := range domains {
		if userDomain == pstrings.ToLowerASCII(domain) {
			result := Result{State: StatePass, MatchedDomain: domain}
			result.Points = Points(cfg, result)
			return result
		}
	}

	return neutral
}

// Points returns the weight contributed by r: cfg.Weight on pass, else 0.
func Points(cfg Config, r Result) int {
	if r.State != StatePass {
		return 0
	}
	if cfg.Weight < 0 {
		return 0
	}
	return cfg.Weight
}

// NormalizeDomains trims each entry and drops blank ones, keeping order.
func NormalizeDomains(domains []string) []string {
	return pstrings.TrimNonEmpty(domains)
}

// ParseDomains splits newline-delimited configuration text into normalized entries.
func ParseDomains(raw string) []string {
	return NormalizeDomains(pstrings.SplitLines(raw))
}

// ParseWeight reads a stored weight. Unset and non-numeric values fall back
// to DefaultWeight; negative values clamp to 0. An explicit 0 stays 0.
func ParseWeight(raw string) int {
	weight, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultWeight
	}
	if weight < 0 {
		return 0
	}
	return weight
}

// ParseEnabled reads a stored checkbox value.
func ParseEnabled(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// DescribeCondition summarizes the policy for display.
func DescribeCondition(cfg Config) string {
	return fmt.Sprintf("%s (Weight: %d, Domains: %d)",
		lang.SummaryCondition, cfg.Weight, len(NormalizeDomains(cfg.AllowedDomains)))
}

// Describe returns the static factor metadata.
func Describe() Descriptor {
	return Descriptor{
		Name:           FactorName,
		DisplayName:    lang.PluginName,
		Info:           lang.Info,
		Summary:        lang.SummaryCondition,
		PossibleStates: []State{StatePass, StateNeutral},
		Capabilities:   Capabilities{},
	}
}
