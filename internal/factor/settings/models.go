package settings

import (
	"strconv"
	"strings"

	"domainfactor/internal/factor/policy"
	dErrors "domainfactor/pkg/domain-errors"
)

// Raw holds the factor settings exactly as an administrator stored them:
// a checkbox value, a weight text field, and a newline-delimited domain list.
type Raw struct {
	Enabled        string
	Weight         string
	AllowedDomains string
}

// ToConfig parses raw settings into a policy configuration. It never fails:
// unusable values fall back to their defaults.
func (r Raw) ToConfig() policy.Config {
	return policy.Config{
		Enabled:        policy.ParseEnabled(r.Enabled),
		Weight:         policy.ParseWeight(r.Weight),
		AllowedDomains: policy.ParseDomains(r.AllowedDomains),
	}
}

// Validate checks values submitted by an administrator and normalizes the
// checkbox to "1"/"0". Stored settings are never validated on read.
func (r *Raw) Validate() error {
	r.Enabled = strings.TrimSpace(r.Enabled)
	if policy.ParseEnabled(r.Enabled) {
		r.Enabled = "1"
	} else {
		r.Enabled = "0"
	}

	r.Weight = strings.TrimSpace(r.Weight)
	if r.Weight != "" {
		weight, err := strconv.Atoi(r.Weight)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "weight must be an integer")
		}
		if weight < 0 {
			return dErrors.New(dErrors.CodeValidation, "weight must not be negative")
		}
	}

	for _, domain := range policy.ParseDomains(r.AllowedDomains) {
		if strings.ContainsAny(domain, "@ \t") {
			return dErrors.New(dErrors.CodeValidation, "allowed domains must not contain '@' or whitespace: "+domain)
		}
	}
	return nil
}
