package handler

import (
	"strings"

	"domainfactor/internal/factor/service"
	"domainfactor/internal/factor/settings"
	dErrors "domainfactor/pkg/domain-errors"
)

const (
	maxUserIDLength = 64
	maxEmailLength  = 254
	maxIPLength     = 45
)

// CheckRequest is the HTTP request body for POST /factors/domain/check.
// Email may be empty or malformed; the factor answers neutral for those.
type CheckRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	LastIP string `json:"last_ip,omitempty"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.UserID) > maxUserIDLength || len(r.Email) > maxEmailLength || len(r.LastIP) > maxIPLength {
		return dErrors.New(dErrors.CodeValidation, "request field too long")
	}
	r.UserID = strings.TrimSpace(r.UserID)
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	r.LastIP = strings.TrimSpace(r.LastIP)
	return nil
}

// Subject converts the request into a service subject.
func (r *CheckRequest) Subject() service.Subject {
	return service.Subject{UserID: r.UserID, Email: r.Email, LastIP: r.LastIP}
}

// RecordsRequest is the HTTP request body for POST /factors/domain/records.
type RecordsRequest struct {
	UserID string `json:"user_id"`
	LastIP string `json:"last_ip,omitempty"`
}

// Validate validates and normalizes the request.
func (r *RecordsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.UserID) > maxUserIDLength || len(r.LastIP) > maxIPLength {
		return dErrors.New(dErrors.CodeValidation, "request field too long")
	}
	r.UserID = strings.TrimSpace(r.UserID)
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	r.LastIP = strings.TrimSpace(r.LastIP)
	return nil
}

// SettingsRequest is the HTTP request body for PUT /admin/factors/domain/settings.
type SettingsRequest struct {
	Enabled        bool   `json:"enabled"`
	Weight         *int   `json:"weight,omitempty"`
	AllowedDomains string `json:"allowed_domains"`
}

// Validate checks request-level constraints; value rules live in settings.Raw.
func (r *SettingsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Weight != nil && *r.Weight < 0 {
		return dErrors.New(dErrors.CodeValidation, "weight must not be negative")
	}
	return nil
}

// Raw converts the request into stored settings form.
func (r *SettingsRequest) Raw() settings.Raw {
	raw := settings.Raw{AllowedDomains: r.AllowedDomains, Enabled: "0"}
	if r.Enabled {
		raw.Enabled = "1"
	}
	if r.Weight != nil {
		raw.Weight = itoa(*r.Weight)
	}
	return raw
}
