package handler

import (
	"strconv"
	"time"

	"domainfactor/internal/factor/policy"
	"domainfactor/internal/factor/records"
	"domainfactor/internal/factor/service"
	"domainfactor/internal/factor/settings"
)

// CheckResponse is the HTTP response for POST /factors/domain/check.
type CheckResponse struct {
	State     string `json:"state"`
	Points    int    `json:"points"`
	Weight    int    `json:"weight"`
	Condition string `json:"condition"`
}

func FromCheckResult(result *service.CheckResult) *CheckResponse {
	return &CheckResponse{
		State:     string(result.State),
		Points:    result.Points,
		Weight:    result.Weight,
		Condition: result.Condition,
	}
}

// CapabilitiesResponse lists host lifecycle features the factor supports.
type CapabilitiesResponse struct {
	RequiresInput      bool `json:"requires_input"`
	RequiresSetup      bool `json:"requires_setup"`
	SupportsRevocation bool `json:"supports_revocation"`
	ShowSetupButtons   bool `json:"show_setup_buttons"`
	StoresUserData     bool `json:"stores_user_data"`
}

// DescriptionResponse is the HTTP response for GET /factors/domain.
type DescriptionResponse struct {
	Name           string               `json:"name"`
	DisplayName    string               `json:"display_name"`
	Info           string               `json:"info"`
	Summary        string               `json:"summary"`
	Condition      string               `json:"condition"`
	PossibleStates []string             `json:"possible_states"`
	Enabled        bool                 `json:"enabled"`
	Available      bool                 `json:"available"`
	Weight         int                  `json:"weight"`
	DomainCount    int                  `json:"domain_count"`
	Capabilities   CapabilitiesResponse `json:"capabilities"`
}

func FromDescription(d *service.Description) *DescriptionResponse {
	states := make([]string, 0, len(d.PossibleStates))
	for _, s := range d.PossibleStates {
		states = append(states, string(s))
	}
	return &DescriptionResponse{
		Name:           d.Name,
		DisplayName:    d.DisplayName,
		Info:           d.Info,
		Summary:        d.Summary,
		Condition:      d.Condition,
		PossibleStates: states,
		Enabled:        d.Enabled,
		Available:      d.Available,
		Weight:         d.Weight,
		DomainCount:    d.DomainCount,
		Capabilities:   fromCapabilities(d.Capabilities),
	}
}

func fromCapabilities(c policy.Capabilities) CapabilitiesResponse {
	return CapabilitiesResponse{
		RequiresInput:      c.RequiresInput,
		RequiresSetup:      c.RequiresSetup,
		SupportsRevocation: c.SupportsRevocation,
		ShowSetupButtons:   c.ShowSetupButtons,
		StoresUserData:     c.StoresUserData,
	}
}

// RecordResponse is one user factor record.
type RecordResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Factor        string    `json:"factor"`
	TimeCreated   time.Time `json:"time_created"`
	CreatedFromIP string    `json:"created_from_ip"`
	TimeModified  time.Time `json:"time_modified"`
	Revoked       bool      `json:"revoked"`
}

// RecordsResponse is the HTTP response for POST /factors/domain/records.
type RecordsResponse struct {
	Records []RecordResponse `json:"records"`
}

func FromRecords(in []*records.Record) *RecordsResponse {
	out := make([]RecordResponse, 0, len(in))
	for _, r := range in {
		out = append(out, RecordResponse{
			ID:            r.ID.String(),
			UserID:        r.UserID,
			Factor:        r.Factor,
			TimeCreated:   r.TimeCreated,
			CreatedFromIP: r.CreatedFromIP,
			TimeModified:  r.TimeModified,
			Revoked:       r.Revoked,
		})
	}
	return &RecordsResponse{Records: out}
}

// SettingsResponse is the HTTP response for the admin settings endpoints.
// Weight is the effective weight after defaults are applied.
type SettingsResponse struct {
	Enabled        bool     `json:"enabled"`
	Weight         int      `json:"weight"`
	AllowedDomains []string `json:"allowed_domains"`
	Condition      string   `json:"condition"`
}

func FromSettings(raw *settings.Raw) *SettingsResponse {
	cfg := raw.ToConfig()
	domains := cfg.AllowedDomains
	if domains == nil {
		domains = []string{}
	}
	return &SettingsResponse{
		Enabled:        cfg.Enabled,
		Weight:         cfg.Weight,
		AllowedDomains: domains,
		Condition:      policy.DescribeCondition(cfg),
	}
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
