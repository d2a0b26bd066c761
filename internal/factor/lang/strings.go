// Package lang holds the fixed display strings of the domain bypass factor.
package lang

const (
	PluginName       = "Domain bypass"
	Info             = "Domain bypass factor allows users from specified email domains to bypass multi-factor authentication."
	SummaryCondition = "User email domain is in allowed list"
	PrivacyMetadata  = "The Domain bypass factor plugin does not store any personal data."

	SettingsEnabled            = "Enable domain factor"
	SettingsEnabledHelp        = "Enable or disable the domain bypass factor. When enabled, users from configured domains can bypass MFA requirements."
	SettingsWeight             = "Factor weight"
	SettingsWeightHelp         = "The weight this factor contributes towards the total required for login (typically 100). Set to 100 for complete bypass, or lower values to combine with other factors."
	SettingsAllowedDomains     = "Allowed domains"
	SettingsAllowedDomainsHelp = "Enter one domain per line. Users with email addresses from these domains will be able to bypass MFA. Example: example.com, university.edu"

	ErrNoDomainsConfigured = "No domains have been configured for domain bypass."
	ErrInvalidDomain       = "Invalid domain format detected in configuration."
)
