package config

// AuthConfig holds the Casdoor application used to identify signed-in users.
// When disabled, saved calculations are keyed by the X-Guest-ID header only.
type AuthConfig struct {
	Enabled          bool
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}
