package config

import "os"

// Environment variables recognized by parseEnv.
const (
	EnvClientId     = "GIFTCAL_CLIENT_ID"
	EnvClientSecret = "GIFTCAL_CLIENT_SECRET"
	EnvApiKey       = "GIFTCAL_API_KEY"
	EnvDocstoreDSN  = "GIFTCAL_DOCSTORE_DSN"
	EnvDatabasePath = "GIFTCAL_DATABASE_PATH"
)

// parseEnv overlays values from the environment. It runs after flags, so
// environment credentials shadow anything entered on the command line or
// stored in a JSON file. When both GIFTCAL_CLIENT_ID and GIFTCAL_API_KEY are
// present, CredentialsForced is set and manual credential entry is disabled.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvClientId); ok && v != "" {
		cfg.ClientId = v
	}
	if v, ok := os.LookupEnv(EnvClientSecret); ok && v != "" {
		cfg.ClientSecret = v
	}
	if v, ok := os.LookupEnv(EnvApiKey); ok && v != "" {
		cfg.ApiKey = v
	}
	if v, ok := os.LookupEnv(EnvDocstoreDSN); ok && v != "" {
		cfg.DocstoreDSN = v
	}
	if v, ok := os.LookupEnv(EnvDatabasePath); ok && v != "" {
		cfg.DatabasePath = v
	}

	cfg.CredentialsForced = os.Getenv(EnvClientId) != "" && os.Getenv(EnvApiKey) != ""
}
