// Package config handles configuration for the giftcal client,
// including defaults, JSON overlay, command-line flags, and environment
// variables.
package config

// Config holds runtime settings for the giftcal client.
//
// Fields:
//   - DatabasePath: path to the local SQLite database file.
//   - RemoteFileName: name of the snapshot blob on the remote backend.
//   - BlobHost: which file backend to use, "drive" or "s3".
//   - ClientId / ClientSecret / ApiKey: OAuth client and API key for the
//     drive backend. CredentialsForced is set when ClientId and ApiKey came
//     from the environment and must shadow any manually entered values.
//   - DocstoreDSN: PostgreSQL DSN for the document-store backend. When set,
//     the client runs against the document store and skips snapshot sync
//     entirely.
//   - S3AccessKey / S3SecretKey / S3Bucket / S3Region / S3BaseEndpoint:
//     settings for the S3-compatible file backend.
type Config struct {
	DatabasePath      string
	RemoteFileName    string
	BlobHost          string
	ClientId          string
	ClientSecret      string
	ApiKey            string
	CredentialsForced bool
	DocstoreDSN       string
	S3AccessKey       string
	S3SecretKey       string
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: The S3 credentials are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "giftcal.db"
	c.RemoteFileName = "giftcal-data.json"
	c.BlobHost = "drive"
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Bucket = "giftcal"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, command-line flags, and finally the
// environment. Environment-supplied credentials win over every other source.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	parseEnv(cfg)
	return cfg
}
