package config

import (
	"encoding/json"
	"os"

	"github.com/avasilkov/giftcal/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, non-empty fields are copied into
// the runtime Config struct.
type JsonConfig struct {
	DatabasePath   string `json:"database_path"`
	RemoteFileName string `json:"remote_file_name"`
	BlobHost       string `json:"blob_host"`
	ClientId       string `json:"client_id"`
	ClientSecret   string `json:"client_secret"`
	ApiKey         string `json:"api_key"`
	DocstoreDSN    string `json:"docstore_dsn"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics. Fields absent from the file
// keep their current values.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overlay(&config.DatabasePath, c.DatabasePath)
	overlay(&config.RemoteFileName, c.RemoteFileName)
	overlay(&config.BlobHost, c.BlobHost)
	overlay(&config.ClientId, c.ClientId)
	overlay(&config.ClientSecret, c.ClientSecret)
	overlay(&config.ApiKey, c.ApiKey)
	overlay(&config.DocstoreDSN, c.DocstoreDSN)
	overlay(&config.S3AccessKey, c.S3AccessKey)
	overlay(&config.S3SecretKey, c.S3SecretKey)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
