package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/securedrive/internal/flagx"
	"github.com/dmitrijs2005/securedrive/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations use
// timex.Duration, so both "90s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddr            string          `json:"endpoint_addr"`
	MetadataBackend         string          `json:"metadata_backend"`
	DatabaseDSN             string          `json:"database_dsn"`
	BlobBackend             string          `json:"blob_backend"`
	BlobDir                 string          `json:"blob_dir"`
	SecretKey               string          `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	MaxUploadMiB            int64           `json:"max_upload_mib"`
	GCInterval              timex.Duration  `json:"gc_interval"`
	GCGrace                 *timex.Duration `json:"gc_grace"`
	S3RootUser              string          `json:"s3_root_user"`
	S3RootPassword          string          `json:"s3_root_password"`
	S3Bucket                string          `json:"s3_bucket"`
	S3Region                string          `json:"s3_region"`
	S3BaseEndpoint          string          `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c or -config.
// Absent keys leave the current values alone. An unreadable file or invalid
// JSON panics, like a bad flag does.
func parseJson(config *Config) {
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

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.MetadataBackend, c.MetadataBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.BlobDir, c.BlobDir)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	// zero is meaningful for these two, so only presence counts
	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.GCGrace != nil {
		config.GCGrace = c.GCGrace.Duration
	}
	if c.GCInterval.Duration != 0 {
		config.GCInterval = c.GCInterval.Duration
	}
	if c.MaxUploadMiB != 0 {
		config.MaxUploadMiB = c.MaxUploadMiB
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
