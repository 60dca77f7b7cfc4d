package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr":             "www.example:9000",
		"metadata_backend":          "memory",
		"database_dsn":              "postgres://x",
		"blob_backend":              "fs",
		"blob_dir":                  "/srv/blobs",
		"secret_key":                "my_secret_key",
		"session_validity_duration": "0s",
		"max_upload_mib":            7,
		"gc_interval":               "30s",
		"gc_grace":                  60000000000,
		"s3_root_user":              "user",
		"s3_root_password":          "password",
		"s3_bucket":                 "bucket",
		"s3_region":                 "region",
		"s3_base_endpoint":          "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddr)
		assert.Equal(t, "memory", cfg.MetadataBackend)
		assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
		assert.Equal(t, "fs", cfg.BlobBackend)
		assert.Equal(t, "/srv/blobs", cfg.BlobDir)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, time.Duration(0), cfg.SessionValidityDuration, "explicit zero is kept")
		assert.Equal(t, int64(7), cfg.MaxUploadMiB)
		assert.Equal(t, 30*time.Second, cfg.GCInterval)
		assert.Equal(t, time.Minute, cfg.GCGrace)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
	})

	t.Run("absent keys keep current values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "only-this"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		var want Config
		want.LoadDefaults()
		want.SecretKey = "only-this"
		assert.Equal(t, want, *cfg)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddr: "defaults:1234", GCGrace: 2 * time.Minute}
		parseJson(cfg)

		assert.Equal(t, Config{EndpointAddr: "defaults:1234", GCGrace: 2 * time.Minute}, *cfg)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "absent.json")}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}
