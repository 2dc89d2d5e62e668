package config_test

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/pseudomuto/cirrus/pkg/config"
	"github.com/pseudomuto/cirrus/pkg/consts"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/cirrus.yaml
var testConfigYAML string

func TestLoadConfig(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader(testConfigYAML))
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("error", func(t *testing.T) {
		// Invalid YAML
		config, err := LoadConfig(strings.NewReader("invalid: yaml: ["))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to unmarshal config")

		// Empty input
		config, err = LoadConfig(strings.NewReader(""))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to unmarshal config")

		// Unknown duplicates policy
		config, err = LoadConfig(strings.NewReader("duplicates: overwrite"))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "invalid duplicates policy")

		// Blank location
		config, err = LoadConfig(strings.NewReader("locations: ['']"))
		require.Error(t, err)
		require.Nil(t, config)
	})

	t.Run("defaults", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader("locations: [./migrations]"))
		require.NoError(t, err)
		require.Equal(t, []string{"./migrations"}, config.Locations)
		require.Equal(t, consts.DefaultConcurrency, config.Concurrency)
		require.Equal(t, DuplicatesError, config.Duplicates)
		require.False(t, config.StrictPairing)
		require.Empty(t, config.S3.AccessKeyID)
		require.Empty(t, config.S3.SecretAccessKey)
	})

	t.Run("normalizes duplicates policy", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader("duplicates: ' Keep-First '"))
		require.NoError(t, err)
		require.Equal(t, DuplicatesKeepFirst, config.Duplicates)
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), consts.DefaultConfigFile)
		require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), consts.ModeFile))

		config, err := LoadConfigFile(path)
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("error", func(t *testing.T) {
		config, err := LoadConfigFile("nonexistent.yaml")
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to open file")
	})
}

func TestDefault(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())
	require.Empty(t, config.Locations)
	require.Equal(t, consts.DefaultConcurrency, config.Concurrency)
	require.Equal(t, DuplicatesError, config.Duplicates)
}

// validateTestConfig validates that a config contains the expected test data
func validateTestConfig(t *testing.T, config *Config) {
	t.Helper()
	require.NotNil(t, config)
	require.Equal(t, []string{
		"s3://acme-migrations/core/",
		"azblob://schemas/reporting",
		"./db/migrations",
	}, config.Locations)
	require.Equal(t, 8, config.Concurrency)
	require.True(t, config.StrictPairing)
	require.Equal(t, DuplicatesKeepFirst, config.Duplicates)
	require.Equal(t, "eu-west-1", config.S3.Region)
	require.Equal(t, "http://localhost:9000", config.S3.Endpoint)
	require.Equal(t, "minio", config.S3.AccessKeyID)
	require.Equal(t, "minio123", config.S3.SecretAccessKey)
	require.Equal(t, "acme", config.Azure.Account)
	require.Equal(t, "c2VjcmV0", config.Azure.Key)
}
