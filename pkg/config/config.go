package config

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/consts"
	"gopkg.in/yaml.v3"
)

const (
	// DuplicatesError fails discovery when two migrations share an ID.
	DuplicatesError = "error"

	// DuplicatesKeepFirst keeps the first migration seen for an ID and skips
	// the rest.
	DuplicatesKeepFirst = "keep-first"
)

type (
	// S3 holds settings for reading migrations from Amazon S3 or an
	// S3-compatible service.
	//
	// Both credential fields are optional. When either is empty the default AWS
	// credential chain (environment, shared config, instance role) is used.
	S3 struct {
		// Region is the AWS region of the bucket(s)
		Region string `yaml:"region,omitempty"`

		// Endpoint overrides the S3 endpoint, e.g. for MinIO or LocalStack.
		// Path-style addressing is enabled when set.
		Endpoint string `yaml:"endpoint,omitempty"`

		AccessKeyID     string `yaml:"access_key_id,omitempty"`
		SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	}

	// Azure holds settings for reading migrations from Azure Blob Storage.
	Azure struct {
		// Account is the storage account name
		Account string `yaml:"account,omitempty"`

		// Key is the shared key for Account. When empty the client is created
		// without credentials, which works for public containers and SAS URLs.
		Key string `yaml:"key,omitempty"`

		// Endpoint overrides the service URL. Defaults to
		// https://<account>.blob.core.windows.net/
		Endpoint string `yaml:"endpoint,omitempty"`
	}

	// Config represents the cirrus configuration file.
	Config struct {
		// Locations lists the directories migrations are discovered from, in
		// order. Supported forms are s3://bucket/prefix, azblob://container/prefix,
		// file:///path and plain filesystem paths.
		Locations []string `yaml:"locations"`

		// Concurrency bounds how many migrations are loaded in parallel
		Concurrency int `yaml:"concurrency,omitempty"`

		// StrictPairing rejects migrations whose forward and rollback files
		// contain a different number of statements
		StrictPairing bool `yaml:"strict_pairing,omitempty"`

		// Duplicates decides what happens when two migrations share an ID.
		// One of "error" (default) or "keep-first".
		Duplicates string `yaml:"duplicates,omitempty"`

		S3    S3    `yaml:"s3"`
		Azure Azure `yaml:"azure"`
	}
)

// LoadConfig parses a configuration from the provided io.Reader.
//
// The function expects YAML-formatted configuration data. Missing values are
// filled with defaults: a concurrency of consts.DefaultConcurrency and the
// "error" duplicates policy.
//
// Example:
//
//	yamlData := `
//	locations:
//	  - s3://my-bucket/migrations
//	  - ./migrations
//	s3:
//	  region: us-east-1
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Printf("Locations: %v\n", cfg.Locations)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = consts.DefaultConcurrency
	}

	cfg.Duplicates = strings.ToLower(strings.TrimSpace(cfg.Duplicates))
	if cfg.Duplicates == "" {
		cfg.Duplicates = DuplicatesError
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigFile loads a configuration from the specified file path.
// This is a convenience function that opens the file and calls LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Default returns a configuration with every default applied and no locations.
func Default() *Config {
	return &Config{
		Concurrency: consts.DefaultConcurrency,
		Duplicates:  DuplicatesError,
	}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Duplicates {
	case DuplicatesError, DuplicatesKeepFirst:
	default:
		return errors.Errorf("invalid duplicates policy %q: must be %q or %q",
			c.Duplicates, DuplicatesError, DuplicatesKeepFirst)
	}

	for _, loc := range c.Locations {
		if strings.TrimSpace(loc) == "" {
			return errors.New("locations must not contain empty entries")
		}
	}

	return nil
}
