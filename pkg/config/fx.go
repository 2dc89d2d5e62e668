package config

import (
	"os"

	"github.com/pseudomuto/cirrus/pkg/consts"
	"go.uber.org/fx"
)

// EnvConfigFile names the environment variable that overrides the config path.
const EnvConfigFile = "CIRRUS_CONFIG"

var Module = fx.Module("config", fx.Provide(
	// Loads the configuration from $CIRRUS_CONFIG or cirrus.yaml. A missing file
	// yields the defaults so locations can be supplied entirely on the command line.
	func() (*Config, error) {
		path := os.Getenv(EnvConfigFile)
		if path == "" {
			path = consts.DefaultConfigFile
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			return Default(), nil
		}

		return LoadConfigFile(path)
	},
))
