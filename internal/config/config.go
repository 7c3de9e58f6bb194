// Package config loads suipkg settings from an optional file, SUIPKG_* environment
// variables and command line overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/scallop-io/sui-package-kit/internal/messages"
	"github.com/scallop-io/sui-package-kit/internal/sui"
)

// EnvPrefix prefixes every environment override, e.g. SUIPKG_LOG_LEVEL.
const EnvPrefix = "SUIPKG"

// ErrInvalidConfig wraps validation failures, as opposed to file or decode errors.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all suipkg settings.
type Config struct {
	Network   string `mapstructure:"network"`
	SuiBin    string `mapstructure:"sui_bin"`
	RPCURL    string `mapstructure:"rpc_url"`
	Keystore  string `mapstructure:"keystore"`
	Address   string `mapstructure:"address"`
	SecretKey string `mapstructure:"secret_key"`
	GasBudget uint64 `mapstructure:"gas_budget"`
	// Lock serializes runs against the same package directory across processes.
	Lock        bool            `mapstructure:"lock"`
	LockTimeout time.Duration   `mapstructure:"lock_timeout"`
	Log         LogConfig       `mapstructure:"log"`
	Artifacts   ArtifactsConfig `mapstructure:"artifacts"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ArtifactsConfig controls where publish results are stored besides the package directory.
type ArtifactsConfig struct {
	S3 S3Config `mapstructure:"s3"`
}

// S3Config configures the optional upload of publish results to an S3-compatible bucket.
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network", "testnet")
	v.SetDefault("sui_bin", "sui")
	v.SetDefault("rpc_url", "")
	v.SetDefault("keystore", sui.DefaultKeystorePath)
	v.SetDefault("address", "")
	v.SetDefault("secret_key", "")
	v.SetDefault("gas_budget", sui.DefaultGasBudget)
	v.SetDefault("lock", false)
	v.SetDefault("lock_timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("artifacts.s3.enabled", false)
	v.SetDefault("artifacts.s3.endpoint", "")
	v.SetDefault("artifacts.s3.bucket", "")
	v.SetDefault("artifacts.s3.prefix", "")
	v.SetDefault("artifacts.s3.region", "")
	v.SetDefault("artifacts.s3.access_key", "")
	v.SetDefault("artifacts.s3.secret_key", "")
	v.SetDefault("artifacts.s3.use_ssl", true)
}

// Load reads path (when not empty), applies environment variables and then overrides,
// which take precedence over everything else. The keystore path is home-expanded.
func Load(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf(messages.ConfigReadFmt, path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf(messages.ConfigDecodeFmt, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Keystore != "" {
		expanded, err := homedir.Expand(cfg.Keystore)
		if err != nil {
			return nil, fmt.Errorf(messages.ConfigKeystoreExpandFmt, cfg.Keystore, err)
		}
		cfg.Keystore = expanded
	}
	return &cfg, nil
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(msg string) error {
		return fmt.Errorf(messages.ConfigInvalidFmt, ErrInvalidConfig, msg)
	}
	if strings.TrimSpace(c.Network) == "" {
		return invalid(messages.ConfigNetworkRequired)
	}
	if strings.TrimSpace(c.SuiBin) == "" {
		return invalid(messages.ConfigSuiBinRequired)
	}
	if c.GasBudget == 0 {
		return invalid(messages.ConfigGasBudgetRequired)
	}
	if c.LockTimeout < 0 {
		return invalid(messages.ConfigLockTimeoutNegative)
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return invalid(fmt.Sprintf(messages.ConfigUnknownLogLevelFmt, c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return invalid(fmt.Sprintf(messages.ConfigUnknownLogFormatFmt, c.Log.Format))
	}
	if c.Artifacts.S3.Enabled {
		if strings.TrimSpace(c.Artifacts.S3.Endpoint) == "" {
			return invalid(messages.ConfigS3EndpointRequired)
		}
		if strings.TrimSpace(c.Artifacts.S3.Bucket) == "" {
			return invalid(messages.ConfigS3BucketRequired)
		}
	}
	return nil
}
