package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/relc/internal/orm/dialect"
)

// FileName is the base name of the configuration file, without extension
const FileName = "relc"

// EnvPrefix prefixes every environment override, e.g. RELC_DIALECT
const EnvPrefix = "RELC"

// Config represents the relc configuration
type Config struct {
	Model      string           `mapstructure:"model" yaml:"model"`
	Dialect    string           `mapstructure:"dialect" yaml:"dialect"`
	SortLists  bool             `mapstructure:"sort_lists" yaml:"sort_lists"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
	Datasource DatasourceConfig `mapstructure:"datasource" yaml:"datasource"`
}

// OutputConfig names the files generate writes. Empty paths are skipped.
type OutputConfig struct {
	Prisma string `mapstructure:"prisma" yaml:"prisma"`
	SQL    string `mapstructure:"sql" yaml:"sql"`
	JSON   string `mapstructure:"json" yaml:"json"`
}

// DatasourceConfig configures the datasource block of the Prisma schema
type DatasourceConfig struct {
	URLEnv       string `mapstructure:"url_env" yaml:"url_env"`
	ShadowURLEnv string `mapstructure:"shadow_url_env" yaml:"shadow_url_env"`
}

// Load loads the configuration. An empty path looks for relc.yaml or
// relc.yml in the working directory and falls back to defaults when neither
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment is set
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults always decode
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", "relc.model.yaml")
	v.SetDefault("dialect", dialect.Default.String())
	v.SetDefault("sort_lists", false)
	v.SetDefault("output.prisma", "schema.prisma")
	v.SetDefault("output.sql", "")
	v.SetDefault("output.json", "")
	v.SetDefault("datasource.url_env", "DATABASE_URL")
	v.SetDefault("datasource.shadow_url_env", "")
}

// Write validates cfg and writes it to path as YAML
func Write(path string, cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ParsedDialect returns the configured dialect
func (c *Config) ParsedDialect() dialect.Dialect {
	d, err := dialect.Parse(c.Dialect)
	if err != nil {
		// validateConfig has already rejected unknown dialects
		return dialect.Default
	}
	return d
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Model) == "" {
		return fmt.Errorf("model must not be empty")
	}
	if _, err := dialect.Parse(cfg.Dialect); err != nil {
		return fmt.Errorf("dialect: %w", err)
	}
	if cfg.Datasource.URLEnv == "" {
		return fmt.Errorf("datasource.url_env must not be empty")
	}
	return nil
}
