package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: OUTPOST_SAVE_PROFILE sets
// save.profile
const EnvPrefix = "OUTPOST"

// Config is everything the CLI and the daemon read at start-up
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Daemon    DaemonConfig    `mapstructure:"daemon"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	World     WorldConfig     `mapstructure:"world"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Crafting  CraftingConfig  `mapstructure:"crafting"`
	Save      SaveConfig      `mapstructure:"save"`
}

// LoadConfig layers OUTPOST_* environment variables over the config file
// over built-in defaults, then validates the result. configPath may be
// empty, in which case config.yaml is searched for and may be absent.
func LoadConfig(configPath string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about, and with no
	// config file it knows none
	for _, key := range settingKeys(reflect.TypeOf(Config{}), "") {
		_ = v.BindEnv(key)
	}

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	// The conventional unprefixed variable, as set by most postgres hosts
	if url := os.Getenv("DATABASE_URL"); url != "" {
		v.Set("database.url", url)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range []string{".", "./configs", "$HOME/.outpost", "/etc/outpost"} {
			v.AddConfigPath(dir)
		}
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// LoadConfigOrDefault never fails; a broken config yields the defaults.
// Used by read-only CLI commands such as `outpost config show`.
func LoadConfigOrDefault(configPath string) *Config {
	if cfg, err := LoadConfig(configPath); err == nil {
		return cfg
	}
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}

// settingKeys lists every dotted key of a config struct, e.g.
// "discovery.shutdown_policy"
func settingKeys(t reflect.Type, parent string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get("mapstructure")
		if name == "" || name == "-" {
			continue
		}
		if parent != "" {
			name = parent + "." + name
		}
		if f.Type.Kind() == reflect.Struct && f.Type.PkgPath() == t.PkgPath() {
			keys = append(keys, settingKeys(f.Type, name)...)
			continue
		}
		keys = append(keys, name)
	}
	return keys
}
