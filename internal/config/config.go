package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. COURTSIDE_CACHE_TTL.
const EnvPrefix = "COURTSIDE"

// Config is the top-level courtside configuration.
type Config struct {
	DataDir    string   `mapstructure:"data_dir"`
	DBName     string   `mapstructure:"db_name"`
	Season     string   `mapstructure:"season"`
	SeasonType string   `mapstructure:"season_type"`
	Cache      Cache    `mapstructure:"cache"`
	StatsAPI   StatsAPI `mapstructure:"stats_api"`
	Log        Log      `mapstructure:"log"`
	Output     Output   `mapstructure:"output"`
	Serve      Serve    `mapstructure:"serve"`
}

// Cache controls the SQLite feed cache.
type Cache struct {
	TTL          time.Duration `mapstructure:"ttl"`
	StaleOnError bool          `mapstructure:"stale_on_error"`
	Keep         int           `mapstructure:"keep"`
}

// StatsAPI configures the stats.nba.com client.
type StatsAPI struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
}

// Log defines logging preferences.
type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// Serve configures the HTTP API and its scheduled cache refresh.
type Serve struct {
	Addr            string   `mapstructure:"addr"`
	RefreshSchedule string   `mapstructure:"refresh_schedule"`
	Seasons         []string `mapstructure:"seasons"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. A .env file in the working
// directory is loaded first so its values act as environment overrides.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults.
	v.SetDefault("data_dir", DefaultConfigDir)
	v.SetDefault("db_name", DefaultDBName)
	v.SetDefault("season", "")
	v.SetDefault("season_type", DefaultSeasonType)
	v.SetDefault("cache.ttl", DefaultCache.TTL)
	v.SetDefault("cache.stale_on_error", DefaultCache.StaleOnError)
	v.SetDefault("cache.keep", DefaultCache.Keep)
	v.SetDefault("stats_api.base_url", DefaultStatsAPI.BaseURL)
	v.SetDefault("stats_api.timeout", DefaultStatsAPI.Timeout)
	v.SetDefault("stats_api.request_delay", DefaultStatsAPI.RequestDelay)
	v.SetDefault("log.level", DefaultLog.Level)
	v.SetDefault("log.pretty", DefaultLog.Pretty)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("serve.addr", DefaultServe.Addr)
	v.SetDefault("serve.refresh_schedule", DefaultServe.RefreshSchedule)
	v.SetDefault("serve.seasons", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.DataDir = expandPath(cfg.DataDir)
	if cfg.SeasonType == "" {
		cfg.SeasonType = DefaultSeasonType
	}

	return &cfg, nil
}

// DBPath returns the full path to the SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBName)
}

// ConfigDir returns the expanded default configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
