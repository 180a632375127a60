// Package config provides configuration management for bbs using Viper.
package config

import (
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/trezero/bookmark-bar-switcher/internal/paths"
)

// EnvPrefix prefixes every environment override, e.g. BBS_STATE_BACKEND.
const EnvPrefix = "BBS"

// State backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version     int         `mapstructure:"version" yaml:"version"`
	HistorySize int         `mapstructure:"history_size" yaml:"history_size"`
	Tree        TreeConfig  `mapstructure:"tree" yaml:"tree"`
	State       StateConfig `mapstructure:"state" yaml:"state"`
	Drive       DriveConfig `mapstructure:"drive" yaml:"drive"`
	OAuth       OAuthConfig `mapstructure:"oauth" yaml:"oauth"`
}

// TreeConfig locates the bookmark tree and its well-known folders.
type TreeConfig struct {
	File           string `mapstructure:"file" yaml:"file"`
	PrimaryID      string `mapstructure:"primary_id" yaml:"primary_id"`
	OtherID        string `mapstructure:"other_id" yaml:"other_id"`
	ContainerTitle string `mapstructure:"container_title" yaml:"container_title"`
}

// StateConfig selects where keyed state records live.
type StateConfig struct {
	Backend string      `mapstructure:"backend" yaml:"backend"`
	Dir     string      `mapstructure:"dir" yaml:"dir"`
	Redis   RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig is used when State.Backend is "redis".
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// DriveConfig configures remote backups.
type DriveConfig struct {
	APIBase        string        `mapstructure:"api_base" yaml:"api_base"`
	UploadBase     string        `mapstructure:"upload_base" yaml:"upload_base"`
	Space          string        `mapstructure:"space" yaml:"space"`
	NamePrefix     string        `mapstructure:"name_prefix" yaml:"name_prefix"`
	MaxBackups     int           `mapstructure:"max_backups" yaml:"max_backups"`
	UploadCooldown time.Duration `mapstructure:"upload_cooldown" yaml:"upload_cooldown"`
	// Token is a pre-issued access token tried before the OAuth flow.
	Token string `mapstructure:"token" yaml:"token"`
}

// OAuthConfig configures the interactive authorization flow.
type OAuthConfig struct {
	ClientID     string   `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string   `mapstructure:"client_secret" yaml:"client_secret"`
	RedirectURL  string   `mapstructure:"redirect_url" yaml:"redirect_url"`
	AuthURL      string   `mapstructure:"auth_url" yaml:"auth_url"`
	TokenURL     string   `mapstructure:"token_url" yaml:"token_url"`
	Scopes       []string `mapstructure:"scopes" yaml:"scopes"`
}

// defaults lists every key with its default. Keys must be registered here
// for environment overrides to reach Unmarshal.
func defaults() map[string]any {
	return map[string]any{
		"version":               1,
		"history_size":          5,
		"tree.file":             paths.TreeFile(),
		"tree.primary_id":       "1",
		"tree.other_id":         "2",
		"tree.container_title":  "Bookmark Bars",
		"state.backend":         BackendFile,
		"state.dir":             paths.StateDir(),
		"state.redis.addr":      "localhost:6379",
		"state.redis.username":  "",
		"state.redis.password":  "",
		"state.redis.db":        0,
		"state.redis.prefix":    "bbs:",
		"drive.api_base":        "https://www.googleapis.com/drive/v3",
		"drive.upload_base":     "https://www.googleapis.com/upload/drive/v3",
		"drive.space":           "appDataFolder",
		"drive.name_prefix":     "bbs-backup",
		"drive.max_backups":     10,
		"drive.upload_cooldown": "60s",
		"drive.token":           "",
		"oauth.client_id":       "",
		"oauth.client_secret":   "",
		"oauth.redirect_url":    "http://127.0.0.1",
		"oauth.auth_url":        "https://accounts.google.com/o/oauth2/auth",
		"oauth.token_url":       "https://oauth2.googleapis.com/token",
		"oauth.scopes":          []string{"https://www.googleapis.com/auth/drive.appdata"},
	}
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for key, value := range defaults() {
		viper.SetDefault(key, value)
	}
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return errors.Wrap(godotenv.Load(existing...), "loading .env")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case path != "":
			return nil, errors.Wrapf(err, "reading config file %s", path)
		case !errors.As(err, &notFound):
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	return &cfg, nil
}

// Keys returns every known configuration key, sorted.
func Keys() []string {
	return slices.Sorted(maps.Keys(defaults()))
}
