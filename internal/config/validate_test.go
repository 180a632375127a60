package config

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Version:     1,
		HistorySize: 5,
		Tree: TreeConfig{
			File:           "/tmp/bookmarks.json",
			PrimaryID:      "1",
			OtherID:        "2",
			ContainerTitle: "Bookmark Bars",
		},
		State: StateConfig{Backend: BackendFile, Dir: "/tmp/state"},
		Drive: DriveConfig{
			APIBase:        "https://www.googleapis.com/drive/v3",
			UploadBase:     "https://www.googleapis.com/upload/drive/v3",
			MaxBackups:     10,
			UploadCooldown: time.Minute,
		},
		OAuth: OAuthConfig{
			RedirectURL: "http://127.0.0.1",
			AuthURL:     "https://accounts.google.com/o/oauth2/auth",
			TokenURL:    "https://oauth2.googleapis.com/token",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
		err    error
	}{
		{"valid", func(*Config) {}, "", nil},
		{"version", func(c *Config) { c.Version = 0 }, "", ErrVersionTooLow},
		{"history size", func(c *Config) { c.HistorySize = 0 }, "history_size", ErrInvalidValue},
		{"tree file", func(c *Config) { c.Tree.File = "" }, "tree.file", ErrInvalidPath},
		{"same folder ids", func(c *Config) { c.Tree.OtherID = "1" }, "tree.primary_id", ErrInvalidValue},
		{"container title", func(c *Config) { c.Tree.ContainerTitle = " " }, "tree.container_title", ErrInvalidValue},
		{"backend", func(c *Config) { c.State.Backend = "etcd" }, "state.backend", ErrInvalidValue},
		{"state dir", func(c *Config) { c.State.Dir = "bad\x00dir" }, "state.dir", ErrInvalidPath},
		{"redis addr", func(c *Config) {
			c.State.Backend = BackendRedis
		}, "state.redis.addr", ErrInvalidValue},
		{"api base", func(c *Config) { c.Drive.APIBase = "ftp://drive" }, "drive.api_base", ErrInvalidURL},
		{"token url", func(c *Config) { c.OAuth.TokenURL = "/token" }, "oauth.token_url", ErrInvalidURL},
		{"max backups", func(c *Config) { c.Drive.MaxBackups = 0 }, "drive.max_backups", ErrInvalidValue},
		{"cooldown", func(c *Config) { c.Drive.UploadCooldown = -time.Second }, "drive.upload_cooldown", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			errs := Validate(cfg)
			if tt.err == nil {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.ErrorIs(t, errs[0], tt.err)
			if tt.field != "" {
				var fe *FieldError
				require.True(t, errors.As(errs[0], &fe))
				assert.Equal(t, tt.field, fe.Field)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	assert.Len(t, Validate(nil), 1)
}

func TestValidate_SortsByField(t *testing.T) {
	cfg := validConfig()
	cfg.Drive.MaxBackups = 0
	cfg.HistorySize = 0
	cfg.Drive.APIBase = ""

	errs := Validate(cfg)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0].Error(), "drive.api_base")
	assert.Contains(t, errs[1].Error(), "drive.max_backups")
	assert.Contains(t, errs[2].Error(), "history_size")
}
