package config

import (
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidValue indicates a field holds a value outside its range.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidURL indicates a URL value is not absolute http(s).
	ErrInvalidURL = errors.New("invalid URL")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error
	add := func(field, value string, err error) {
		errs = append(errs, &FieldError{Field: field, Value: value, Err: err})
	}

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}
	if cfg.HistorySize < 1 {
		add("history_size", strconv.Itoa(cfg.HistorySize), ErrInvalidValue)
	}

	if err := validatePath(cfg.Tree.File); err != nil {
		add("tree.file", cfg.Tree.File, err)
	}
	if cfg.Tree.PrimaryID == "" || cfg.Tree.OtherID == "" || cfg.Tree.PrimaryID == cfg.Tree.OtherID {
		add("tree.primary_id", cfg.Tree.PrimaryID, ErrInvalidValue)
	}
	if strings.TrimSpace(cfg.Tree.ContainerTitle) == "" {
		add("tree.container_title", cfg.Tree.ContainerTitle, ErrInvalidValue)
	}

	backends := []string{BackendFile, BackendMemory, BackendRedis}
	switch {
	case !slices.Contains(backends, cfg.State.Backend):
		add("state.backend", cfg.State.Backend, ErrInvalidValue)
	case cfg.State.Backend == BackendFile:
		if err := validatePath(cfg.State.Dir); err != nil {
			add("state.dir", cfg.State.Dir, err)
		}
	case cfg.State.Backend == BackendRedis:
		if cfg.State.Redis.Addr == "" {
			add("state.redis.addr", "", ErrInvalidValue)
		}
		if cfg.State.Redis.DB < 0 {
			add("state.redis.db", strconv.Itoa(cfg.State.Redis.DB), ErrInvalidValue)
		}
	}

	for field, raw := range map[string]string{
		"drive.api_base":     cfg.Drive.APIBase,
		"drive.upload_base":  cfg.Drive.UploadBase,
		"oauth.auth_url":     cfg.OAuth.AuthURL,
		"oauth.token_url":    cfg.OAuth.TokenURL,
		"oauth.redirect_url": cfg.OAuth.RedirectURL,
	} {
		if err := validateURL(raw); err != nil {
			add(field, raw, err)
		}
	}
	if cfg.Drive.MaxBackups < 1 {
		add("drive.max_backups", strconv.Itoa(cfg.Drive.MaxBackups), ErrInvalidValue)
	}
	if cfg.Drive.UploadCooldown < 0 {
		add("drive.upload_cooldown", cfg.Drive.UploadCooldown.String(), ErrInvalidValue)
	}

	// Map iteration above is unordered.
	slices.SortStableFunc(errs, func(a, b error) int {
		return strings.Compare(fieldOf(a), fieldOf(b))
	})
	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	if path == "" {
		return ErrInvalidPath
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}

func fieldOf(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}

// FieldError represents an error for a specific configuration key.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return e.Field + ": " + e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
