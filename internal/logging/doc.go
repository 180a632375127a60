// Package logging provides structured logging for bbs using slog.
//
// The package supports text and JSON output, verbosity-derived levels,
// masking of OAuth tokens in log attributes, and helpers for tests.
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("switched bar", "bar", bar.Title)
//
// In tests use [ForTest] so output lands in the test log.
package logging
