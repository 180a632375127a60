package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/trezero/bookmark-bar-switcher/internal/logging"
)

// keepLogger restores the default logger and flag globals after a test.
func keepLogger(t *testing.T) {
	t.Helper()
	orig := slog.Default()
	origVerbosity, origQuiet, origFormat, origFile := verbosity, quiet, logFormat, logFile
	t.Cleanup(func() {
		slog.SetDefault(orig)
		verbosity, quiet, logFormat, logFile = origVerbosity, origQuiet, origFormat, origFile
	})
}

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	keepLogger(t)

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = tt.verbosity
			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > logging.LevelTrace {
				shouldBeDisabled := tt.wantLevel - 4
				if logger.Enabled(t.Context(), shouldBeDisabled) {
					t.Errorf("expected level %v to be disabled", shouldBeDisabled)
				}
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	keepLogger(t)

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"BBS_DEBUG=1", "1", slog.LevelDebug},
		{"BBS_DEBUG=true", "true", slog.LevelDebug},
		{"BBS_DEBUG=2", "2", logging.LevelTrace},
		{"BBS_DEBUG=0", "0", slog.LevelWarn},
		{"BBS_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv("BBS_DEBUG", tt.envVal)

			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel == slog.LevelDebug && logger.Enabled(t.Context(), logging.LevelTrace) {
				t.Error("expected Trace level to be disabled when BBS_DEBUG=1")
			}
		})
	}
}

func TestSetupLogging_Quiet(t *testing.T) {
	keepLogger(t)
	quiet = true
	verbosity = 0

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := slog.Default()
	if !logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("expected Error level to be enabled")
	}
	if logger.Enabled(t.Context(), slog.LevelWarn) {
		t.Error("expected Warn level to be disabled")
	}
}

func TestSetupLogging_QuietMutualExclusion(t *testing.T) {
	keepLogger(t)
	verbosity = 1
	quiet = true

	if err := setupLogging(rootCmd); err == nil {
		t.Error("expected error when both quiet and verbose are set")
	}
}

func TestSetupLogging_UnknownFormat(t *testing.T) {
	keepLogger(t)
	logFormat = "xml"

	if err := setupLogging(rootCmd); err == nil {
		t.Error("expected error for unknown log format")
	}
}

func TestSetupLogging_LogFileMasksTokens(t *testing.T) {
	keepLogger(t)
	logFile = filepath.Join(t.TempDir(), "bbs.log")
	verbosity = 1

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	slog.Default().Info("token refreshed", "access_token", "ya29.abcdefgh1234")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !bytes.Contains(data, []byte(`"msg":"token refreshed"`)) {
		t.Errorf("log file missing record: %s", data)
	}
	if bytes.Contains(data, []byte("abcdefgh")) {
		t.Errorf("log file leaked token: %s", data)
	}
}

func TestRunVersionWithWriter(t *testing.T) {
	var buf bytes.Buffer
	runVersionWithWriter(&buf)

	if !bytes.HasPrefix(buf.Bytes(), []byte("bbs version ")) {
		t.Errorf("unexpected version output: %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("commit:")) {
		t.Errorf("missing commit line: %q", buf.String())
	}
}
