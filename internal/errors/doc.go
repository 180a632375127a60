// Package errors provides error handling conventions for the bbs CLI.
//
// It re-exports the github.com/cockroachdb/errors helpers used throughout the
// codebase so packages only need a single import, and defines an ExitError type
// carrying a process exit code and an optional suggestion for the user.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, network, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code. It supports
// unwrapping, so sentinel checks still work through it:
//
//	err := errors.NewUserError(lock.ErrContention, "Wait for the running switch to finish")
//	if errors.Is(err, lock.ErrContention) {
//	    // still true
//	}
package errors
