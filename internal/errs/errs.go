// Package errs defines the error taxonomy shared across arbor commands.
//
// Errors fall into a small set of categories: configuration problems,
// command-line usage problems, referential-integrity problems discovered
// while rewriting configuration documents, internal assertion failures, and
// an explicit exit request that carries a status code but no message.
package errs

import (
	"errors"
	"fmt"
)

// ConfigError reports a malformed or unresolvable configuration.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// Config creates a ConfigError from a format string.
func Config(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// UsageError reports invalid command-line usage, e.g. a missing argument.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// Usage creates a UsageError from a format string.
func Usage(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// AssertionError reports a violated internal invariant. These are defects,
// not user errors.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string {
	return e.Msg
}

// Assertion creates an AssertionError from a format string.
func Assertion(format string, args ...any) error {
	return &AssertionError{Msg: fmt.Sprintf(format, args...)}
}

// WorktreeParentError reports a worktree whose parent tree has not been
// recorded in the configuration yet.
type WorktreeParentError struct {
	Parent string
	Tree   string
}

func (e *WorktreeParentError) Error() string {
	return fmt.Sprintf(
		"worktree parent %q for %q is not in the configuration; plant %q first",
		e.Parent, e.Tree, e.Parent)
}

// ExitStatus requests process termination with the carried status code and
// no message. A zero status is a successful early exit.
type ExitStatus struct {
	Code int
}

func (e *ExitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Exit creates an ExitStatus error for the given code.
func Exit(code int) error {
	return &ExitStatus{Code: code}
}

// IsExitStatus reports whether err is an explicit exit request and returns
// its code when it is.
func IsExitStatus(err error) (int, bool) {
	var exit *ExitStatus
	if errors.As(err, &exit) {
		return exit.Code, true
	}
	return 0, false
}

// ExitCode maps an error to the process exit code: nil is 0, an explicit
// ExitStatus supplies its own code, a UsageError is 2, and anything else is
// the generic failure code 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := IsExitStatus(err); ok {
		return code
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

// ResultFromExitStatus converts an aggregated command status into an error:
// zero is success, anything else becomes an ExitStatus request so the
// process exits with the child's code and no extra message.
func ResultFromExitStatus(status int) error {
	if status == 0 {
		return nil
	}
	return Exit(status)
}
