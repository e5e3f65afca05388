// Package shell is the process boundary: it runs external commands with a
// working directory and an environment overlay and reports exit statuses.
package shell

import (
	"os"
	"os/exec"
	"strings"
)

// LaunchFailureStatus is reported when a command could not be started at
// all, e.g. the executable does not exist.
const LaunchFailureStatus = 1

// Runner runs one command to completion and returns its exit status.
// Implementations block until the child exits.
type Runner interface {
	// Run executes argv with dir as the working directory and env overlaid
	// on the inherited process environment. Stdio is inherited. The return
	// value is the child's exit status, or LaunchFailureStatus when the
	// child could not be started.
	Run(argv []string, dir string, env []string) int
}

// ExecRunner is the os/exec backed Runner used by the real CLI.
type ExecRunner struct{}

// NewRunner returns the default Runner.
func NewRunner() Runner {
	return &ExecRunner{}
}

// Run implements Runner.
func (r *ExecRunner) Run(argv []string, dir string, env []string) int {
	if len(argv) == 0 {
		return LaunchFailureStatus
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		return LaunchFailureStatus
	}
	return 0
}

// Capture runs cmdline through the given shell and returns its stdout with
// trailing whitespace trimmed. Evaluation is best-effort: a failed launch
// or non-zero exit does not produce an error, whatever output was captured
// is used as-is. This keeps exec expressions total when they probe external
// state that may not exist yet.
func Capture(shellProg, cmdline, dir string) string {
	if shellProg == "" {
		shellProg = "sh"
	}
	cmd := exec.Command(shellProg, "-c", cmdline)
	cmd.Dir = dir
	out, _ := cmd.Output()
	return strings.TrimRight(string(out), " \t\r\n")
}

// CaptureArgv runs argv in dir and returns its trimmed stdout. Unlike
// Capture, failures are reported so callers can distinguish "no output"
// from "command failed".
func CaptureArgv(argv []string, dir string) (string, error) {
	if len(argv) == 0 {
		return "", exec.ErrNotFound
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), " \t\r\n"), nil
}
