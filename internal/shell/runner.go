// Package shell runs the external git and ssh tools that variant drives.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Result is the captured outcome of one external command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the command exited with status zero.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Output returns stdout, or stderr when stdout is empty. Tools like ssh-add
// report failures on stderr only.
func (r *Result) Output() []byte {
	if r == nil {
		return nil
	}
	if len(bytes.TrimSpace(r.Stdout)) == 0 {
		return r.Stderr
	}
	return r.Stdout
}

// Runner executes an external command and captures its output.
//
// A non-zero exit is reported through Result, not as an error. The error is
// reserved for commands that could not be started at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	// Stdin is connected to the child, so ssh-add can ask for a passphrase.
	Stdin io.Reader

	// Stderr, when set, receives a copy of the child's stderr as it is produced.
	Stderr io.Writer
}

// Run starts name with args and waits for it. There is no timeout; a hung
// tool blocks until ctx is cancelled.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	}
	if r.Stdin != nil {
		cmd.Stdin = r.Stdin
	}

	err := cmd.Run()
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		// -1 when the process was killed by a signal.
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
}
