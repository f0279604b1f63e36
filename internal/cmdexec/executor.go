// Package cmdexec runs task commands through the system shell.
package cmdexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

const DefaultTimeout = 60 * time.Second

// waitDelay bounds how long Execute waits for the output pipes to close once
// the command has been killed.
const waitDelay = time.Second

// ErrTimeout is returned when a command outlives the executor's timeout.
var ErrTimeout = errors.New("command timed out")

// Result is one finished run. A non-zero exit is a result, not an error.
type Result struct {
	Output    string
	ExitCode  int
	StartTime time.Time
	EndTime   time.Time
}

type Executor struct {
	shell   string
	timeout time.Duration
}

type Option func(*Executor)

func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithShell(path string) Option {
	return func(e *Executor) {
		e.shell = path
	}
}

func New(opts ...Option) *Executor {
	e := &Executor{shell: "/bin/sh", timeout: DefaultTimeout}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute runs command with `sh -c` and captures stdout and stderr
// interleaved. The returned Result is filled even when err is non-nil.
func (e *Executor) Execute(ctx context.Context, command string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, e.shell, "-c", command)
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = waitDelay
	killGroup(cmd)

	res := Result{StartTime: time.Now().UTC()}
	err := cmd.Run()
	res.EndTime = time.Now().UTC()
	res.Output = out.String()

	if ctx.Err() == context.DeadlineExceeded {
		res.ExitCode = -1
		return res, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
		return res, fmt.Errorf("failed to run command: %w", err)
	}
	return res, nil
}
