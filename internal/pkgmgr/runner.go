package pkgmgr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Output captures the result of a finished process.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ProcessError reports a subprocess that could not start or exited non-zero.
type ProcessError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("command %q failed", strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Runner executes argv. When stream is true the process output is also
// forwarded to the runner's writers; stdout and stderr are captured either way.
// A non-zero exit is reported as a *ProcessError.
type Runner interface {
	Run(ctx context.Context, argv []string, stream bool) (*Output, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Stdout and Stderr receive streamed output; both default to os.Stderr
	// so that command results written to stdout stay machine readable.
	Stdout io.Writer
	Stderr io.Writer
	// Env is added to the inherited process environment.
	Env map[string]string
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, argv []string, stream bool) (*Output, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	env := os.Environ()
	for k, v := range r.Env {
		env = setEnv(env, k, v)
	}
	cmd.Env = env

	var stdoutBuf, stderrBuf bytes.Buffer
	if stream {
		cmd.Stdout = io.MultiWriter(writerOr(r.Stdout), &stdoutBuf)
		cmd.Stderr = io.MultiWriter(writerOr(r.Stderr), &stderrBuf)
	} else {
		cmd.Stdout = &stdoutBuf
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	output := &Output{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}
	if err != nil {
		perr := &ProcessError{Args: argv, ExitCode: -1, Stderr: output.Stderr, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		output.ExitCode = perr.ExitCode
		return output, perr
	}
	return output, nil
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
