package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// DefaultTimeout is the wall-clock budget applied to every command unless configured otherwise.
const DefaultTimeout = 5 * time.Minute

// waitDelay bounds how long Wait blocks on inherited pipes after the child is killed.
const waitDelay = 2 * time.Second

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

type Config struct {
	Dir     string        // Default working directory (the project root)
	Timeout time.Duration // Per-command budget, DefaultTimeout when zero
	Env     []string      // Child environment, inherited when nil
	Verbose bool          // Tee child output and print execution banners
	Stdout  io.Writer     // Verbose stdout sink (default: os.Stdout)
	Stderr  io.Writer     // Verbose stderr and banner sink (default: os.Stderr)
}

// Result is the outcome of one command. It is never nil and never accompanied by an error:
// timeouts and spawn faults are reported with Success=false and ReturnCode=-1.
type Result struct {
	Command       string
	Success       bool
	ReturnCode    int
	Stdout        string
	Stderr        string
	Status        Status
	ExecutionTime int64 // milliseconds
}

// Executor runs shell commands one at a time.
type Executor struct {
	config Config
}

func New(config Config) *Executor {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	if config.Stderr == nil {
		config.Stderr = os.Stderr
	}
	return &Executor{config: config}
}

// Timeout reports the per-command budget in effect.
func (e *Executor) Timeout() time.Duration {
	return e.config.Timeout
}

// Run executes command through the platform shell in dir, or in the configured
// default directory when dir is empty.
func (e *Executor) Run(ctx context.Context, command, dir string) Result {
	if dir == "" {
		dir = e.config.Dir
	}

	if e.config.Verbose {
		PrintPreExecution(e.config.Stderr, command, dir, e.config.Timeout)
	}

	result := e.execute(ctx, command, dir)

	if e.config.Verbose {
		PrintPostExecution(e.config.Stderr, result)
	}
	return result
}

func (e *Executor) execute(ctx context.Context, command, dir string) Result {
	runCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	name, args := shellCommand(command)
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = dir
	cmd.Env = e.config.Env
	cmd.WaitDelay = waitDelay
	configureProcessGroup(cmd)

	var stdout, stderr strings.Builder
	if e.config.Verbose {
		cmd.Stdout = io.MultiWriter(e.config.Stdout, &stdout)
		cmd.Stderr = io.MultiWriter(e.config.Stderr, &stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	startTime := time.Now()
	err := cmd.Run()
	executionTime := time.Since(startTime).Milliseconds()

	if err == nil {
		return Result{
			Command:       command,
			Success:       true,
			ReturnCode:    0,
			Stdout:        stdout.String(),
			Stderr:        stderr.String(),
			Status:        StatusSuccess,
			ExecutionTime: executionTime,
		}
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return Result{
			Command:       command,
			Success:       false,
			ReturnCode:    -1,
			Stderr:        fmt.Sprintf("Command timed out after %s", describeTimeout(e.config.Timeout)),
			Status:        StatusTimeout,
			ExecutionTime: executionTime,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return Result{
			Command:       command,
			Success:       false,
			ReturnCode:    exitErr.ExitCode(),
			Stdout:        stdout.String(),
			Stderr:        stderr.String(),
			Status:        StatusFailed,
			ExecutionTime: executionTime,
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return Result{
		Command:       command,
		Success:       false,
		ReturnCode:    -1,
		Stderr:        err.Error(),
		Status:        StatusError,
		ExecutionTime: executionTime,
	}
}

func shellCommand(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", command}
	}
	return "sh", []string{"-c", command}
}

// describeTimeout renders d the way humans phrase it: "5 minutes", "1 second", "250ms".
func describeTimeout(d time.Duration) string {
	switch {
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	case d >= time.Second && d%time.Second == 0:
		return plural(int(d/time.Second), "second")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
