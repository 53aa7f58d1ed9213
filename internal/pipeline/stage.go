// Package pipeline runs the fixed sequence of validation stages against a
// project checkout and folds their outcomes into a report tree.
package pipeline

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/zinc-sig/ghostci/internal/report"
	"github.com/zinc-sig/ghostci/internal/runner"
)

// CommandRunner executes one shell command to completion.
type CommandRunner interface {
	Run(ctx context.Context, command, dir string) runner.Result
}

// Stage is one validation step. A false result with a nil error is an ordinary
// check failure; a non-nil error is an unexpected fault.
type Stage interface {
	Name() string
	Title() string
	Run(ctx context.Context, env *Env) (bool, error)
}

// LintOptions tunes the style checker invocation.
type LintOptions struct {
	MaxLineLength int
	Ignore        []string
}

// Env is everything a stage may touch while it runs.
type Env struct {
	Root             string
	Python           string
	TestDependencies []string
	Lint             LintOptions

	Runner CommandRunner
	Logger *slog.Logger
	Tree   *report.Tree

	lookPath func(string) (string, error)
}

func (e *Env) run(ctx context.Context, command string) runner.Result {
	return e.Runner.Run(ctx, command, e.Root)
}

// python renders "<python> -m <module> <args...>" with every argument quoted
// for the platform shell.
func (e *Env) python(module string, args ...string) string {
	return e.tool(e.Python, append([]string{"-m", module}, args...)...)
}

// tool renders a command line for an executable resolved through PATH.
func (e *Env) tool(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(name))
	for _, arg := range args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

func (e *Env) pipInstall(args ...string) string {
	return e.python("pip", append([]string{"install"}, args...)...)
}

func (e *Env) resolve(name string) error {
	lookPath := e.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	_, err := lookPath(name)
	return err
}
