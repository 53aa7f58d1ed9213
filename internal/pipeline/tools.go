package pipeline

import (
	"context"
	"strings"
)

// Availability says whether a tool can be invoked after the install attempt.
type Availability int

const (
	ToolUnavailable Availability = iota
	ToolAvailable
)

func (a Availability) String() string {
	if a == ToolAvailable {
		return "available"
	}
	return "unavailable"
}

// ensureTool installs name with pip. A failed install is only a warning: the
// tool still counts as available when it already resolves on PATH.
func (e *Env) ensureTool(ctx context.Context, name string) Availability {
	result := e.run(ctx, e.pipInstall(name))
	if result.Success {
		return ToolAvailable
	}

	e.Logger.Warn("tool installation failed",
		"tool", name,
		"exit_code", result.ReturnCode,
		"stderr", strings.TrimSpace(result.Stderr))

	if err := e.resolve(name); err == nil {
		e.Logger.Debug("using preinstalled tool", "tool", name)
		return ToolAvailable
	}
	return ToolUnavailable
}
