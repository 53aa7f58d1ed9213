package runner

import (
	"fmt"
	"io"
	"time"
)

// PrintPreExecution prints command details before execution
func PrintPreExecution(w io.Writer, command, dir string, timeout time.Duration) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Command Execution Details")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Command: %s\n", command)
	fmt.Fprintf(w, "Dir:     %s\n", dir)
	if timeout > 0 {
		fmt.Fprintf(w, "Timeout: %s\n", timeout)
	}
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, "Command Output:")
	fmt.Fprintln(w, "----------------------------------------")
}

// PrintPostExecution prints execution results after command completion
func PrintPostExecution(w io.Writer, result Result) {
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, "Execution Results:")
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "Status:         %s\n", result.Status)
	fmt.Fprintf(w, "Exit Code:      %d\n", result.ReturnCode)
	fmt.Fprintf(w, "Execution Time: %d ms\n", result.ExecutionTime)
	if result.Status == StatusTimeout || result.Status == StatusError {
		fmt.Fprintf(w, "Fault:          %s\n", result.Stderr)
	}
	fmt.Fprintln(w, "========================================")
}
