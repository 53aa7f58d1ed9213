package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("executor tests require a POSIX shell")
	}
}

func TestRun(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name           string
		command        string
		wantSuccess    bool
		wantReturnCode int
		wantStatus     Status
		wantStdout     string
		wantStderr     string
	}{
		{
			name:           "successful echo command",
			command:        "echo 'hello world'",
			wantSuccess:    true,
			wantReturnCode: 0,
			wantStatus:     StatusSuccess,
			wantStdout:     "hello world\n",
		},
		{
			name:           "command with non-zero exit code",
			command:        "exit 42",
			wantSuccess:    false,
			wantReturnCode: 42,
			wantStatus:     StatusFailed,
		},
		{
			name:           "command writes to stderr",
			command:        "echo 'error message' >&2",
			wantSuccess:    true,
			wantReturnCode: 0,
			wantStatus:     StatusSuccess,
			wantStderr:     "error message\n",
		},
		{
			name:           "failing command keeps captured output",
			command:        "echo out && echo err >&2 && exit 3",
			wantSuccess:    false,
			wantReturnCode: 3,
			wantStatus:     StatusFailed,
			wantStdout:     "out\n",
			wantStderr:     "err\n",
		},
		{
			name:           "non-existent command",
			command:        "nonexistentcommand12345",
			wantSuccess:    false,
			wantReturnCode: 127,
			wantStatus:     StatusFailed,
		},
		{
			name:           "false command returns exit code 1",
			command:        "false",
			wantSuccess:    false,
			wantReturnCode: 1,
			wantStatus:     StatusFailed,
		},
		{
			name:           "true command returns exit code 0",
			command:        "true",
			wantSuccess:    true,
			wantReturnCode: 0,
			wantStatus:     StatusSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := New(Config{Dir: t.TempDir()})

			result := exec.Run(context.Background(), tt.command, "")

			if result.Success != tt.wantSuccess {
				t.Errorf("success = %v, want %v", result.Success, tt.wantSuccess)
			}
			if result.ReturnCode != tt.wantReturnCode {
				t.Errorf("return code = %d, want %d", result.ReturnCode, tt.wantReturnCode)
			}
			if result.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", result.Status, tt.wantStatus)
			}
			if result.Command != tt.command {
				t.Errorf("command = %q, want %q", result.Command, tt.command)
			}
			if tt.wantStdout != "" && result.Stdout != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", result.Stdout, tt.wantStdout)
			}
			if tt.wantStderr != "" && result.Stderr != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", result.Stderr, tt.wantStderr)
			}
			if result.ExecutionTime < 0 {
				t.Errorf("execution time should be non-negative, got %d ms", result.ExecutionTime)
			}
		})
	}
}

func TestRunWorkingDirectory(t *testing.T) {
	skipOnWindows(t)

	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	exec := New(Config{Dir: root})

	defaulted := exec.Run(context.Background(), "pwd", "")
	explicit := exec.Run(context.Background(), "pwd", sub)

	if got := resolve(t, strings.TrimSpace(defaulted.Stdout)); got != resolve(t, root) {
		t.Errorf("default dir = %q, want %q", got, root)
	}
	if got := resolve(t, strings.TrimSpace(explicit.Stdout)); got != resolve(t, sub) {
		t.Errorf("explicit dir = %q, want %q", got, sub)
	}
}

func TestRunMissingWorkingDirectory(t *testing.T) {
	skipOnWindows(t)

	exec := New(Config{Dir: t.TempDir()})
	result := exec.Run(context.Background(), "echo hi", filepath.Join(t.TempDir(), "missing"))

	if result.Success {
		t.Fatal("expected failure for missing working directory")
	}
	if result.ReturnCode != -1 {
		t.Errorf("return code = %d, want -1", result.ReturnCode)
	}
	if result.Status != StatusError {
		t.Errorf("status = %s, want %s", result.Status, StatusError)
	}
	if result.Stderr == "" {
		t.Error("expected fault message in stderr")
	}
}

func TestRunWithTimeout(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name           string
		command        string
		timeout        time.Duration
		wantStatus     Status
		wantReturnCode int
		maxDuration    time.Duration
	}{
		{
			name:           "command completes before timeout",
			command:        "sleep 0.1",
			timeout:        time.Second,
			wantStatus:     StatusSuccess,
			wantReturnCode: 0,
			maxDuration:    time.Second,
		},
		{
			name:           "command times out",
			command:        "sleep 5",
			timeout:        100 * time.Millisecond,
			wantStatus:     StatusTimeout,
			wantReturnCode: -1,
			maxDuration:    3 * time.Second,
		},
		{
			name:           "failing command times out before it can fail",
			command:        "sleep 5; exit 1",
			timeout:        time.Second,
			wantStatus:     StatusTimeout,
			wantReturnCode: -1,
			maxDuration:    4 * time.Second,
		},
		{
			name:           "timeout kills background children",
			command:        "sleep 5 & sleep 5; wait",
			timeout:        100 * time.Millisecond,
			wantStatus:     StatusTimeout,
			wantReturnCode: -1,
			maxDuration:    3 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := New(Config{Dir: t.TempDir(), Timeout: tt.timeout})

			start := time.Now()
			result := exec.Run(context.Background(), tt.command, "")
			elapsed := time.Since(start)

			if result.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", result.Status, tt.wantStatus)
			}
			if result.ReturnCode != tt.wantReturnCode {
				t.Errorf("return code = %d, want %d", result.ReturnCode, tt.wantReturnCode)
			}
			if elapsed > tt.maxDuration {
				t.Errorf("run took %v, want at most %v", elapsed, tt.maxDuration)
			}
			if tt.wantStatus == StatusTimeout {
				if result.Success {
					t.Error("timed out command must not succeed")
				}
				if !strings.Contains(result.Stderr, "timed out") {
					t.Errorf("stderr = %q, want timeout message", result.Stderr)
				}
				if result.Stdout != "" {
					t.Errorf("stdout = %q, want empty", result.Stdout)
				}
			}
		})
	}
}

func TestRunCancelledContext(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(Config{Dir: t.TempDir()}).Run(ctx, "echo hi", "")
	if result.Success || result.ReturnCode != -1 {
		t.Fatalf("expected synthetic failure, got %+v", result)
	}
	if result.Status != StatusError {
		t.Errorf("status = %s, want %s", result.Status, StatusError)
	}
}

func TestDefaultTimeoutMessage(t *testing.T) {
	exec := New(Config{})
	if exec.Timeout() != DefaultTimeout {
		t.Fatalf("timeout = %v, want %v", exec.Timeout(), DefaultTimeout)
	}
	if got := describeTimeout(DefaultTimeout); got != "5 minutes" {
		t.Errorf("describeTimeout(default) = %q, want %q", got, "5 minutes")
	}
}

func TestDescribeTimeout(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Minute, "1 minute"},
		{5 * time.Minute, "5 minutes"},
		{time.Second, "1 second"},
		{90 * time.Second, "90 seconds"},
		{250 * time.Millisecond, "250ms"},
	}
	for _, tt := range tests {
		if got := describeTimeout(tt.in); got != tt.want {
			t.Errorf("describeTimeout(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVerboseTeesOutput(t *testing.T) {
	skipOnWindows(t)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	exec := New(Config{Dir: t.TempDir(), Verbose: true, Stdout: stdout, Stderr: stderr})

	result := exec.Run(context.Background(), "echo streamed", "")

	if result.Stdout != "streamed\n" {
		t.Errorf("captured stdout = %q", result.Stdout)
	}
	if !strings.Contains(stdout.String(), "streamed") {
		t.Errorf("terminal stdout = %q, want streamed output", stdout.String())
	}
	banner := stderr.String()
	for _, want := range []string{"Command: echo streamed", "Status:         success", "Exit Code:      0"} {
		if !strings.Contains(banner, want) {
			t.Errorf("banner missing %q:\n%s", want, banner)
		}
	}
}

func TestLargeOutput(t *testing.T) {
	skipOnWindows(t)

	largeText := strings.Repeat("Hello World\n", 10000)
	result := New(Config{Dir: t.TempDir()}).Run(context.Background(),
		"for i in $(seq 1 10000); do echo 'Hello World'; done", "")

	if result.ReturnCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ReturnCode)
	}
	if len(result.Stdout) != len(largeText) {
		t.Errorf("output size mismatch: got %d bytes, want %d bytes", len(result.Stdout), len(largeText))
	}
}

func resolve(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("resolve %s: %v", path, err)
	}
	return resolved
}

func BenchmarkRun(b *testing.B) {
	exec := New(Config{Dir: b.TempDir()})
	for i := 0; i < b.N; i++ {
		exec.Run(context.Background(), "echo benchmark", "")
	}
}
