package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("posix shell required")
	}
}

func TestTool_RunSeparatesStreams(t *testing.T) {
	requireShell(t)
	stdout, stderr, err := Tool(context.Background(), time.Second, "sh", "-c", `echo '{"results": []}'; echo warn >&2`).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(stdout) != `{"results": []}` {
		t.Errorf("stdout = %q", stdout)
	}
	if strings.TrimSpace(stderr) != "warn" {
		t.Errorf("stderr = %q", stderr)
	}
}

// bandit 发现问题时以 1 退出，stdout 仍需可用
func TestTool_FailureKeepsStdout(t *testing.T) {
	requireShell(t)
	stdout, _, err := Tool(context.Background(), 0, "sh", "-c", "echo report; printf '\x1b[31mboom\x1b[0m\n' >&2; exit 1").Run()
	if !strings.Contains(stdout, "report") {
		t.Errorf("stdout lost on failure: %q", stdout)
	}
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("want *ToolError, got %T (%v)", err, err)
	}
	if te.Tool != "sh" || te.ExitCode() != 1 {
		t.Errorf("tool=%q exit=%d", te.Tool, te.ExitCode())
	}
	if te.Tail() != "  boom" {
		t.Errorf("tail = %q", te.Tail())
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("plain failure must not match ErrTimeout")
	}
	if !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestTool_Timeout(t *testing.T) {
	requireShell(t)
	start := time.Now()
	_, err := Tool(context.Background(), 100*time.Millisecond, "sleep", "5").CombinedOutput()
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatal("timeout not enforced")
	}
	if err.Error() != "sleep: timed out after 100ms" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestTool_ParentCancelIsNotTimeout(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Tool(ctx, time.Minute, "sleep", "5").Output()
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if errors.Is(err, ErrTimeout) {
		t.Errorf("cancellation reported as timeout: %v", err)
	}
}

func TestTool_MissingBinary(t *testing.T) {
	_, err := Tool(context.Background(), time.Second, "smartrepo-no-such-tool").Output()
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("want *ToolError, got %T", err)
	}
	if te.ExitCode() != -1 {
		t.Errorf("exit code = %d", te.ExitCode())
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("want exec.ErrNotFound in chain, got %v", err)
	}
}

func TestToolError_TailKeepsLastLines(t *testing.T) {
	var b strings.Builder
	for i := range 20 {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	te := &ToolError{Tool: "radon", Stderr: b.String()}
	lines := strings.Split(te.Tail(), "\n")
	if len(lines) != maxStderrLines {
		t.Fatalf("tail has %d lines", len(lines))
	}
	if lines[0] != "  line 12" || lines[len(lines)-1] != "  line 19" {
		t.Errorf("tail = %q", lines)
	}
}
