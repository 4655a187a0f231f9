package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultCodeTimeout = 20 * time.Second
	codeCPUSeconds     = 15
	codeMemoryKB       = 512 * 1024
	codeOutputLimit    = 5000
)

// codeTool runs Python snippets under explicit resource ceilings: a
// wall-clock deadline from the context, plus CPU and virtual-memory
// limits applied with ulimit inside the spawned shell. The tool only
// reports through its returned payload; it has no handle on any agent
// state.
type codeTool struct {
	timeout time.Duration
}

func newCodeTool(timeout time.Duration) *codeTool {
	if timeout <= 0 {
		timeout = defaultCodeTimeout
	}
	return &codeTool{timeout: timeout}
}

func (t *codeTool) Name() string { return "code.python_exec" }

func (t *codeTool) Description() string {
	return "Execute Python code in a sandboxed environment with CPU, memory, and wall-clock limits. Returns stdout and stderr."
}

func (t *codeTool) Schema() map[string]any {
	return objectSchema(map[string]any{
		"code": stringProp("Python code to execute"),
	}, "code")
}

func (t *codeTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	code, err := stringArg(args, "code")
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, errors.New("code cannot be empty")
	}

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	// ulimit applies to the shell and is inherited by python3; -t caps
	// CPU seconds and -v caps virtual memory in KB.
	shellCmd := fmt.Sprintf("ulimit -t %d -v %d; exec python3 -c \"$SNIPPET\"", codeCPUSeconds, codeMemoryKB)
	cmd := exec.CommandContext(runCtx, "sh", "-c", shellCmd)
	cmd.Env = append(cmd.Environ(), "SNIPPET="+code)

	combined, runErr := cmd.CombinedOutput()
	output := string(combined)
	if len(output) > codeOutputLimit {
		output = output[:codeOutputLimit] + "\n[output truncated]"
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return nil, runCtx.Err()
		case errors.Is(runCtx.Err(), context.Canceled):
			return nil, context.Canceled
		case errors.As(runErr, &exitErr):
			exitCode = exitErr.ExitCode()
		default:
			return nil, fmt.Errorf("execute python: %w", runErr)
		}
	}

	if exitCode != 0 {
		return map[string]any{
			"status":    "error",
			"exit_code": exitCode,
			"output":    strings.TrimSpace(output),
		}, nil
	}
	return map[string]any{
		"status": "success",
		"output": strings.TrimSpace(output),
	}, nil
}
