package validate

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/SvenSonnborn/e-invoice-processor/internal/logger"
	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
)

// MaxToolOutput caps the combined stdout/stderr captured from any external
// validation tool.
const MaxToolOutput = 10 << 20 // 10MB

// Command describes one external tool invocation.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// RunResult is the outcome of an external tool invocation. Output holds the
// combined stdout/stderr, truncated at MaxToolOutput.
type RunResult struct {
	Output   []byte
	ExitCode int
	TimedOut bool
}

// Runner executes external validation tools. The production implementation
// shells out; tests substitute an in-memory fake so validation logic never
// hard-codes subprocess calls.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*RunResult, error)
}

// ExecRunner runs commands via os/exec with a bounded timeout and output
// buffer. A timeout or non-zero exit is reported in the result, not as an
// error; errors are reserved for tools that cannot be located or started.
type ExecRunner struct{}

// NewExecRunner creates the production runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command. The spawned process is killed when the timeout
// elapses; whatever output was captured up to that point is returned.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*RunResult, error) {
	path, err := exec.LookPath(cmd.Name)
	if err != nil {
		return nil, model.NewConfigurationError(cmd.Name, "executable not found", err)
	}

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := logger.WithComponent("tool-runner")
	log.Debug().Str("tool", path).Strs("args", cmd.Args).Msg("running external tool")

	out := newCappedBuffer(MaxToolOutput)
	proc := exec.CommandContext(ctx, path, cmd.Args...)
	proc.Stdout = out
	proc.Stderr = out

	runErr := proc.Run()

	result := &RunResult{Output: out.Bytes()}
	if ctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		log.Warn().Str("tool", path).Dur("timeout", timeout).Msg("external tool timed out")
		return result, nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, model.NewExternalToolError(cmd.Name, "failed to start", nil, runErr)
	}
	return result, nil
}

// cappedBuffer collects writes up to a fixed limit and silently discards the
// rest, so a runaway tool cannot exhaust memory.
type cappedBuffer struct {
	limit int
	buf   []byte
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if remaining := b.limit - len(b.buf); remaining > 0 {
		if len(p) > remaining {
			b.buf = append(b.buf, p[:remaining]...)
		} else {
			b.buf = append(b.buf, p...)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) Bytes() []byte {
	return b.buf
}

// outputLines splits tool output into trimmed, de-duplicated, non-empty
// lines, preserving first-seen order.
func outputLines(output []byte) []string {
	seen := make(map[string]struct{})
	var lines []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}
	return lines
}
