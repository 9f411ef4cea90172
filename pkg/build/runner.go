package build

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lingo-build/lingo/pkg/errors"
)

// Command is an external program invocation.
type Command struct {
	Name string
	Args []string
	Dir  string   // working directory; empty means the current one
	Env  []string // extra KEY=value pairs on top of the environment
}

// String renders the command line.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// stderrTail bounds the standard error kept for error reports.
const stderrTail = 4 << 10

// ExecRunner runs commands as child processes. Output is copied to Stdout
// and Stderr while the tail of standard error is kept for the error report.
type ExecRunner struct {
	Stdout io.Writer // nil means os.Stdout
	Stderr io.Writer // nil means os.Stderr
	Logger *log.Logger
}

// Run starts cmd and waits for it. A non-zero exit or a failure to start is
// reported as COMMAND_FAILED wrapping an [errors.CommandError].
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	stdout, stderr := r.Stdout, r.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if r.Logger != nil {
		r.Logger.Debug("running command", "cmd", cmd.String(), "dir", cmd.Dir)
	}

	tail := &tailBuffer{max: stderrTail}
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.Stdout = stdout
	c.Stderr = io.MultiWriter(stderr, tail)

	err := c.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	cmdErr := &errors.CommandError{Command: cmd.String(), ExitCode: -1, Stderr: tail.String()}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	return errors.Wrap(errors.ErrCodeCommandFailed, cmdErr, "%s", cmd.Name)
}

var _ Runner = (*ExecRunner)(nil)

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
