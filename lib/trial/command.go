package trial

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/duke-git/lancet/v2/strutil"
	"github.com/unclesp1d3r/keysmith/appstate"
)

// TargetEnv is the environment variable carrying the target identifier to a trial command.
const TargetEnv = "KEYSMITH_TARGET"

const (
	stderrTail = 256
	waitDelay  = time.Second
)

var (
	// ErrCommandNotFound is returned when the trial executable cannot be located.
	ErrCommandNotFound = errors.New("trial command not found")
	// ErrTrialTimeout is returned when a single trial exceeds its deadline.
	ErrTrialTimeout = errors.New("credential trial timed out")
	// ErrUnexpectedExit is returned when a trial command exits with an unrecognized code.
	ErrUnexpectedExit = errors.New("trial command exited unexpectedly")
)

// Command tries candidates by running an external executable once per candidate.
// The target is passed in TargetEnv and the candidate on stdin; the exit code carries the verdict.
type Command struct {
	Path    string
	Args    []string
	Timeout time.Duration
}

// NewCommand returns a Command for path with the given arguments.
func NewCommand(path string, timeout time.Duration, args ...string) *Command {
	return &Command{Path: path, Args: args, Timeout: timeout}
}

// Available checks that the executable exists.
func (c *Command) Available(context.Context) error {
	_, err := c.resolve()
	return err
}

// Try runs the command for one candidate.
func (c *Command) Try(ctx context.Context, target, candidate string) (bool, error) {
	bin, err := c.resolve()
	if err != nil {
		return false, err
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, bin, c.Args...)
	cmd.Env = append(os.Environ(), TargetEnv+"="+target)
	cmd.Stdin = strings.NewReader(candidate + "\n")
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err = cmd.Run()
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if runCtx.Err() != nil {
		return false, fmt.Errorf("%w after %s", ErrTrialTimeout, c.Timeout)
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return false, fmt.Errorf("running trial command: %w", err)
		}

		exitCode = exitErr.ExitCode()
	}

	info := ClassifyExitCode(exitCode)
	if appstate.State.ExtraDebugging {
		appstate.Logger.Debug("Trial command finished", "target", target, "exit_code", exitCode, "status", info.Status)
	}

	if !info.Attempted {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > stderrTail {
			msg = msg[len(msg)-stderrTail:]
		}

		return false, fmt.Errorf("%w: code %d: %s", ErrUnexpectedExit, exitCode, msg)
	}

	return info.Match, nil
}

// resolve finds the executable either at an explicit path or on $PATH.
func (c *Command) resolve() (string, error) {
	if strutil.IsBlank(c.Path) {
		return "", ErrCommandNotFound
	}

	if strings.ContainsRune(c.Path, os.PathSeparator) {
		if !fileutil.IsExist(c.Path) {
			return "", fmt.Errorf("%w: %s", ErrCommandNotFound, c.Path)
		}

		info, err := os.Stat(c.Path)
		if err != nil || info.IsDir() || info.Mode()&0o111 == 0 {
			return "", fmt.Errorf("%w: %s is not executable", ErrCommandNotFound, c.Path)
		}

		return c.Path, nil
	}

	bin, err := exec.LookPath(c.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCommandNotFound, err)
	}

	return bin, nil
}
