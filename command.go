package iconvault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Job is a single tool invocation against a single file.
type Job interface {
	Run(ctx context.Context) error
	Source() string
	Dest() string
}

// CommandJob executes one external process. The tool specific jobs only
// differ in how they build the argument list.
type CommandJob struct {
	Tool string
	Src  string
	Dst  string
	Args []string
}

var _ Job = CommandJob{}

// Source returns the input path.
func (c CommandJob) Source() string { return c.Src }

// Dest returns the output path, or the input path for in-place tools.
func (c CommandJob) Dest() string {
	if c.Dst == "" {
		return c.Src
	}
	return c.Dst
}

// String returns the command line as it would be typed in a shell.
func (c CommandJob) String() string {
	return strings.Join(c.Args, " ")
}

// Run executes the command synchronously. A non-zero exit is reported as a *ToolError.
func (c CommandJob) Run(ctx context.Context) error {
	if len(c.Args) == 0 {
		return fmt.Errorf("%w: %s has an empty command line", ErrInvalidJob, c.Tool)
	}
	if err := checkPaths(c.Src, c.Dest()); err != nil {
		return err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		toolErr := &ToolError{
			Tool:     c.Tool,
			Args:     c.Args,
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			toolErr.ExitCode = exitErr.ExitCode()
		}
		if toolErr.Stderr == "" {
			toolErr.Stderr = stdout.String()
		}
		return toolErr
	}
	return nil
}

// checkPaths verifies the job's input exists and its output directory is in place.
func checkPaths(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, src)
		}
		return fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	dir := filepath.Dir(dst)
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: output directory %s: %v", ErrWrite, dir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrWrite, dir)
	}
	return nil
}
