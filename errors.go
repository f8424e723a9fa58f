package iconvault

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the jobs. Every kind is fatal for the batch it occurs in.
var (
	ErrToolFailed     = errors.New("external tool failed")
	ErrSourceNotFound = errors.New("source file not found")
	ErrDecode         = errors.New("source is not valid utf-8 text")
	ErrMalformed      = errors.New("malformed svg content")
	ErrWrite          = errors.New("unable to write destination")
	ErrInvalidJob     = errors.New("invalid job")
	ErrAssetExists    = errors.New("asset already exists")
)

// ToolError describes a non-zero exit of an external tool.
// It carries the tool's own diagnostic output verbatim.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	if e.ExitCode < 0 && e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Unwrap makes errors.Is(err, ErrToolFailed) hold for every tool failure,
// while the underlying exec error stays reachable.
func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrToolFailed}
	}
	return []error{ErrToolFailed, e.Err}
}
