package ffmpeg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates a required binary (ffmpeg or ffprobe) could not be located.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrTimeout is returned when a subprocess exceeds its wall-clock budget and is killed.
var ErrTimeout = errors.New("ffmpeg did not exit within timeout")

// ExitError reports a subprocess that ran to completion with a non-zero exit code.
// Stderr holds the captured diagnostic output, unmodified.
type ExitError struct {
	Tool   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	tool := e.Tool
	if tool == "" {
		tool = binaryName
	}
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s exited with code %d", tool, e.Code)
	}
	return fmt.Sprintf("%s exited with code %d:\n%s", tool, e.Code, stderr)
}
