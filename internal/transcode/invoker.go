package transcode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Invoker spawns the external ffmpeg process for built specs.
type Invoker struct {
	// Path to the ffmpeg binary. If empty, "ffmpeg" is looked up in PATH.
	Path string

	// Stdout receives the transcoded bytes when the destination is the
	// stdout sentinel. If nil, os.Stdout is used.
	Stdout io.Writer
}

// NewInvoker returns an Invoker for the given ffmpeg path.
func NewInvoker(path string) *Invoker {
	if path == "" {
		path = "ffmpeg"
	}
	return &Invoker{Path: path}
}

// Available checks whether the ffmpeg binary is executable. Callers check
// this once before any network activity begins.
func (inv *Invoker) Available() bool {
	_, err := exec.LookPath(inv.Path)
	return err == nil
}

// ExitError reports a nonzero ffmpeg exit together with the full captured
// standard-error stream; ffmpeg diagnostics are often only meaningful
// whole, so nothing is truncated.
type ExitError struct {
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("ffmpeg failed: %s", e.Stderr)
	}
	return fmt.Sprintf("ffmpeg failed: %v", e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Invoke runs ffmpeg for the spec, blocking until the child exits. The
// child's standard output is suppressed and standard error captured. On
// success with a stdout destination, the staging file is streamed to the
// real standard output and removed.
func (inv *Invoker) Invoke(ctx context.Context, spec *Spec) error {
	cmd := exec.CommandContext(ctx, inv.Path, spec.Args()...)

	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if spec.Destination == StdoutTarget {
			_ = os.Remove(spec.Target)
		}
		return &ExitError{Stderr: stderr.String(), Err: err}
	}

	if spec.Destination == StdoutTarget {
		defer os.Remove(spec.Target)

		staging, err := os.Open(spec.Target)
		if err != nil {
			return err
		}
		defer staging.Close()

		out := inv.Stdout
		if out == nil {
			out = os.Stdout
		}
		if _, err := io.Copy(out, staging); err != nil {
			return err
		}
	}
	return nil
}
