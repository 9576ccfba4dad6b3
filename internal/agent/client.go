package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBin is the agent CLI looked up on PATH when no binary is configured.
const DefaultBin = "claude"

// UnavailableError reports that the agent CLI could not be started.
type UnavailableError struct {
	Bin string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("agent binary %q unavailable: %v", e.Bin, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err means the agent CLI could not start.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// Client runs prompts through a local agent CLI that speaks stream-json on
// stdout.
type Client struct {
	bin string
}

// NewClient returns a client for the given agent binary.
func NewClient(bin string) *Client {
	if bin == "" {
		bin = DefaultBin
	}
	return &Client{bin: bin}
}

// Query starts one agent run and returns its event stream. The subprocess is
// killed when ctx is cancelled or the stream is closed.
func (c *Client) Query(ctx context.Context, prompt string, opts Options) (Stream, error) {
	cmd := exec.CommandContext(ctx, c.bin, opts.args(prompt)...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &UnavailableError{Bin: c.bin, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &UnavailableError{Bin: c.bin, Err: err}
	}

	kill := func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	}
	finish := func() error {
		err := cmd.Wait()
		if err == nil {
			return nil
		}
		if detail := stderrTail(&stderr); detail != "" {
			return fmt.Errorf("agent exited: %w (%s)", err, detail)
		}
		return fmt.Errorf("agent exited: %w", err)
	}
	return newProcessStream(stdout, kill, finish), nil
}

func stderrTail(buf *bytes.Buffer) string {
	detail := strings.TrimSpace(buf.String())
	if len(detail) > 512 {
		detail = detail[len(detail)-512:]
	}
	return detail
}
