package agent

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// Stream iterates the messages of one agent run. Next returns io.EOF once the
// run has ended cleanly. Close stops the run and is safe to call more than
// once.
type Stream interface {
	Next(ctx context.Context) (Message, error)
	Close() error
}

// processStream scans stream-json lines from an agent subprocess. Blank and
// non-JSON lines are skipped; the process is reaped exactly once.
type processStream struct {
	scanner *bufio.Scanner
	closer  io.Closer
	kill    func()
	finish  func() error

	finishOnce sync.Once
	finishErr  error
}

func newProcessStream(r io.ReadCloser, kill func(), finish func() error) *processStream {
	scanner := bufio.NewScanner(r)
	// Tool results can produce very long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	return &processStream{scanner: scanner, closer: r, kill: kill, finish: finish}
}

func (s *processStream) Next(ctx context.Context) (Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := s.scanner.Err(); err != nil {
				return nil, fmt.Errorf("read agent stream: %w", err)
			}
			if err := s.reap(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}

		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		msg, err := ParseMessage(line)
		if err != nil {
			// The CLI occasionally interleaves plain-text output.
			continue
		}
		return msg, nil
	}
}

func (s *processStream) reap() error {
	s.finishOnce.Do(func() {
		if s.finish != nil {
			s.finishErr = s.finish()
		}
	})
	return s.finishErr
}

func (s *processStream) Close() error {
	if s.kill != nil {
		s.kill()
	}
	s.closer.Close()
	s.reap()
	return nil
}

var _ Stream = (*processStream)(nil)
