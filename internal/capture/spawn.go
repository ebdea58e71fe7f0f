package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Spawner starts a producer and hands back its standard output.
type Spawner interface {
	Spawn(ctx context.Context, argv []string) (io.ReadCloser, error)
}

// DefaultKillAfter is how long Close waits for a producer to exit on its own
// before killing it.
const DefaultKillAfter = 2 * time.Second

// ExecSpawner runs producers as child processes.
type ExecSpawner struct {
	// Stderr receives the producer's standard error. Nil discards it.
	Stderr io.Writer
	// KillAfter overrides DefaultKillAfter when positive.
	KillAfter time.Duration
}

// Spawn starts argv with its stdout connected to a fresh pipe and returns the
// pipe's read end. Only stdin, stdout and stderr are inherited by the child;
// os/exec opens every other descriptor close-on-exec.
func (s ExecSpawner) Spawn(ctx context.Context, argv []string) (io.ReadCloser, error) {
	if len(argv) == 0 {
		return nil, errors.New("spawn: empty command")
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("spawn: create pipe: %w", err)
	}

	killAfter := s.KillAfter
	if killAfter <= 0 {
		killAfter = DefaultKillAfter
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = pw
	cmd.Stderr = s.Stderr
	// Descendants of the producer may keep stderr open after it exits.
	cmd.WaitDelay = killAfter
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("spawn %s: %w", argv[0], err)
	}
	// The child owns its copy of the write end now.
	pw.Close()

	return &producerStream{File: pr, cmd: cmd, killAfter: killAfter}, nil
}

// producerStream is the read end of a producer's stdout. Close releases the
// pipe and reaps the child, returning within twice killAfter even when the
// producer's descendants outlive it.
type producerStream struct {
	*os.File
	cmd       *exec.Cmd
	killAfter time.Duration

	once sync.Once
	err  error
}

func (p *producerStream) Close() error {
	p.once.Do(func() {
		closeErr := p.File.Close()

		done := make(chan error, 1)
		go func() { done <- p.cmd.Wait() }()

		var waitErr error
		select {
		case waitErr = <-done:
		case <-time.After(p.killAfter):
			_ = p.cmd.Process.Kill()
			waitErr = <-done
		}

		if closeErr != nil {
			p.err = fmt.Errorf("close producer pipe: %w", closeErr)
		} else if waitErr != nil {
			p.err = fmt.Errorf("producer %s: %w", p.cmd.Path, waitErr)
		}
	})
	return p.err
}
