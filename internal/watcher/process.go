package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// Upper bound on waiting for output pipes after the build process was killed
const killWaitDelay = time.Second

// ProcessBuilder runs each build as a child process, so cancelling a build
// kills everything it was doing, including in-flight fetches.
type ProcessBuilder struct {
	Path   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

// NewSelfBuilder re-executes the running binary with args.
func NewSelfBuilder(args ...string) (*ProcessBuilder, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	return &ProcessBuilder{
		Path:   exe,
		Args:   args,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

func (b *ProcessBuilder) Start(ctx context.Context) (Build, error) {
	ctx, cancel := context.WithCancel(ctx)

	cmd := exec.CommandContext(ctx, b.Path, b.Args...)
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr
	cmd.WaitDelay = killWaitDelay

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", b.Path, err)
	}

	return &processBuild{cmd: cmd, cancel: cancel}, nil
}

type processBuild struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

func (p *processBuild) Wait() error {
	defer p.cancel()
	return p.cmd.Wait()
}

// Cancel kills the process; there is no graceful shutdown.
func (p *processBuild) Cancel() {
	p.cancel()
}
