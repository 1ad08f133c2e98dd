/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playback

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pipeline is one audio process playing a single target (local path or
// stream URL). Implementations own the underlying decode/output primitive;
// the controller only starts, stops, and observes completion.
type Pipeline interface {
	Start(ctx context.Context) error
	// Done is closed when the underlying process has exited, whether from
	// Stop, end-of-stream, or a decode error.
	Done() <-chan struct{}
	Stop() error
}

// Launcher builds a pipeline for a target. Swapped for a fake in tests.
type Launcher func(target string, logger zerolog.Logger) Pipeline

// NewProcessLauncher returns a Launcher that plays targets through an
// external player binary (ffplay by default).
func NewProcessLauncher(bin string, args []string) Launcher {
	return func(target string, logger zerolog.Logger) Pipeline {
		return &processPipeline{bin: bin, args: args, target: target, logger: logger}
	}
}

// processPipeline runs the player as a child process.
type processPipeline struct {
	bin    string
	args   []string
	target string
	logger zerolog.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{} // signals when the process has exited
}

// Start launches the player process.
func (p *processPipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("pipeline already started")
	}

	args := append(append([]string(nil), p.args...), p.target)
	cmd := exec.CommandContext(ctx, p.bin, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}

	p.cmd = cmd
	p.done = make(chan struct{})

	go func(done chan struct{}, c *exec.Cmd) {
		err := c.Wait()
		close(done)
		if err != nil {
			p.logger.Debug().Err(err).Str("target", p.target).Msg("player process exited")
		} else {
			p.logger.Info().Str("target", p.target).Msg("player process finished")
		}
	}(p.done, cmd)

	return nil
}

// Done reports process completion. Only valid after a successful Start.
func (p *processPipeline) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Stop terminates the running process: interrupt first, kill after a grace
// period, then wait for the exit.
func (p *processPipeline) Stop() error {
	p.mu.Lock()
	cmd := p.cmd
	done := p.done
	p.mu.Unlock()

	if cmd == nil || done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	default:
	}

	if cmd.Process != nil {
		_ = cmd.Process.Signal(os.Interrupt)
	}

	select {
	case <-time.After(5 * time.Second):
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
	case <-done:
	}

	return nil
}
