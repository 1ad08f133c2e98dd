/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package playback guards the single logical "now playing" slot. Starting a
// session fully retires the previous one first: the old worker is signalled
// and joined before the new pipeline launches, so two pipelines never play
// over each other during a handoff.
package playback

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/heimdall_wake/internal/events"
	"github.com/friendsincode/heimdall_wake/internal/stations"
	"github.com/friendsincode/heimdall_wake/internal/telemetry"
)

// Kind discriminates the two playback channels.
type Kind string

const (
	KindRadio Kind = "radio"
	KindFile  Kind = "file"
)

// State of the controller's slot.
type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StatePlaying  State = "playing"
)

// Status is a snapshot of the slot for callers (API, logs).
type Status struct {
	State     State     `json:"state"`
	Kind      Kind      `json:"kind,omitempty"`
	Target    string    `json:"target,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// session is one running audio worker. It is identified by its stop channel;
// the controller holds the only reference.
type session struct {
	id        uuid.UUID
	kind      Kind
	target    string
	startedAt time.Time
	pipeline  Pipeline
	stop      chan struct{} // closed to instruct the worker to halt
	done      chan struct{} // closed when the worker has fully exited
	stopOnce  sync.Once
}

// Controller owns the playback slot.
type Controller struct {
	launch Launcher
	bus    *events.Bus
	logger zerolog.Logger

	// startMu serializes Start/Stop so overlapping callers cannot race a
	// retire against a launch.
	startMu sync.Mutex

	mu      sync.Mutex
	current *session
	state   State
}

// NewController creates the controller.
func NewController(launch Launcher, bus *events.Bus, logger zerolog.Logger) *Controller {
	return &Controller{
		launch: launch,
		bus:    bus,
		logger: logger.With().Str("component", "playback").Logger(),
		state:  StateIdle,
	}
}

// Start resolves ref for the given kind and begins a new session. Any
// running session, of either kind, is stopped and joined first.
//
// For KindRadio, ref is a station identifier resolved through the station
// directory. For KindFile, ref is a local path that must already exist.
func (c *Controller) Start(ctx context.Context, kind Kind, ref string) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.retire()

	target, err := c.resolve(kind, ref)
	if err != nil {
		c.reportFailure(kind, ref, err)
		return err
	}

	sess := &session{
		id:        uuid.New(),
		kind:      kind,
		target:    target,
		startedAt: time.Now(),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	sess.pipeline = c.launch(target, c.logger)

	c.mu.Lock()
	c.current = sess
	c.state = StateStarting
	c.mu.Unlock()

	if err := sess.pipeline.Start(ctx); err != nil {
		c.mu.Lock()
		c.current = nil
		c.state = StateIdle
		c.mu.Unlock()
		close(sess.done)
		c.reportFailure(kind, ref, err)
		return fmt.Errorf("start %s session: %w", kind, err)
	}

	c.mu.Lock()
	c.state = StatePlaying
	c.mu.Unlock()

	telemetry.PlaybackStartsTotal.WithLabelValues(string(kind)).Inc()
	c.logger.Info().Str("kind", string(kind)).Str("target", target).Str("session", sess.id.String()).Msg("playback started")
	if c.bus != nil {
		c.bus.Publish(events.EventPlaybackStarted, events.Payload{
			"session_id": sess.id.String(),
			"kind":       string(kind),
			"target":     target,
		})
	}

	go c.worker(sess)
	return nil
}

// Stop retires the current session, if any, and waits for its worker to
// fully exit before returning.
func (c *Controller) Stop() {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	c.retire()
}

// Status returns the current slot snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := Status{State: c.state}
	if c.current != nil {
		status.Kind = c.current.kind
		status.Target = c.current.target
		status.SessionID = c.current.id.String()
		status.StartedAt = c.current.startedAt
	}
	return status
}

// retire detaches the current session, signals it, and joins its worker.
// Callers hold startMu.
func (c *Controller) retire() {
	c.mu.Lock()
	sess := c.current
	c.current = nil
	c.state = StateIdle
	c.mu.Unlock()

	if sess == nil {
		return
	}

	sess.stopOnce.Do(func() { close(sess.stop) })
	<-sess.done
}

// worker runs for the lifetime of one session: it waits for either a stop
// instruction or pipeline completion, tears the pipeline down, and releases
// the slot.
func (c *Controller) worker(sess *session) {
	defer close(sess.done)

	select {
	case <-sess.stop:
		if err := sess.pipeline.Stop(); err != nil {
			c.logger.Warn().Err(err).Str("session", sess.id.String()).Msg("pipeline stop failed")
		}
	case <-sess.pipeline.Done():
		// End of stream or decode error; nothing left to tear down.
	}

	c.mu.Lock()
	if c.current == sess {
		c.current = nil
		c.state = StateIdle
	}
	c.mu.Unlock()

	c.logger.Debug().Str("session", sess.id.String()).Msg("playback session ended")
	if c.bus != nil {
		c.bus.Publish(events.EventPlaybackStopped, events.Payload{
			"session_id": sess.id.String(),
			"kind":       string(sess.kind),
		})
	}
}

// resolve turns a source ref into a concrete playable target.
func (c *Controller) resolve(kind Kind, ref string) (string, error) {
	switch kind {
	case KindRadio:
		st, err := stations.Parse(ref)
		if err != nil {
			return "", err
		}
		return stations.Resolve(st), nil
	case KindFile:
		if _, err := os.Stat(ref); err != nil {
			return "", fmt.Errorf("open alarm audio file: %w", err)
		}
		return ref, nil
	default:
		return "", fmt.Errorf("unknown playback kind %q", kind)
	}
}

func (c *Controller) reportFailure(kind Kind, ref string, err error) {
	telemetry.PlaybackFailuresTotal.WithLabelValues(string(kind)).Inc()
	c.logger.Error().Err(err).Str("kind", string(kind)).Str("ref", ref).Msg("playback failed")
	if c.bus != nil {
		c.bus.Publish(events.EventPlaybackFailed, events.Payload{
			"kind":   string(kind),
			"ref":    ref,
			"reason": err.Error(),
		})
	}
}
