/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package scheduler drives the alarm check loop: one tick per second,
// reload the store, take a clock reading, match, and hand a hit to the
// playback controller.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/heimdall_wake/internal/clock"
	"github.com/friendsincode/heimdall_wake/internal/events"
	"github.com/friendsincode/heimdall_wake/internal/models"
	"github.com/friendsincode/heimdall_wake/internal/playback"
	"github.com/friendsincode/heimdall_wake/internal/store"
	"github.com/friendsincode/heimdall_wake/internal/telemetry"
)

// Service wires clock ticks to the matcher and the matcher to playback. It
// owns no state beyond wiring.
type Service struct {
	store      *store.Store
	controller *playback.Controller
	clk        clock.Clock
	bus        *events.Bus
	logger     zerolog.Logger
	interval   time.Duration
}

// New constructs the scheduler service.
func New(st *store.Store, controller *playback.Controller, clk clock.Clock, bus *events.Bus, interval time.Duration, logger zerolog.Logger) *Service {
	if interval <= 0 {
		interval = time.Second
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Service{
		store:      st,
		controller: controller,
		clk:        clk,
		bus:        bus,
		logger:     logger.With().Str("component", "scheduler").Logger(),
		interval:   interval,
	}
}

// Run executes the tick loop until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("alarm check loop started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("alarm check loop stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one alarm check. The store is reloaded from disk every tick
// so edits made by other processes are honored; the cost is accepted and
// deliberate. Load, match, and start run strictly in sequence on the
// calling goroutine.
func (s *Service) Tick(ctx context.Context) {
	telemetry.SchedulerTicksTotal.Inc()

	alarms, err := s.store.Load()
	if err != nil {
		telemetry.StoreErrorsTotal.WithLabelValues("load").Inc()
		if errors.Is(err, store.ErrCorruptStore) {
			// Fail soft: the bad file is quarantined, this tick just has no
			// alarms to match.
			s.logger.Error().Err(err).Msg("alarm file corrupt, continuing with empty list")
		} else {
			s.logger.Error().Err(err).Msg("failed to load alarms")
			return
		}
	}

	now := s.clk.Now()
	reading := clock.ReadingAt(now)
	weekday := clock.WeekdayIndex(now)

	alarm, ok := FirstMatch(reading, weekday, alarms)
	if !ok {
		return
	}

	telemetry.AlarmMatchesTotal.Inc()
	s.logger.Info().
		Uint("alarm_id", alarm.ID).
		Str("name", alarm.Name).
		Str("trigger", alarm.Trigger.String()).
		Msg("alarm fired")

	kind, ref := playbackRef(alarm.Source)
	if s.bus != nil {
		s.bus.Publish(events.EventAlarmFired, events.Payload{
			"alarm_id": alarm.ID,
			"name":     alarm.Name,
			"kind":     string(kind),
			"ref":      ref,
		})
	}

	if err := s.controller.Start(ctx, kind, ref); err != nil {
		// Already reported by the controller; nothing more to do this tick.
		s.logger.Warn().Err(err).Uint("alarm_id", alarm.ID).Msg("alarm playback did not start")
	}
}

// playbackRef maps an alarm source to the controller's (kind, ref) pair.
func playbackRef(src models.Source) (playback.Kind, string) {
	if src.Kind == models.SourceRadio {
		return playback.KindRadio, string(src.Station)
	}
	return playback.KindFile, src.SongPath
}
