/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package history records alarm firings and playback outcomes so the UI can
// answer "did my alarm go off this morning".
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/heimdall_wake/internal/events"
)

// Record is one firing or playback event.
type Record struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Event     string    `gorm:"type:varchar(32);index" json:"event"`
	AlarmName string    `gorm:"type:varchar(255)" json:"alarm_name,omitempty"`
	Kind      string    `gorm:"type:varchar(8)" json:"kind,omitempty"`
	Target    string    `json:"target,omitempty"`
	Detail    string    `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Migrate creates the history schema.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("migrate history schema: %w", err)
	}
	return nil
}

// Service subscribes to events and stores history records.
type Service struct {
	db     *gorm.DB
	bus    *events.Bus
	logger zerolog.Logger
}

// NewService creates a history service.
func NewService(conn *gorm.DB, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		db:     conn,
		bus:    bus,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Start consumes events until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	fired := s.bus.Subscribe(events.EventAlarmFired)
	started := s.bus.Subscribe(events.EventPlaybackStarted)
	stopped := s.bus.Subscribe(events.EventPlaybackStopped)
	failed := s.bus.Subscribe(events.EventPlaybackFailed)
	corrupt := s.bus.Subscribe(events.EventStoreCorrupt)

	defer func() {
		s.bus.Unsubscribe(events.EventAlarmFired, fired)
		s.bus.Unsubscribe(events.EventPlaybackStarted, started)
		s.bus.Unsubscribe(events.EventPlaybackStopped, stopped)
		s.bus.Unsubscribe(events.EventPlaybackFailed, failed)
		s.bus.Unsubscribe(events.EventStoreCorrupt, corrupt)
	}()

	s.logger.Info().Msg("history service started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("history service stopping")
			return
		case payload := <-fired:
			s.record(ctx, events.EventAlarmFired, payload)
		case payload := <-started:
			s.record(ctx, events.EventPlaybackStarted, payload)
		case payload := <-stopped:
			s.record(ctx, events.EventPlaybackStopped, payload)
		case payload := <-failed:
			s.record(ctx, events.EventPlaybackFailed, payload)
		case payload := <-corrupt:
			s.record(ctx, events.EventStoreCorrupt, payload)
		}
	}
}

// Recent returns the newest records, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var records []Record
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return records, nil
}

func (s *Service) record(ctx context.Context, event events.EventType, payload events.Payload) {
	rec := Record{
		ID:        uuid.NewString(),
		Event:     string(event),
		CreatedAt: time.Now(),
	}
	if name, ok := payload["name"].(string); ok {
		rec.AlarmName = name
	}
	if kind, ok := payload["kind"].(string); ok {
		rec.Kind = kind
	}
	if target, ok := payload["target"].(string); ok {
		rec.Target = target
	}
	if reason, ok := payload["reason"].(string); ok {
		rec.Detail = reason
	}
	if errMsg, ok := payload["error"].(string); ok {
		rec.Detail = errMsg
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		s.logger.Warn().Err(err).Str("event", rec.Event).Msg("failed to store history record")
	}
}
