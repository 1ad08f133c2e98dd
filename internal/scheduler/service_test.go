/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/heimdall_wake/internal/clock"
	"github.com/friendsincode/heimdall_wake/internal/events"
	"github.com/friendsincode/heimdall_wake/internal/models"
	"github.com/friendsincode/heimdall_wake/internal/playback"
	"github.com/friendsincode/heimdall_wake/internal/stations"
	"github.com/friendsincode/heimdall_wake/internal/store"
)

// stubPipeline records targets without spawning a process.
type stubPipeline struct {
	done chan struct{}
	once sync.Once
}

func (p *stubPipeline) Start(ctx context.Context) error { return nil }
func (p *stubPipeline) Done() <-chan struct{}           { return p.done }
func (p *stubPipeline) Stop() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

type stubLauncher struct {
	mu      sync.Mutex
	targets []string
}

func (l *stubLauncher) launch(target string, _ zerolog.Logger) playback.Pipeline {
	l.mu.Lock()
	l.targets = append(l.targets, target)
	l.mu.Unlock()
	return &stubPipeline{done: make(chan struct{})}
}

func (l *stubLauncher) launched() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.targets...)
}

// wednesday 08:30:00
var matchInstant = time.Date(2025, 3, 5, 8, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, instant time.Time) (*Service, *store.Store, *stubLauncher, *events.Bus) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "alarms.json")
	bus := events.NewBus()
	st := store.New(path, bus, zerolog.Nop())
	launcher := &stubLauncher{}
	controller := playback.NewController(launcher.launch, bus, zerolog.Nop())
	svc := New(st, controller, clock.FixedClock{Time: instant}, bus, time.Second, zerolog.Nop())
	return svc, st, launcher, bus
}

func addWednesdayAlarm(t *testing.T, st *store.Store) models.Alarm {
	t.Helper()
	alarm, err := st.Add("midweek",
		models.TriggerTime{Hour: 8, Minute: 30, Second: 0},
		[7]bool{false, false, true, false, false, false, false},
		models.RadioSource(stations.FranceInter))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return alarm
}

func TestTickStartsPlaybackOnMatch(t *testing.T) {
	svc, st, launcher, bus := newTestService(t, matchInstant)
	fired := bus.Subscribe(events.EventAlarmFired)
	addWednesdayAlarm(t, st)

	svc.Tick(context.Background())

	targets := launcher.launched()
	if len(targets) != 1 {
		t.Fatalf("expected one playback start, got %v", targets)
	}
	if targets[0] != stations.Resolve(stations.FranceInter) {
		t.Errorf("unexpected playback target %s", targets[0])
	}

	select {
	case payload := <-fired:
		if payload["name"] != "midweek" {
			t.Errorf("unexpected fired payload %v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no alarm.fired event published")
	}
}

func TestTickOffInstantDoesNothing(t *testing.T) {
	svc, st, launcher, _ := newTestService(t, matchInstant.Add(time.Second))
	addWednesdayAlarm(t, st)

	svc.Tick(context.Background())

	if targets := launcher.launched(); len(targets) != 0 {
		t.Fatalf("expected no playback, got %v", targets)
	}
}

func TestTickIgnoresInactiveAlarm(t *testing.T) {
	svc, st, launcher, _ := newTestService(t, matchInstant)
	alarm := addWednesdayAlarm(t, st)
	if _, err := st.ToggleActive(alarm.ID); err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}

	svc.Tick(context.Background())

	if targets := launcher.launched(); len(targets) != 0 {
		t.Fatalf("expected no playback, got %v", targets)
	}
}

func TestTickPicksUpExternallyModifiedFile(t *testing.T) {
	svc, st, launcher, _ := newTestService(t, matchInstant)
	if _, err := st.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Another process writes an alarm between ticks; the per-tick reload
	// must see it without a restart.
	external := `[{"id":0,"name":"external","hour":8,"minute":30,"second":0,"active":true,"is_radio":true,"station":"RTL","song_path":"","song_title":"","days":[false,false,true,false,false,false,false]}]`
	if err := os.WriteFile(st.Path(), []byte(external), 0o644); err != nil {
		t.Fatalf("external write: %v", err)
	}

	svc.Tick(context.Background())

	targets := launcher.launched()
	if len(targets) != 1 || targets[0] != stations.Resolve(stations.RTL) {
		t.Fatalf("external alarm did not fire, targets %v", targets)
	}
}

func TestTickFailsSoftOnCorruptStore(t *testing.T) {
	svc, st, launcher, _ := newTestService(t, matchInstant)
	if _, err := st.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := os.WriteFile(st.Path(), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The corrupt tick matches nothing, and the loop keeps running.
	svc.Tick(context.Background())
	if targets := launcher.launched(); len(targets) != 0 {
		t.Fatalf("expected no playback on corrupt tick, got %v", targets)
	}

	// The next structural change works against a clean file.
	addWednesdayAlarm(t, st)
	svc.Tick(context.Background())
	if targets := launcher.launched(); len(targets) != 1 {
		t.Fatalf("store did not recover, targets %v", targets)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	svc, _, _, _ := newTestService(t, matchInstant)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
