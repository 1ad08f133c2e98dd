/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/heimdall_wake/internal/events"
	"github.com/friendsincode/heimdall_wake/internal/history"
	"github.com/friendsincode/heimdall_wake/internal/playback"
	"github.com/friendsincode/heimdall_wake/internal/songs"
	"github.com/friendsincode/heimdall_wake/internal/store"
)

// API exposes HTTP handlers for UI collaborators.
type API struct {
	store      *store.Store
	controller *playback.Controller
	fetcher    *songs.Fetcher
	historySvc *history.Service
	bus        *events.Bus
	logger     zerolog.Logger
}

// New creates the API handler set. historySvc may be nil when history is
// disabled.
func New(st *store.Store, controller *playback.Controller, fetcher *songs.Fetcher, historySvc *history.Service, bus *events.Bus, logger zerolog.Logger) *API {
	return &API{
		store:      st,
		controller: controller,
		fetcher:    fetcher,
		historySvc: historySvc,
		bus:        bus,
		logger:     logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts all v1 endpoints.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/alarms", func(r chi.Router) {
		r.Get("/", a.handleListAlarms)
		r.Post("/", a.handleCreateAlarm)
		r.Delete("/{id}", a.handleDeleteAlarm)
		r.Post("/{id}/toggle", a.handleToggleAlarm)
	})

	r.Get("/stations", a.handleListStations)

	r.Route("/playback", func(r chi.Router) {
		r.Get("/", a.handlePlaybackStatus)
		r.Post("/start", a.handleStartPlayback)
		r.Post("/stop", a.handleStopPlayback)
	})

	r.Get("/history", a.handleHistory)

	return r
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
