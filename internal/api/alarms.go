/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/heimdall_wake/internal/models"
	"github.com/friendsincode/heimdall_wake/internal/stations"
	"github.com/friendsincode/heimdall_wake/internal/store"
)

type createAlarmRequest struct {
	Name   string  `json:"name"`
	Hour   int     `json:"hour"`
	Minute int     `json:"minute"`
	Second int     `json:"second"`
	Days   [7]bool `json:"days"`

	// Exactly one of the two source fields must be set.
	Station  string `json:"station,omitempty"`
	SongLink string `json:"song_link,omitempty"`
}

func (a *API) handleListAlarms(w http.ResponseWriter, r *http.Request) {
	alarms, err := a.store.Load()
	if err != nil {
		if errors.Is(err, store.ErrCorruptStore) {
			writeError(w, http.StatusInternalServerError, "corrupt_store")
			return
		}
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	if alarms == nil {
		alarms = []models.Alarm{}
	}
	writeJSON(w, http.StatusOK, alarms)
}

func (a *API) handleCreateAlarm(w http.ResponseWriter, r *http.Request) {
	var req createAlarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name_required")
		return
	}
	if (req.Station == "") == (req.SongLink == "") {
		writeError(w, http.StatusBadRequest, "station_or_song_link_required")
		return
	}

	trigger := models.TriggerTime{Hour: req.Hour, Minute: req.Minute, Second: req.Second}
	if err := trigger.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_trigger_time")
		return
	}

	var source models.Source
	if req.Station != "" {
		st, err := stations.Parse(req.Station)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown_station")
			return
		}
		source = models.RadioSource(st)
	} else {
		// The id the new alarm will get is the current list length; the
		// fetcher derives the predicted song path from it.
		nextID := uint(len(a.store.List()))
		path, title, err := a.fetcher.Fetch(r.Context(), nextID, req.SongLink)
		if err != nil {
			a.logger.Error().Err(err).Str("link", req.SongLink).Msg("song download failed")
			writeError(w, http.StatusBadGateway, "song_download_failed")
			return
		}
		source = models.FileSource(path, title)
	}

	alarm, err := a.store.Add(req.Name, trigger, req.Days, source)
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to add alarm")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	writeJSON(w, http.StatusCreated, alarm)
}

func (a *API) handleDeleteAlarm(w http.ResponseWriter, r *http.Request) {
	id, ok := alarmID(w, r)
	if !ok {
		return
	}

	if err := a.store.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alarm_not_found")
			return
		}
		a.logger.Error().Err(err).Uint("alarm_id", id).Msg("failed to delete alarm")
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleToggleAlarm(w http.ResponseWriter, r *http.Request) {
	id, ok := alarmID(w, r)
	if !ok {
		return
	}

	alarm, err := a.store.ToggleActive(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alarm_not_found")
			return
		}
		a.logger.Error().Err(err).Uint("alarm_id", id).Msg("failed to toggle alarm")
		writeError(w, http.StatusInternalServerError, "toggle_failed")
		return
	}
	writeJSON(w, http.StatusOK, alarm)
}

func (a *API) handleListStations(w http.ResponseWriter, r *http.Request) {
	type stationResponse struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}

	out := make([]stationResponse, 0, len(stations.All()))
	for _, st := range stations.All() {
		out = append(out, stationResponse{ID: string(st), URL: stations.Resolve(st)})
	}
	writeJSON(w, http.StatusOK, out)
}

func alarmID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_alarm_id")
		return 0, false
	}
	return uint(id), true
}
