/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/friendsincode/heimdall_wake/internal/playback"
)

type startPlaybackRequest struct {
	Kind string `json:"kind"` // "radio" or "file"
	Ref  string `json:"ref"`  // station id or local path
}

func (a *API) handlePlaybackStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.controller.Status())
}

func (a *API) handleStartPlayback(w http.ResponseWriter, r *http.Request) {
	var req startPlaybackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	var kind playback.Kind
	switch req.Kind {
	case string(playback.KindRadio):
		kind = playback.KindRadio
	case string(playback.KindFile):
		kind = playback.KindFile
	default:
		writeError(w, http.StatusBadRequest, "invalid_kind")
		return
	}
	if req.Ref == "" {
		writeError(w, http.StatusBadRequest, "ref_required")
		return
	}

	// The session must outlive this request, so it is started on a
	// background context rather than r.Context().
	if err := a.controller.Start(context.Background(), kind, req.Ref); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "playback_failed")
		return
	}

	writeJSON(w, http.StatusOK, a.controller.Status())
}

func (a *API) handleStopPlayback(w http.ResponseWriter, r *http.Request) {
	a.controller.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	if a.historySvc == nil {
		writeError(w, http.StatusNotFound, "history_disabled")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	records, err := a.historySvc.Recent(r.Context(), limit)
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to query history")
		writeError(w, http.StatusInternalServerError, "history_failed")
		return
	}
	writeJSON(w, http.StatusOK, records)
}
