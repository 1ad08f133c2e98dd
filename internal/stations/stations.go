/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package stations holds the fixed radio station directory. The mapping is
// process-wide static data, read-only after startup.
package stations

import "fmt"

// Station identifies one of the supported radio stations.
type Station string

const (
	FranceInfo  Station = "FranceInfo"
	FranceInter Station = "FranceInter"
	RTL         Station = "RTL"
	RireChanson Station = "RireChanson"
	Skyrock     Station = "Skyrock"
)

var streamURLs = map[Station]string{
	FranceInfo:  "http://direct.franceinfo.fr/live/franceinfo-midfi.mp3",
	FranceInter: "http://direct.franceinter.fr/live/franceinter-midfi.mp3",
	RTL:         "http://streaming.radio.rtl.fr/rtl-1-44-128",
	RireChanson: "http://cdn.nrjaudio.fm/audio1/fr/30401/mp3_128.mp3",
	Skyrock:     "http://icecast.skyrock.net/s/natio_mp3_128k",
}

// All lists the supported stations in display order.
func All() []Station {
	return []Station{FranceInfo, FranceInter, RTL, RireChanson, Skyrock}
}

// Valid reports whether s is one of the supported stations.
func Valid(s Station) bool {
	_, ok := streamURLs[s]
	return ok
}

// Resolve maps a station to its stream URL. Total over the supported set.
func Resolve(s Station) string {
	return streamURLs[s]
}

// Parse converts a raw identifier into a Station.
func Parse(raw string) (Station, error) {
	s := Station(raw)
	if !Valid(s) {
		return "", fmt.Errorf("unknown station %q", raw)
	}
	return s, nil
}
