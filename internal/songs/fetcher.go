/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package songs materializes local audio files for file-backed alarms by
// shelling out to an external downloader (yt-dlp by default). The core only
// predicts and consumes the resulting path; it never decodes audio itself.
package songs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Fetcher downloads alarm audio files.
type Fetcher struct {
	bin     string
	songDir string
	logger  zerolog.Logger
}

// NewFetcher creates a fetcher writing into songDir.
func NewFetcher(bin, songDir string, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		bin:     bin,
		songDir: songDir,
		logger:  logger.With().Str("component", "songs").Logger(),
	}
}

// PathFor predicts the file an alarm id maps to.
func (f *Fetcher) PathFor(id uint) string {
	return filepath.Join(f.songDir, fmt.Sprintf("Alarm_%d.wav", id))
}

// Fetch downloads link as a wav file for the given alarm id and returns the
// local path plus a human-readable title. Best effort: a failed title
// lookup falls back to the link itself.
func (f *Fetcher) Fetch(ctx context.Context, id uint, link string) (string, string, error) {
	if link == "" {
		return "", "", fmt.Errorf("empty song link")
	}
	if err := os.MkdirAll(f.songDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create song dir: %w", err)
	}

	out := f.PathFor(id)
	f.logger.Info().Str("link", link).Str("out", out).Msg("downloading alarm song")

	cmd := exec.CommandContext(ctx, f.bin,
		"--format", "bestaudio",
		"--extract-audio",
		"--audio-format", "wav",
		"--output", out,
		link)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", "", fmt.Errorf("download song: %w: %s", err, strings.TrimSpace(string(output)))
	}

	title := f.title(ctx, link)
	return out, title, nil
}

// title asks the downloader for the human-readable track title.
func (f *Fetcher) title(ctx context.Context, link string) string {
	cmd := exec.CommandContext(ctx, f.bin, "--get-title", link)
	output, err := cmd.Output()
	if err != nil {
		f.logger.Warn().Err(err).Str("link", link).Msg("title lookup failed")
		return link
	}
	title := strings.TrimSpace(string(output))
	if title == "" {
		return link
	}
	return title
}
