/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsincode/heimdall_wake/internal/events"
	"github.com/friendsincode/heimdall_wake/internal/models"
	"github.com/friendsincode/heimdall_wake/internal/songs"
	"github.com/friendsincode/heimdall_wake/internal/stations"
	"github.com/friendsincode/heimdall_wake/internal/store"
)

var (
	addName     string
	addAt       string
	addDays     string
	addStation  string
	addSongLink string
)

var alarmsCmd = &cobra.Command{
	Use:   "alarms",
	Short: "Manage alarms from the command line",
	Long:  "Inspect and edit the persisted alarm list without going through the HTTP API.",
}

var alarmsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all alarms",
	RunE:  runAlarmsList,
}

var alarmsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an alarm",
	Long: `Add an alarm to the persisted list.

Exactly one of --station or --song-link must be given.

Examples:
  # Weekday radio alarm
  heimdallwake alarms add --name Wake --at 07:00:00 --days mon,tue,wed,thu,fri --station FranceInter

  # Weekend song alarm (downloads the audio)
  heimdallwake alarms add --name Chill --at 09:30:00 --days sat,sun --song-link https://example.com/watch?v=x
`,
	RunE: runAlarmsAdd,
}

var alarmsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Toggle an alarm's active flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlarmsToggle,
}

var alarmsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an alarm",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlarmsDelete,
}

func init() {
	alarmsAddCmd.Flags().StringVar(&addName, "name", "", "Alarm name (required)")
	alarmsAddCmd.Flags().StringVar(&addAt, "at", "", "Trigger time as HH:MM:SS (required)")
	alarmsAddCmd.Flags().StringVar(&addDays, "days", "", "Comma-separated weekdays: mon,tue,wed,thu,fri,sat,sun (required)")
	alarmsAddCmd.Flags().StringVar(&addStation, "station", "", "Radio station name")
	alarmsAddCmd.Flags().StringVar(&addSongLink, "song-link", "", "Link to download the alarm audio from")

	alarmsCmd.AddCommand(alarmsListCmd)
	alarmsCmd.AddCommand(alarmsAddCmd)
	alarmsCmd.AddCommand(alarmsToggleCmd)
	alarmsCmd.AddCommand(alarmsDeleteCmd)
	rootCmd.AddCommand(alarmsCmd)
}

func openStore() (*store.Store, error) {
	if err := loadConfig(); err != nil {
		return nil, err
	}
	st := store.New(cfg.AlarmFile(), events.NewBus(), logger)
	if _, err := st.Load(); err != nil {
		if errors.Is(err, store.ErrCorruptStore) {
			logger.Warn().Err(err).Msg("alarm store corrupt, starting with empty list")
		} else {
			return nil, err
		}
	}
	return st, nil
}

func runAlarmsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	alarms := st.List()
	if len(alarms) == 0 {
		fmt.Println("no alarms")
		return nil
	}
	for _, alarm := range alarms {
		state := "off"
		if alarm.Active {
			state = "on"
		}
		fmt.Printf("%3d  %-8s %s  %-4s %-20s %s\n",
			alarm.ID, alarm.Trigger.String(), formatDays(alarm.Days), state, alarm.Name, describeSource(alarm.Source))
	}
	return nil
}

func runAlarmsAdd(cmd *cobra.Command, args []string) error {
	if addName == "" {
		return errors.New("--name is required")
	}
	if (addStation == "") == (addSongLink == "") {
		return errors.New("exactly one of --station or --song-link is required")
	}

	trigger, err := parseTriggerTime(addAt)
	if err != nil {
		return err
	}
	days, err := parseDays(addDays)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}

	var source models.Source
	if addStation != "" {
		station, err := stations.Parse(addStation)
		if err != nil {
			return err
		}
		source = models.RadioSource(station)
	} else {
		fetcher := songs.NewFetcher(cfg.FetcherBin, cfg.SongDir, logger)
		nextID := uint(len(st.List()))
		path, title, err := fetcher.Fetch(context.Background(), nextID, addSongLink)
		if err != nil {
			return fmt.Errorf("fetch song: %w", err)
		}
		source = models.FileSource(path, title)
	}

	created, err := st.Add(addName, trigger, days, source)
	if err != nil {
		return err
	}
	fmt.Printf("added alarm %d (%s)\n", created.ID, created.Name)
	return nil
}

func runAlarmsToggle(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid alarm id %q", args[0])
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	alarm, err := st.ToggleActive(uint(id))
	if err != nil {
		return err
	}
	state := "off"
	if alarm.Active {
		state = "on"
	}
	fmt.Printf("alarm %d is now %s\n", alarm.ID, state)
	return nil
}

func runAlarmsDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid alarm id %q", args[0])
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	if err := st.Delete(uint(id)); err != nil {
		return err
	}
	fmt.Printf("deleted alarm %d\n", id)
	return nil
}

func parseTriggerTime(raw string) (models.TriggerTime, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return models.TriggerTime{}, fmt.Errorf("invalid time %q, want HH:MM:SS", raw)
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return models.TriggerTime{}, fmt.Errorf("invalid time %q, want HH:MM:SS", raw)
		}
		nums[i] = n
	}
	trigger := models.TriggerTime{Hour: nums[0], Minute: nums[1], Second: nums[2]}
	if err := trigger.Validate(); err != nil {
		return models.TriggerTime{}, err
	}
	return trigger, nil
}

var dayNames = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

func parseDays(raw string) ([7]bool, error) {
	var days [7]bool
	if raw == "" {
		return days, errors.New("--days is required")
	}
	for _, token := range strings.Split(raw, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		idx := -1
		for i, name := range dayNames {
			if token == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return days, fmt.Errorf("unknown weekday %q", token)
		}
		days[idx] = true
	}
	return days, nil
}

func formatDays(days [7]bool) string {
	out := make([]byte, 7)
	for i, on := range days {
		if on {
			out[i] = dayNames[i][0]
		} else {
			out[i] = '-'
		}
	}
	return string(out)
}

func describeSource(src models.Source) string {
	switch src.Kind {
	case models.SourceRadio:
		return "radio:" + string(src.Station)
	case models.SourceFile:
		return "song:" + src.SongTitle
	default:
		return "?"
	}
}
