package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/friendsincode/heimdall_wake/internal/stations"
)

func TestAlarmJSONRoundTrip(t *testing.T) {
	alarms := []Alarm{
		{
			ID:      0,
			Name:    "Wake",
			Trigger: TriggerTime{Hour: 7, Minute: 30, Second: 0},
			Active:  true,
			Days:    [7]bool{true, true, true, true, true, false, false},
			Source:  RadioSource(stations.FranceInter),
		},
		{
			ID:      1,
			Name:    "Nap",
			Trigger: TriggerTime{Hour: 14, Minute: 0, Second: 30},
			Active:  false,
			Days:    [7]bool{false, false, false, false, false, true, true},
			Source:  FileSource("song/Alarm_1.wav", "Lo-fi beats"),
		},
	}

	data, err := json.Marshal(alarms)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got []Alarm
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != len(alarms) {
		t.Fatalf("expected %d alarms, got %d", len(alarms), len(got))
	}
	for i := range alarms {
		if got[i] != alarms[i] {
			t.Errorf("alarm %d changed across round trip:\n  want %+v\n  got  %+v", i, alarms[i], got[i])
		}
	}
}

func TestAlarmJSONLegacyLayout(t *testing.T) {
	alarm := Alarm{
		ID:      3,
		Name:    "Morning",
		Trigger: TriggerTime{Hour: 6, Minute: 45, Second: 0},
		Active:  true,
		Source:  RadioSource(stations.Skyrock),
	}

	data, err := json.Marshal(alarm)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{`"is_radio":true`, `"station":"Skyrock"`, `"song_path":""`, `"days":`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("encoded alarm missing %s: %s", field, data)
		}
	}
}

func TestAlarmUnmarshalRejectsRadioWithoutStation(t *testing.T) {
	raw := `{"id":0,"name":"Bad","hour":7,"minute":0,"second":0,"active":true,"is_radio":true,"station":null,"song_path":"","song_title":"","days":[true,false,false,false,false,false,false]}`

	var alarm Alarm
	if err := json.Unmarshal([]byte(raw), &alarm); err == nil {
		t.Fatal("expected error for radio alarm without station")
	}
}

func TestSourceValidateExactlyOneVariant(t *testing.T) {
	tests := []struct {
		name    string
		source  Source
		wantErr bool
	}{
		{"radio", RadioSource(stations.RTL), false},
		{"file", FileSource("song/Alarm_0.wav", "x"), false},
		{"radio with path", Source{Kind: SourceRadio, Station: stations.RTL, SongPath: "x.wav"}, true},
		{"file with station", Source{Kind: SourceFile, SongPath: "x.wav", Station: stations.RTL}, true},
		{"file without path", Source{Kind: SourceFile}, true},
		{"unknown station", Source{Kind: SourceRadio, Station: "Nope"}, true},
		{"unknown kind", Source{Kind: "cassette"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.source.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTriggerTimeValidate(t *testing.T) {
	if err := (TriggerTime{Hour: 23, Minute: 59, Second: 59}).Validate(); err != nil {
		t.Errorf("valid time rejected: %v", err)
	}
	for _, bad := range []TriggerTime{{Hour: 24}, {Minute: 60}, {Second: 60}, {Hour: -1}} {
		if err := bad.Validate(); err == nil {
			t.Errorf("expected error for %+v", bad)
		}
	}
}
