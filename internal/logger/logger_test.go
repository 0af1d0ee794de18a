package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{name: "debug level", level: "debug", wantDebug: true, wantInfo: true},
		{name: "info level", level: "info", wantDebug: false, wantInfo: true},
		{name: "error level", level: "error", wantDebug: false, wantInfo: false},
		{name: "unknown falls back to info", level: "verbose", wantDebug: false, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(Config{Level: tt.level}, &buf)

			log.Debug("debug %d", 1)
			if got := strings.Contains(buf.String(), "debug 1"); got != tt.wantDebug {
				t.Errorf("debug output = %v, want %v", got, tt.wantDebug)
			}

			buf.Reset()
			log.Info("info %s", "two")
			if got := strings.Contains(buf.String(), "info two"); got != tt.wantInfo {
				t.Errorf("info output = %v, want %v", got, tt.wantInfo)
			}
		})
	}
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)

	log.With("request_id", "abc").Warn("bookmark %d missing", 7)

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "bookmark 7 missing" {
		t.Errorf("msg = %v, want %q", record["msg"], "bookmark 7 missing")
	}
	if record["request_id"] != "abc" {
		t.Errorf("request_id = %v, want abc", record["request_id"])
	}
}

func TestDefault(t *testing.T) {
	defaultLogger = nil
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}
}
