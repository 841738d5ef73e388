package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "test message",
			fields:  Fields{"key": "value"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "error occurred",
			err:     errors.New("test error"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(LevelInfo, &buf)

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			if logged := buf.Len() > 0; logged != tt.want {
				t.Errorf("log() logged = %v, want %v", logged, tt.want)
			}
		})
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelDebug, &buf)

	logger.Error("fetch failed", Fields{"source": "the-rex", "status": 503}, errors.New("bad status"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}

	checks := map[string]interface{}{
		"level":   "ERROR",
		"message": "fetch failed",
		"source":  "the-rex",
		"status":  float64(503),
		"error":   "bad status",
	}
	for key, want := range checks {
		if entry[key] != want {
			t.Errorf("entry[%q] = %v, want %v", key, entry[key], want)
		}
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestLogger_Observer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core)

	logger.Debug("candidate rejected", Fields{"reason": "navigation"})
	logger.Info("pipeline finished", Fields{"emitted": 3})

	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", logs.Len())
	}
	rejected := logs.FilterMessage("candidate rejected").All()
	if len(rejected) != 1 || rejected[0].ContextMap()["reason"] != "navigation" {
		t.Errorf("unexpected entries: %+v", rejected)
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Info("ignored", Fields{"k": "v"})
	logger.Error("ignored", nil, errors.New("x"))
}

func TestSetDefault(t *testing.T) {
	previous := Default()
	defer SetDefault(previous)

	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(NewWithCore(core))

	Info("via default", nil)
	Debug("dropped", nil)

	if logs.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", logs.Len())
	}

	SetDefault(nil)
	if Default() == nil {
		t.Error("SetDefault(nil) cleared the default logger")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" Warn ", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToZapFields_Sorted(t *testing.T) {
	fields := toZapFields(Fields{"b": 1, "a": 2, "c": 3})
	var keys []string
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	if strings.Join(keys, ",") != "a,b,c" {
		t.Errorf("keys = %v, want sorted", keys)
	}
}
