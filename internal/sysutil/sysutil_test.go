package sysutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetLogLevel_AllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) => %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger_JSONAndPretty(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, false, "emoto-backend")
	l.Info().Msg("hello")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected JSON line: %v (%q)", err, buf.String())
	}
	if m["service"] != "emoto-backend" || m["message"] != "hello" || m["time"] == nil {
		t.Fatalf("unexpected fields: %v", m)
	}

	buf.Reset()
	p := NewLogger(&buf, true, "svc")
	p.Info().Msg("pretty")
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") || !strings.Contains(buf.String(), "pretty") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
}

func TestInstallLogger_ReplacesGlobal(t *testing.T) {
	prevLog, prevLevel, prevCtx := log.Logger, zerolog.GlobalLevel(), zerolog.DefaultContextLogger
	t.Cleanup(func() {
		log.Logger = prevLog
		zerolog.SetGlobalLevel(prevLevel)
		zerolog.DefaultContextLogger = prevCtx
	})

	var buf bytes.Buffer
	InstallLogger(&buf, "warn", false, "svc")
	log.Info().Msg("dropped")
	log.Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Fatalf("level not applied: %q", out)
	}
	if zerolog.DefaultContextLogger == nil {
		t.Fatalf("default context logger not set")
	}
}

func TestListenAddr(t *testing.T) {
	cases := map[string]string{"8080": ":8080", " 9000 ": ":9000", "127.0.0.1:80": "127.0.0.1:80", ":81": ":81"}
	for in, want := range cases {
		if got := ListenAddr(in); got != want {
			t.Errorf("ListenAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "a", "b"); got != "a" {
		t.Fatalf("got %q", got)
	}
	if got := FirstNonEmpty("", " "); got != "" {
		t.Fatalf("got %q", got)
	}
}
