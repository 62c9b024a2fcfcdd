package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestErrorCarriesContextFieldsAndStack(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "shopit-api", Level: zerolog.DebugLevel, Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-7f3a")
	ctx = log.WithUserID(ctx, "buyer-42")

	log.Error(ctx, "checkout failed", errors.New("card declined"))

	entry := buf.String()
	for _, want := range []string{"\"request_id\":\"req-7f3a\"", "\"user_id\":\"buyer-42\"", "card declined", "\"stack\""} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("expected %s in entry %s", want, entry)
		}
	}
}

func TestWarnStackToggle(t *testing.T) {
	quiet := &bytes.Buffer{}
	log := New(Options{ServiceName: "shopit-api", Level: zerolog.DebugLevel, Output: quiet})
	log.Warn(context.Background(), "stock low")
	if bytes.Contains(quiet.Bytes(), []byte("\"stack\"")) {
		t.Fatalf("warn should not carry a stack by default: %s", quiet.String())
	}

	noisy := &bytes.Buffer{}
	log = New(Options{ServiceName: "shopit-api", Level: zerolog.DebugLevel, Output: noisy, WarnStack: true})
	log.Warn(context.Background(), "stock low")
	if !bytes.Contains(noisy.Bytes(), []byte("\"stack\"")) {
		t.Fatalf("expected stack with WarnStack enabled: %s", noisy.String())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl := ParseLevel("debug"); lvl != zerolog.DebugLevel {
		t.Fatalf("expected debug, got %v", lvl)
	}
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("empty level should default to info, got %v", lvl)
	}
	if lvl := ParseLevel("shouting"); lvl != zerolog.InfoLevel {
		t.Fatalf("unknown level should fall back to info, got %v", lvl)
	}
}
