package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	in := filepath.Join(t.TempDir(), "in.mp4")
	if err := os.WriteFile(in, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return Config{
		InputPath:       in,
		ClipCount:       3,
		MinScore:        60,
		ClipDurationSec: 30,
		AspectRatio:     "9:16",
		S3Bucket:        "clips",
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no source", func(c *Config) { c.InputPath = "" }},
		{"both sources", func(c *Config) { c.SourceURL = "https://example.com/v" }},
		{"missing input file", func(c *Config) { c.InputPath = "/definitely/missing.mp4" }},
		{"zero clips", func(c *Config) { c.ClipCount = 0 }},
		{"zero duration", func(c *Config) { c.ClipDurationSec = 0 }},
		{"score too high", func(c *Config) { c.MinScore = 101 }},
		{"negative score", func(c *Config) { c.MinScore = -1 }},
		{"bad aspect", func(c *Config) { c.AspectRatio = "4:3" }},
		{"no bucket", func(c *Config) { c.S3Bucket = "" }},
		{"font without captions", func(c *Config) { c.FontKey = "roboto" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig(t)
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSampleFrames(t *testing.T) {
	t.Parallel()

	if got := sampleFrames(0); got != nil {
		t.Fatalf("expected nil for zero duration, got %v", got)
	}

	short := sampleFrames(10)
	if len(short) != 20 {
		t.Fatalf("short source samples = %d, want floor of 20", len(short))
	}
	long := sampleFrames(3600)
	if len(long) != 100 {
		t.Fatalf("long source samples = %d, want cap of 100", len(long))
	}
	for i, f := range long {
		if f.Timestamp < 0 || f.Timestamp >= 3600 {
			t.Fatalf("sample %d timestamp %v outside source", i, f.Timestamp)
		}
	}
}

func TestBuildResultName(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildResultName("My Cool.Video", now)
	if !strings.HasPrefix(got, "my-cool-video-20260212-103045Z-") {
		t.Fatalf("unexpected result name: %s", got)
	}
	if !strings.HasSuffix(got, ".json") {
		t.Fatalf("expected json extension: %s", got)
	}

	if got := buildResultName("", now); !strings.HasPrefix(got, "run-") {
		t.Fatalf("empty title should fall back to run-: %s", got)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
	}
	for in, want := range tests {
		if got := normalizePathSegment(in); got != want {
			t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
