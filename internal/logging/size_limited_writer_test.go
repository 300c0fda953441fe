package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gipf-arena/internal/config"

	"github.com/rs/zerolog/log"
)

func TestSizeLimitedWriterRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writer, err := newSizeLimitedWriter(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer writer.Close()

	chunk := make([]byte, 512*1024)
	for i := 0; i < 3; i++ {
		if _, err := writer.Write(chunk); err != nil {
			t.Fatalf("write chunk %d: %v", i, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log: %v", err)
	}
	if info.Size() > 1024*1024 {
		t.Fatalf("expected log <= 1MB, got %d", info.Size())
	}
	prev, err := os.Stat(path + ".1")
	if err != nil {
		t.Fatalf("stat rotated log: %v", err)
	}
	if prev.Size() != 1024*1024 {
		t.Fatalf("rotated log size = %d, want 1MB", prev.Size())
	}
}

func TestInitWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1})
	t.Cleanup(func() { Init(config.LogConfig{Level: "info"}) })

	log.Info().Str("probe", "yes").Msg("logging_probe")
	if _, err := Writer().Write([]byte("{\"access\":1}\n")); err != nil {
		t.Fatalf("write sink: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "logging_probe") || !strings.Contains(string(data), `"access":1`) {
		t.Fatalf("log file missing lines: %s", data)
	}
}
