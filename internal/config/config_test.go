package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/junsooki/fbrelay/internal/relay"
)

func TestParseRelayFlags_Defaults(t *testing.T) {
	cfg, err := ParseRelayFlags(nil)
	if err != nil {
		t.Fatalf("ParseRelayFlags: %v", err)
	}
	if !reflect.DeepEqual(cfg.ProducerArgv(), relay.DefaultCommand) {
		t.Errorf("producer %v, want %v", cfg.ProducerArgv(), relay.DefaultCommand)
	}
	if cfg.ChunkSize != relay.DefaultChunkSize {
		t.Errorf("chunk %d", cfg.ChunkSize)
	}
	if cfg.Table().Name() != "standard" {
		t.Errorf("table %q", cfg.Table().Name())
	}
	if !strings.HasPrefix(cfg.HostID, "relay-") || len(cfg.HostID) != len("relay-")+8 {
		t.Errorf("host id %q", cfg.HostID)
	}
	if len(cfg.ICEURLs()) != 2 {
		t.Errorf("ice %v", cfg.ICEURLs())
	}
}

func TestParseRelayFlags_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	yaml := `listen: ":7000"
http: ""
id: relay-from-file
producer: /system/bin/screencap -d 1
format_table: extended
chunk_size: 1024
max_clients: 9
ice_servers: "stun:a.example:3478, stun:b.example:3478"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseRelayFlags([]string{"-config", path, "-chunk", "512", "-id", "relay-flag"})
	if err != nil {
		t.Fatalf("ParseRelayFlags: %v", err)
	}
	if cfg.ConfigFile != path {
		t.Errorf("config file %q", cfg.ConfigFile)
	}
	if cfg.Listen != ":7000" || cfg.HTTPAddr != "" {
		t.Errorf("listen %q http %q", cfg.Listen, cfg.HTTPAddr)
	}
	if cfg.ChunkSize != 512 || cfg.HostID != "relay-flag" {
		t.Errorf("flags did not override file: chunk %d id %q", cfg.ChunkSize, cfg.HostID)
	}
	if cfg.MaxClients != 9 || cfg.Table().Name() != "extended" {
		t.Errorf("max clients %d table %q", cfg.MaxClients, cfg.Table().Name())
	}
	want := []string{"/system/bin/screencap", "-d", "1"}
	if !reflect.DeepEqual(cfg.ProducerArgv(), want) {
		t.Errorf("producer %v", cfg.ProducerArgv())
	}
	if got := cfg.ICEURLs(); !reflect.DeepEqual(got, []string{"stun:a.example:3478", "stun:b.example:3478"}) {
		t.Errorf("ice %v", got)
	}
}

func TestParseRelayFlags_Invalid(t *testing.T) {
	for name, args := range map[string][]string{
		"chunk":       {"-chunk", "0"},
		"clients":     {"-max-clients", "-1"},
		"table":       {"-format-table", "vendor"},
		"producer":    {"-producer", "  "},
		"no listener": {"-listen", "", "-http", ""},
		"unknown":     {"-bogus"},
		"missing":     {"-config", "/nonexistent/relay.yaml"},
	} {
		if _, err := ParseRelayFlags(args); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseViewerFlags(t *testing.T) {
	cfg, err := ParseViewerFlags([]string{"-from", "ws://10.0.0.2:8080/framebuffer", "-out", "x.png"})
	if err != nil {
		t.Fatalf("ParseViewerFlags: %v", err)
	}
	if cfg.From != "ws://10.0.0.2:8080/framebuffer" || cfg.Out != "x.png" || cfg.Quality != 90 {
		t.Errorf("cfg %+v", cfg)
	}
	if !strings.HasPrefix(cfg.ViewerID, "viewer-") {
		t.Errorf("viewer id %q", cfg.ViewerID)
	}

	if _, err := ParseViewerFlags([]string{"-no-window"}); err == nil {
		t.Error("-no-window without -out accepted")
	}
}

func TestParseScreencapFlags(t *testing.T) {
	cfg, err := ParseScreencapFlags([]string{"-display", "1"})
	if err != nil || cfg.DisplayIndex != 1 {
		t.Fatalf("cfg %+v err %v", cfg, err)
	}
	if _, err := ParseScreencapFlags([]string{"-display", "-2"}); err == nil {
		t.Error("negative display accepted")
	}
}
