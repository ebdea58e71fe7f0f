package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/junsooki/fbrelay/internal/peer"
	"github.com/junsooki/fbrelay/internal/pixelformat"
	"github.com/junsooki/fbrelay/internal/relay"
)

// RelayConfig holds configuration for the relay daemon.
type RelayConfig struct {
	ConfigFile   string `yaml:"-"`
	Listen       string `yaml:"listen"`
	HTTPAddr     string `yaml:"http"`
	SignalingURL string `yaml:"signaling"`
	HostID       string `yaml:"id"`
	Producer     string `yaml:"producer"`
	FormatTable  string `yaml:"format_table"`
	ChunkSize    int    `yaml:"chunk_size"`
	MaxClients   int    `yaml:"max_clients"`
	ICEServers   string `yaml:"ice_servers"`
}

var defaultICE = strings.Join(peer.DefaultICEServers, ",")

func defaultRelayConfig() RelayConfig {
	return RelayConfig{
		Listen:      ":5050",
		HTTPAddr:    ":8080",
		Producer:    strings.Join(relay.DefaultCommand, " "),
		FormatTable: pixelformat.Standard.Name(),
		ChunkSize:   relay.DefaultChunkSize,
		MaxClients:  4,
		ICEServers:  defaultICE,
	}
}

// ParseRelayFlags parses flags for the relay binary. Values from -config are
// applied first; flags given on the command line win over the file.
func ParseRelayFlags(args []string) (*RelayConfig, error) {
	cfg := defaultRelayConfig()
	fs := flag.NewFlagSet("fbrelay", flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML config file")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "TCP address serving one capture per connection (empty disables)")
	fs.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP address for the websocket endpoint (empty disables)")
	fs.StringVar(&cfg.SignalingURL, "signaling", "", "Signaling server WebSocket URL (empty disables WebRTC)")
	fs.StringVar(&cfg.HostID, "id", "", "Relay ID announced to the signaling server (auto-generated if empty)")
	fs.StringVar(&cfg.Producer, "producer", cfg.Producer, "Capture producer command line")
	fs.StringVar(&cfg.FormatTable, "format-table", cfg.FormatTable, "Pixel format table: standard or extended")
	fs.IntVar(&cfg.ChunkSize, "chunk", cfg.ChunkSize, "Payload copy chunk size in bytes")
	fs.IntVar(&cfg.MaxClients, "max-clients", cfg.MaxClients, "Captures served concurrently")
	fs.StringVar(&cfg.ICEServers, "ice", cfg.ICEServers, "Comma-separated STUN/TURN URLs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ConfigFile != "" {
		path := cfg.ConfigFile
		fileCfg := defaultRelayConfig()
		if err := loadYAML(path, &fileCfg); err != nil {
			return nil, err
		}
		// Re-parse so explicit flags override the file.
		cfg = fileCfg
		cfg.ConfigFile = path
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	if cfg.HostID == "" {
		cfg.HostID = fmt.Sprintf("relay-%s", randomID())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration can serve requests.
func (c *RelayConfig) Validate() error {
	if len(c.ProducerArgv()) == 0 {
		return errors.New("config: producer command is empty")
	}
	if _, err := pixelformat.ByName(c.FormatTable); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("config: chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.MaxClients <= 0 {
		return fmt.Errorf("config: max clients must be positive, got %d", c.MaxClients)
	}
	if c.Listen == "" && c.HTTPAddr == "" && c.SignalingURL == "" {
		return errors.New("config: no listener configured (need -listen, -http or -signaling)")
	}
	return nil
}

// ProducerArgv splits the producer command line into arguments.
func (c *RelayConfig) ProducerArgv() []string {
	return strings.Fields(c.Producer)
}

// Table returns the configured pixel format table.
func (c *RelayConfig) Table() pixelformat.Table {
	t, _ := pixelformat.ByName(c.FormatTable)
	return t
}

// ICEURLs returns the configured STUN/TURN URLs.
func (c *RelayConfig) ICEURLs() []string {
	return splitList(c.ICEServers)
}

// ViewerConfig holds configuration for the viewer binary.
type ViewerConfig struct {
	From         string
	SignalingURL string
	ViewerID     string
	Out          string
	Quality      int
	NoWindow     bool
	ICEServers   string
}

// ParseViewerFlags parses flags for the viewer binary.
func ParseViewerFlags(args []string) (*ViewerConfig, error) {
	cfg := &ViewerConfig{}
	fs := flag.NewFlagSet("fbviewer", flag.ContinueOnError)
	fs.StringVar(&cfg.From, "from", "tcp://localhost:5050", "Capture source: tcp://addr, ws://url, webrtc://relay-id or a .fbz file")
	fs.StringVar(&cfg.SignalingURL, "signaling", "ws://localhost:8080", "Signaling server WebSocket URL (webrtc sources)")
	fs.StringVar(&cfg.ViewerID, "id", "", "Viewer ID (auto-generated if empty)")
	fs.StringVar(&cfg.Out, "out", "", "Save the capture to a .png, .jpg, .qoi or .fbz file")
	fs.IntVar(&cfg.Quality, "quality", 90, "JPEG quality (1-100)")
	fs.BoolVar(&cfg.NoWindow, "no-window", false, "Do not open a window; fetch, save and exit")
	fs.StringVar(&cfg.ICEServers, "ice", defaultICE, "Comma-separated STUN/TURN URLs")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ViewerID == "" {
		cfg.ViewerID = fmt.Sprintf("viewer-%s", randomID())
	}
	if cfg.NoWindow && cfg.Out == "" {
		return nil, errors.New("config: -no-window needs -out")
	}
	return cfg, nil
}

// ICEURLs returns the configured STUN/TURN URLs.
func (c *ViewerConfig) ICEURLs() []string {
	return splitList(c.ICEServers)
}

// ScreencapConfig holds configuration for the reference producer.
type ScreencapConfig struct {
	DisplayIndex int
}

// ParseScreencapFlags parses flags for the screencap producer.
func ParseScreencapFlags(args []string) (*ScreencapConfig, error) {
	cfg := &ScreencapConfig{}
	fs := flag.NewFlagSet("screencap", flag.ContinueOnError)
	fs.IntVar(&cfg.DisplayIndex, "display", 0, "Display index to capture (0 = primary)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.DisplayIndex < 0 {
		return nil, fmt.Errorf("config: display index must be >= 0, got %d", cfg.DisplayIndex)
	}
	return cfg, nil
}

func loadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomID() string {
	return uuid.NewString()[:8]
}
