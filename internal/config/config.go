// Package config loads mudra settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Transport kinds.
const (
	TransportWebSocket = "websocket"
	TransportHTTP      = "http"
	TransportSerial    = "serial"
	TransportExec      = "exec"
	TransportNone      = "none"
)

// Config is the full application configuration.
type Config struct {
	Camera    CameraConfig    `toml:"camera" yaml:"camera"`
	Detector  DetectorConfig  `toml:"detector" yaml:"detector"`
	Transmit  TransmitConfig  `toml:"transmit" yaml:"transmit"`
	Transport TransportConfig `toml:"transport" yaml:"transport"`
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Store     StoreConfig     `toml:"store" yaml:"store"`
	Relay     RelayConfig     `toml:"relay" yaml:"relay"`
}

// CameraConfig selects the capture device.
type CameraConfig struct {
	Device int `toml:"device" yaml:"device"`
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
	FPS    int `toml:"fps" yaml:"fps"`
}

// DetectorConfig configures the MediaPipe service.
type DetectorConfig struct {
	MaxHands        int     `toml:"max-hands" yaml:"max-hands"`
	MinConfidence   float64 `toml:"min-confidence" yaml:"min-confidence"`
	MinTrackingConf float64 `toml:"min-tracking-confidence" yaml:"min-tracking-confidence"`
	Script          string  `toml:"script" yaml:"script"`
	Python          string  `toml:"python" yaml:"python"`
	Mock            bool    `toml:"mock" yaml:"mock"`
}

// TransmitConfig selects the emission policy.
type TransmitConfig struct {
	Policy     string `toml:"policy" yaml:"policy"`
	IntervalMs int    `toml:"interval-ms" yaml:"interval-ms"`
	TimeoutMs  int    `toml:"timeout-ms" yaml:"timeout-ms"`
	QueueSize  int    `toml:"queue-size" yaml:"queue-size"`
}

// Interval returns the time-gated interval.
func (t TransmitConfig) Interval() time.Duration {
	return time.Duration(t.IntervalMs) * time.Millisecond
}

// Timeout returns the per-delivery timeout.
func (t TransmitConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutMs) * time.Millisecond
}

// TransportConfig describes how commands reach the controller.
type TransportConfig struct {
	Kind     string `toml:"kind" yaml:"kind"`
	URL      string `toml:"url" yaml:"url"`
	Port     string `toml:"port" yaml:"port"`
	Baud     int    `toml:"baud" yaml:"baud"`
	SettleMs int    `toml:"settle-ms" yaml:"settle-ms"`

	// Driver names the external driver used by the exec transport.
	Driver    string `toml:"driver" yaml:"driver"`
	DriverDir string `toml:"driver-dir" yaml:"driver-dir"`
}

// Settle returns how long to wait after opening a serial port.
func (t TransportConfig) Settle() time.Duration {
	return time.Duration(t.SettleMs) * time.Millisecond
}

// ServerConfig configures the local web UI and API.
type ServerConfig struct {
	Addr      string `toml:"addr" yaml:"addr"`
	StaticDir string `toml:"static-dir" yaml:"static-dir"`
	Preview   bool   `toml:"preview" yaml:"preview"`
	Tray      bool   `toml:"tray" yaml:"tray"`
}

// StoreConfig locates the command history database.
type StoreConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// RelayConfig configures the controller-side bridge.
type RelayConfig struct {
	Addr      string `toml:"addr" yaml:"addr"`
	Port      string `toml:"port" yaml:"port"`
	Baud      int    `toml:"baud" yaml:"baud"`
	SettleMs  int    `toml:"settle-ms" yaml:"settle-ms"`
	StaticDir string `toml:"static-dir" yaml:"static-dir"`
	StepAngle int    `toml:"step-angle" yaml:"step-angle"`
}

// Settle returns how long to wait after opening the relay's serial port.
func (r RelayConfig) Settle() time.Duration {
	return time.Duration(r.SettleMs) * time.Millisecond
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			Device: 0,
			Width:  720,
			Height: 540,
			FPS:    15,
		},
		Detector: DetectorConfig{
			MaxHands:        2,
			MinConfidence:   0.5,
			MinTrackingConf: 0.5,
		},
		Transmit: TransmitConfig{
			Policy:     "change",
			IntervalMs: 200,
			TimeoutMs:  2000,
			QueueSize:  16,
		},
		Transport: TransportConfig{
			Kind:      TransportWebSocket,
			URL:       "ws://localhost:5000/ws",
			Baud:      9600,
			SettleMs:  2000,
			DriverDir: filepath.Join(DataDir(), "drivers"),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Path: filepath.Join(DataDir(), "mudra.db"),
		},
		Relay: RelayConfig{
			Addr:      ":5000",
			Port:      "/dev/ttyACM0",
			Baud:      9600,
			SettleMs:  2000,
			StepAngle: 1,
		},
	}
}

// DataDir returns ~/.mudra, or .mudra when the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// Load reads the file at path over the defaults. The format follows the extension:
// .yaml and .yml are YAML, anything else is TOML. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to decode config: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Transmit.Policy {
	case "", "change", "time":
	default:
		return fmt.Errorf("%w: transmit.policy %q (want change or time)", ErrInvalid, c.Transmit.Policy)
	}
	if c.Transmit.IntervalMs < 0 || c.Transmit.TimeoutMs < 0 || c.Transmit.QueueSize < 0 {
		return fmt.Errorf("%w: transmit values must not be negative", ErrInvalid)
	}

	switch c.Transport.Kind {
	case TransportWebSocket, TransportHTTP:
		if c.Transport.URL == "" {
			return fmt.Errorf("%w: transport.url is required for %s", ErrInvalid, c.Transport.Kind)
		}
		if err := checkScheme(c.Transport.Kind, c.Transport.URL); err != nil {
			return err
		}
	case TransportSerial:
		if c.Transport.Port == "" {
			return fmt.Errorf("%w: transport.port is required for serial", ErrInvalid)
		}
	case TransportExec:
		if c.Transport.Driver == "" {
			return fmt.Errorf("%w: transport.driver is required for exec", ErrInvalid)
		}
	case TransportNone:
	default:
		return fmt.Errorf("%w: transport.kind %q", ErrInvalid, c.Transport.Kind)
	}

	if c.Camera.FPS <= 0 {
		return fmt.Errorf("%w: camera.fps must be positive", ErrInvalid)
	}
	if c.Detector.MaxHands < 1 || c.Detector.MaxHands > 2 {
		return fmt.Errorf("%w: detector.max-hands must be 1 or 2", ErrInvalid)
	}
	if c.Relay.StepAngle < 1 || c.Relay.StepAngle > 180 {
		return fmt.Errorf("%w: relay.step-angle must be within 1-180", ErrInvalid)
	}
	return nil
}

var transportSchemes = map[string][]string{
	TransportWebSocket: {"ws", "wss"},
	TransportHTTP:      {"http", "https"},
}

// checkScheme rejects a transport.url whose scheme does not suit kind, such as
// an http:// address for the websocket transport.
func checkScheme(kind, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: transport.url: %v", ErrInvalid, err)
	}
	want := transportSchemes[kind]
	for _, scheme := range want {
		if strings.EqualFold(u.Scheme, scheme) {
			if u.Host == "" {
				return fmt.Errorf("%w: transport.url %q has no host", ErrInvalid, rawURL)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: transport.url %q for %s must use %s", ErrInvalid, rawURL, kind, strings.Join(want, " or "))
}
