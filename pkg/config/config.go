// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
)

// SimConfig contains configuration for the simulator binaries
type SimConfig struct {
	Flight   mission.FlightModel `json:"flight" yaml:"flight"`
	Stats    build.StatModel     `json:"stats" yaml:"stats"`
	Viewport mission.Viewport    `json:"viewport" yaml:"viewport"`
	Driver   DriverConfig        `json:"driver" yaml:"driver"`
	Server   ServerConfig        `json:"server" yaml:"server"`
	Audio    AudioConfig         `json:"audio" yaml:"audio"`
	Data     DataConfig          `json:"data" yaml:"data"`
}

// DriverConfig controls the frame driver
type DriverConfig struct {
	MaxStep     float64 `json:"maxStep" yaml:"maxStep"`         // seconds
	ResultDelay float64 `json:"resultDelay" yaml:"resultDelay"` // seconds
	TickRate    int     `json:"tickRate" yaml:"tickRate"`       // frames per second
}

// TickInterval returns the wall time between frames.
func (d DriverConfig) TickInterval() time.Duration {
	if d.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(d.TickRate)
}

// ServerConfig contains mission server configuration
type ServerConfig struct {
	Address           string        `json:"address" yaml:"address"`
	Codec             string        `json:"codec" yaml:"codec"`
	MaxClients        int           `json:"maxClients" yaml:"maxClients"`
	ReadTimeout       Duration      `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout      Duration      `json:"writeTimeout" yaml:"writeTimeout"`
	MaxMessageBytes   int64         `json:"maxMessageBytes" yaml:"maxMessageBytes"`
	CommandsPerSecond int           `json:"commandsPerSecond" yaml:"commandsPerSecond"`
	SnapshotEvery     int           `json:"snapshotEvery" yaml:"snapshotEvery"`
	Breaker           BreakerConfig `json:"breaker" yaml:"breaker"`
}

// BreakerConfig tunes the per-client write circuit breaker
type BreakerConfig struct {
	MaxRequests         uint32   `json:"maxRequests" yaml:"maxRequests"`
	Interval            Duration `json:"interval" yaml:"interval"`
	Timeout             Duration `json:"timeout" yaml:"timeout"`
	MaxConsecutiveFails uint32   `json:"maxConsecutiveFails" yaml:"maxConsecutiveFails"`
}

// AudioConfig contains audio cue configuration
type AudioConfig struct {
	Enabled    bool    `json:"enabled" yaml:"enabled"`
	SampleRate int     `json:"sampleRate" yaml:"sampleRate"`
	Volume     float64 `json:"volume" yaml:"volume"` // 0..1
}

// DataConfig points at the static game data
type DataConfig struct {
	PartsFile  string `json:"partsFile" yaml:"partsFile"`
	LevelsFile string `json:"levelsFile" yaml:"levelsFile"`
	BuildFile  string `json:"buildFile,omitempty" yaml:"buildFile,omitempty"`
}

// Duration is a time.Duration that encodes as a string such as "30s".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// LoadConfig loads a configuration from a YAML or JSON file. Fields the file
// omits keep their defaults.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file, as YAML or JSON by extension
func SaveConfig(config *SimConfig, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// DefaultConfig returns a default simulator configuration
func DefaultConfig() *SimConfig {
	return &SimConfig{
		Flight:   mission.DefaultFlightModel(),
		Stats:    build.DefaultStatModel(),
		Viewport: mission.DefaultViewport,
		Driver: DriverConfig{
			MaxStep:     0.04,
			ResultDelay: 1.5,
			TickRate:    60,
		},
		Server: ServerConfig{
			Address:           "localhost:4680",
			Codec:             "json",
			MaxClients:        32,
			ReadTimeout:       Duration(60 * time.Second),
			WriteTimeout:      Duration(10 * time.Second),
			MaxMessageBytes:   4096,
			CommandsPerSecond: 120,
			SnapshotEvery:     3,
			Breaker: BreakerConfig{
				MaxRequests:         3,
				Interval:            Duration(60 * time.Second),
				Timeout:             Duration(30 * time.Second),
				MaxConsecutiveFails: 5,
			},
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Volume:     0.6,
		},
		Data: DataConfig{
			PartsFile:  "data/parts.yaml",
			LevelsFile: "data/levels.yaml",
			BuildFile:  "data/build.yaml",
		},
	}
}

// Validate reports every out-of-range setting.
func (c *SimConfig) Validate() error {
	var problems []string
	if c.Driver.MaxStep <= 0 || c.Driver.MaxStep > 1 {
		problems = append(problems, fmt.Sprintf("driver.maxStep must be in (0,1], got %v", c.Driver.MaxStep))
	}
	if c.Driver.ResultDelay < 0 {
		problems = append(problems, "driver.resultDelay must not be negative")
	}
	if c.Driver.TickRate <= 0 || c.Driver.TickRate > 240 {
		problems = append(problems, fmt.Sprintf("driver.tickRate must be in 1..240, got %d", c.Driver.TickRate))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		problems = append(problems, "viewport dimensions must be positive")
	}
	if c.Server.Codec != "json" && c.Server.Codec != "msgpack" {
		problems = append(problems, fmt.Sprintf("server.codec must be json or msgpack, got %q", c.Server.Codec))
	}
	if c.Server.MaxClients <= 0 {
		problems = append(problems, "server.maxClients must be positive")
	}
	if c.Server.MaxMessageBytes <= 0 {
		problems = append(problems, "server.maxMessageBytes must be positive")
	}
	if c.Server.CommandsPerSecond <= 0 {
		problems = append(problems, "server.commandsPerSecond must be positive")
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		problems = append(problems, fmt.Sprintf("audio.volume must be in [0,1], got %v", c.Audio.Volume))
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		problems = append(problems, "audio.sampleRate must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
