package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendHighGUI = "highgui"
	BackendFyne    = "fyne"
)

// Config is the complete cameo configuration
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Window  WindowConfig  `yaml:"window"`
	Output  OutputConfig  `yaml:"output"`
	Filters FiltersConfig `yaml:"filters"`
	Log     LogConfig     `yaml:"log"`
}

type CaptureConfig struct {
	Device        int    `yaml:"device"`
	Source        string `yaml:"source"` // file or stream URL, overrides device when set
	Channel       int    `yaml:"channel"`
	MirrorPreview bool   `yaml:"mirror_preview"`
	PoolSize      int    `yaml:"pool_size"` // reusable frame buffers
}

type WindowConfig struct {
	Name    string `yaml:"name"`
	Backend string `yaml:"backend"` // highgui, fyne
}

type OutputConfig struct {
	Snapshot string `yaml:"snapshot"` // "{session}" expands to the session id
	Video    string `yaml:"video"`
	Codec    string `yaml:"codec"` // fourcc
}

// FiltersConfig lists the filter pipelines the "f" key cycles through. Each
// entry joins filter names with "+", "none" disables filtering.
type FiltersConfig struct {
	Pipelines []string `yaml:"pipelines"`
	BlurKsize int      `yaml:"blur_ksize"`
	EdgeKsize int      `yaml:"edge_ksize"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			Device:        0,
			MirrorPreview: true,
			PoolSize:      4,
		},
		Window: WindowConfig{
			Name:    "cameo",
			Backend: BackendHighGUI,
		},
		Output: OutputConfig{
			Snapshot: "screenshot.png",
			Video:    "screencast.avi",
			Codec:    "MJPG",
		},
		Filters: FiltersConfig{
			Pipelines: []string{"stroke_edges+portra", "none"},
			BlurKsize: 7,
			EdgeKsize: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path yields
// the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from CAMEO_DEVICE, CAMEO_SOURCE, CAMEO_BACKEND,
// LOG_LEVEL and DEBUG=1.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("CAMEO_DEVICE"); v != "" {
		device, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CAMEO_DEVICE: %w", err)
		}
		c.Capture.Device = device
	}
	if v := getenv("CAMEO_SOURCE"); v != "" {
		c.Capture.Source = v
	}
	if v := getenv("CAMEO_BACKEND"); v != "" {
		c.Window.Backend = strings.ToLower(v)
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	} else if getenv("DEBUG") == "1" {
		c.Log.Level = "debug"
	}
	return nil
}

func Validate(cfg *Config) error {
	var errs []error

	if cfg.Capture.Device < 0 {
		errs = append(errs, fmt.Errorf("capture.device must be >= 0, got %d", cfg.Capture.Device))
	}
	if cfg.Capture.Channel < 0 {
		errs = append(errs, fmt.Errorf("capture.channel must be >= 0, got %d", cfg.Capture.Channel))
	}
	if cfg.Capture.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("capture.pool_size must be >= 1, got %d", cfg.Capture.PoolSize))
	}

	switch cfg.Window.Backend {
	case BackendHighGUI, BackendFyne:
	default:
		errs = append(errs, fmt.Errorf("window.backend must be %q or %q, got %q", BackendHighGUI, BackendFyne, cfg.Window.Backend))
	}
	if cfg.Window.Name == "" {
		errs = append(errs, errors.New("window.name is required"))
	}

	if len(cfg.Output.Codec) != 4 {
		errs = append(errs, fmt.Errorf("output.codec must be a four character code, got %q", cfg.Output.Codec))
	}
	if cfg.Output.Snapshot == "" || cfg.Output.Video == "" {
		errs = append(errs, errors.New("output.snapshot and output.video are required"))
	}

	if len(cfg.Filters.Pipelines) == 0 {
		errs = append(errs, errors.New("filters.pipelines must list at least one entry"))
	}
	if k := cfg.Filters.EdgeKsize; k < 1 || k > 31 || k%2 == 0 {
		errs = append(errs, fmt.Errorf("filters.edge_ksize must be odd in 1..31, got %d", k))
	}
	if k := cfg.Filters.BlurKsize; k >= 3 && k%2 == 0 {
		errs = append(errs, fmt.Errorf("filters.blur_ksize must be odd when >= 3, got %d", k))
	}

	return errors.Join(errs...)
}

// Expand substitutes the session id into an output filename template.
func Expand(name, session string) string {
	return strings.ReplaceAll(name, "{session}", session)
}
