package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/swdee/go-deepsort/postprocess"
	"github.com/swdee/go-deepsort/tracker"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Tracking  TrackingConfig  `yaml:"tracking"`
	Detection DetectionConfig `yaml:"detection"`
	Session   SessionConfig   `yaml:"session"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type TrackingConfig struct {
	MaxAge           int     `yaml:"max_age"`
	MinHits          int     `yaml:"min_hits"`
	GateThreshold    float32 `yaml:"gate_threshold"`
	DescriptorLength int     `yaml:"descriptor_length"`
	AppearanceWeight float32 `yaml:"appearance_weight"`
	// Distance is "cosine" or "euclidean"
	Distance      string `yaml:"distance"`
	HistoryLength int    `yaml:"history_length"`
}

// Params converts the tracking config into tracker parameters
func (t TrackingConfig) Params() tracker.Params {

	p := tracker.Params{
		MaxAge:           t.MaxAge,
		MinHits:          t.MinHits,
		GateThreshold:    t.GateThreshold,
		DescriptorLength: t.DescriptorLength,
		AppearanceWeight: t.AppearanceWeight,
		Distance:         tracker.Cosine,
		HistoryLength:    t.HistoryLength,
	}

	if strings.EqualFold(t.Distance, "euclidean") {
		p.Distance = tracker.Euclidean
	}

	return p
}

type DetectionConfig struct {
	LabelsFile       string  `yaml:"labels_file"`
	TranslationsFile string  `yaml:"translations_file"`
	MinConfidence    float32 `yaml:"min_confidence"`
	NMSThreshold     float32 `yaml:"nms_threshold"`
	Classes          []int   `yaml:"classes"`
	MaxDetections    int     `yaml:"max_detections"`
}

// FilterParams converts the detection config into filter parameters.
// numClasses is the number of labels the detector was trained on
func (d DetectionConfig) FilterParams(numClasses int) postprocess.FilterParams {
	return postprocess.FilterParams{
		MinConfidence: d.MinConfidence,
		NMSThreshold:  d.NMSThreshold,
		Classes:       d.Classes,
		NumClasses:    numClasses,
		MaxDetections: d.MaxDetections,
	}
}

type SessionConfig struct {
	FrameTimeout  time.Duration `yaml:"frame_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	MaxSessions   int           `yaml:"max_sessions"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewLogger builds a slog logger writing to w at the configured level and
// format, "json" or "text"
func (l LoggingConfig) NewLogger(w io.Writer) *slog.Logger {

	var level slog.Level

	switch strings.ToLower(l.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(l.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

// SetupLogger installs the configured logger as the slog default
func (l LoggingConfig) SetupLogger() *slog.Logger {
	logger := l.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	return logger
}

// Default returns the config used when no file is given
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config data over the defaults and applies environment
// variable overrides.  Keys present in the data or environment replace the
// default even when their value is zero
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Tracking.Params().Validate(); err != nil {
		return nil, fmt.Errorf("tracking config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	def := tracker.DefaultParams()

	if cfg.Tracking.MaxAge == 0 {
		cfg.Tracking.MaxAge = def.MaxAge
	}
	if cfg.Tracking.MinHits == 0 {
		cfg.Tracking.MinHits = def.MinHits
	}
	if cfg.Tracking.GateThreshold == 0 {
		cfg.Tracking.GateThreshold = def.GateThreshold
	}
	if cfg.Tracking.DescriptorLength == 0 {
		cfg.Tracking.DescriptorLength = def.DescriptorLength
	}
	if cfg.Tracking.AppearanceWeight == 0 {
		cfg.Tracking.AppearanceWeight = def.AppearanceWeight
	}
	if cfg.Tracking.Distance == "" {
		cfg.Tracking.Distance = "cosine"
	}
	if cfg.Tracking.HistoryLength == 0 {
		cfg.Tracking.HistoryLength = def.HistoryLength
	}

	filter := postprocess.DefaultFilterParams()

	if cfg.Detection.MinConfidence == 0 {
		cfg.Detection.MinConfidence = filter.MinConfidence
	}
	if cfg.Detection.NMSThreshold == 0 {
		cfg.Detection.NMSThreshold = filter.NMSThreshold
	}

	if cfg.Session.FrameTimeout == 0 {
		cfg.Session.FrameTimeout = 30 * time.Second
	}
	if cfg.Session.IdleTimeout == 0 {
		cfg.Session.IdleTimeout = 10 * time.Minute
	}
	if cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = time.Minute
	}
	if cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = 100
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DEEPSORT_MAX_AGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tracking.MaxAge = n
		}
	}
	if v := os.Getenv("DEEPSORT_MIN_HITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tracking.MinHits = n
		}
	}
	if v := os.Getenv("DEEPSORT_GATE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Tracking.GateThreshold = float32(f)
		}
	}
	if v := os.Getenv("DEEPSORT_APPEARANCE_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Tracking.AppearanceWeight = float32(f)
		}
	}
	if v := os.Getenv("DEEPSORT_DISTANCE"); v != "" {
		cfg.Tracking.Distance = v
	}
	if v := os.Getenv("DEEPSORT_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Detection.MinConfidence = float32(f)
		}
	}
	if v := os.Getenv("DEEPSORT_LABELS_FILE"); v != "" {
		cfg.Detection.LabelsFile = v
	}
	if v := os.Getenv("DEEPSORT_FRAME_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.FrameTimeout = d
		}
	}
	if v := os.Getenv("DEEPSORT_IDLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.IdleTimeout = d
		}
	}
	if v := os.Getenv("DEEPSORT_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DEEPSORT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DEEPSORT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
