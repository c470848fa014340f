package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalid is returned by Validate when a setting cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Detector backends.
const (
	BackendGeometric = "geometric"
	BackendLearned   = "learned"
)

// Integral-term modes for the yaw controller.
const (
	IntegralOff = "off"
	IntegralOn  = "on"
)

type Config struct {
	Backend     string
	FrameWidth  int
	FrameHeight int

	Kp           float64
	Kd           float64
	Ki           float64
	PIDIntegral  string
	Confidence   float64 // learned backend rejection threshold, strict
	CascadePath  string
	ScaleFactor  float64
	MinNeighbors int
	ModelPath    string
	ModelConfig  string

	DroneAddr      string
	DroneLocalAddr string
	CommandTimeout time.Duration
	VideoPort      int    // local port the drone streams H.264 to
	VideoRelayAddr string // where the stream is forwarded for VideoURL to read
	VideoURL       string

	MaxFrameFailures int
	ShowWindow       bool

	Port              int
	DatabasePath      string
	TickBufferLimit   int
	TickFlushInterval int // seconds
	LogDirectory      string
	StaticDir         string
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	backend := strings.ToLower(getEnv("DETECTOR_BACKEND", BackendGeometric))
	width, height := DefaultResolution(backend)

	cfg := &Config{
		Backend:     backend,
		FrameWidth:  getEnvAsInt("FRAME_WIDTH", width),
		FrameHeight: getEnvAsInt("FRAME_HEIGHT", height),

		Kp:           getEnvAsFloat("PID_KP", 0.4),
		Kd:           getEnvAsFloat("PID_KD", 0.4),
		Ki:           getEnvAsFloat("PID_KI", 0),
		PIDIntegral:  strings.ToLower(getEnv("PID_INTEGRAL", IntegralOff)),
		Confidence:   getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.25),
		CascadePath:  getEnv("CASCADE_PATH", "haarcascade_frontalface_default.xml"),
		ScaleFactor:  getEnvAsFloat("CASCADE_SCALE_FACTOR", 1.1),
		MinNeighbors: getEnvAsInt("CASCADE_MIN_NEIGHBORS", 6),
		ModelPath:    getEnv("MODEL_PATH", "face_detector.onnx"),
		ModelConfig:  getEnv("MODEL_CONFIG_PATH", ""),

		DroneAddr:      getEnv("DRONE_ADDR", "192.168.10.1:8889"),
		DroneLocalAddr: getEnv("DRONE_LOCAL_ADDR", ":8800"),
		CommandTimeout: getEnvAsDuration("DRONE_COMMAND_TIMEOUT", 7*time.Second),
		VideoPort:      getEnvAsInt("DRONE_VIDEO_PORT", 6038),
		VideoRelayAddr: getEnv("VIDEO_RELAY_ADDR", "127.0.0.1:11111"),
		VideoURL:       getEnv("VIDEO_URL", "udp://127.0.0.1:11111"),

		MaxFrameFailures: getEnvAsInt("MAX_FRAME_FAILURES", 30),
		ShowWindow:       getEnvAsBool("SHOW_WINDOW", false),

		Port:              getEnvAsInt("PORT", 8080),
		DatabasePath:      getEnv("DATABASE_PATH", filepath.Join(".", "data", "flights.db")),
		TickBufferLimit:   getEnvAsInt("TICK_BUFFER_LIMIT", 50),
		TickFlushInterval: getEnvAsInt("TICK_FLUSH_INTERVAL", 5),
		LogDirectory:      getEnv("LOG_DIR", filepath.Join(".", "logs")),
		StaticDir:         getEnv("STATIC_DIR", "static"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultResolution returns the frame size each detector backend expects.
func DefaultResolution(backend string) (int, int) {
	if backend == BackendLearned {
		return 320, 320
	}
	return 360, 240
}

// Validate fails fast on settings that would silently degrade the pipeline.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGeometric:
		if c.CascadePath == "" {
			return fmt.Errorf("%w: CASCADE_PATH is required for the geometric backend", ErrInvalid)
		}
		if c.ScaleFactor <= 1 {
			return fmt.Errorf("%w: CASCADE_SCALE_FACTOR must be > 1, got %v", ErrInvalid, c.ScaleFactor)
		}
	case BackendLearned:
		if c.ModelPath == "" {
			return fmt.Errorf("%w: MODEL_PATH is required for the learned backend", ErrInvalid)
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			return fmt.Errorf("%w: CONFIDENCE_THRESHOLD must be in [0, 1], got %v", ErrInvalid, c.Confidence)
		}
	default:
		return fmt.Errorf("%w: unknown DETECTOR_BACKEND %q", ErrInvalid, c.Backend)
	}

	if c.FrameWidth <= 0 || c.FrameHeight <= 0 {
		return fmt.Errorf("%w: frame size must be positive, got %dx%d", ErrInvalid, c.FrameWidth, c.FrameHeight)
	}
	if c.PIDIntegral != IntegralOff && c.PIDIntegral != IntegralOn {
		return fmt.Errorf("%w: PID_INTEGRAL must be %q or %q, got %q", ErrInvalid, IntegralOff, IntegralOn, c.PIDIntegral)
	}
	if c.DroneAddr == "" {
		return fmt.Errorf("%w: DRONE_ADDR is required", ErrInvalid)
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("%w: DRONE_COMMAND_TIMEOUT must be positive", ErrInvalid)
	}
	if c.VideoPort <= 0 || c.VideoRelayAddr == "" {
		return fmt.Errorf("%w: DRONE_VIDEO_PORT and VIDEO_RELAY_ADDR are required", ErrInvalid)
	}
	if c.MaxFrameFailures <= 0 {
		return fmt.Errorf("%w: MAX_FRAME_FAILURES must be positive", ErrInvalid)
	}
	if c.TickBufferLimit <= 0 || c.TickFlushInterval <= 0 {
		return fmt.Errorf("%w: tick buffer limit and flush interval must be positive", ErrInvalid)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
