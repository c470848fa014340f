package config

import (
	"errors"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Backend:           BackendGeometric,
		FrameWidth:        360,
		FrameHeight:       240,
		Kp:                0.4,
		Kd:                0.4,
		PIDIntegral:       IntegralOff,
		Confidence:        0.25,
		CascadePath:       "haarcascade_frontalface_default.xml",
		ScaleFactor:       1.1,
		MinNeighbors:      6,
		DroneAddr:         "192.168.10.1:8889",
		CommandTimeout:    time.Second,
		VideoPort:         6038,
		VideoRelayAddr:    "127.0.0.1:11111",
		MaxFrameFailures:  10,
		TickBufferLimit:   10,
		TickFlushInterval: 5,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DETECTOR_BACKEND", "")
	t.Setenv("FRAME_WIDTH", "")
	t.Setenv("PID_KP", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend != BackendGeometric {
		t.Errorf("Expected geometric backend, got %s", cfg.Backend)
	}
	if cfg.FrameWidth != 360 || cfg.FrameHeight != 240 {
		t.Errorf("Expected 360x240, got %dx%d", cfg.FrameWidth, cfg.FrameHeight)
	}
	if cfg.Kp != 0.4 || cfg.Kd != 0.4 || cfg.Ki != 0 {
		t.Errorf("Unexpected gains: %v %v %v", cfg.Kp, cfg.Kd, cfg.Ki)
	}
	if cfg.Confidence != 0.25 {
		t.Errorf("Expected confidence threshold 0.25, got %v", cfg.Confidence)
	}
	if cfg.PIDIntegral != IntegralOff {
		t.Errorf("Expected integral mode off, got %s", cfg.PIDIntegral)
	}
	if cfg.DroneLocalAddr != ":8800" || cfg.VideoPort != 6038 {
		t.Errorf("Unexpected drone ports: %s %d", cfg.DroneLocalAddr, cfg.VideoPort)
	}
	if cfg.VideoURL != "udp://127.0.0.1:11111" || cfg.VideoRelayAddr != "127.0.0.1:11111" {
		t.Errorf("Capture must read the relay: %s %s", cfg.VideoURL, cfg.VideoRelayAddr)
	}
}

func TestLoad_LearnedBackendResolution(t *testing.T) {
	t.Setenv("DETECTOR_BACKEND", "Learned")
	t.Setenv("FRAME_WIDTH", "")
	t.Setenv("FRAME_HEIGHT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != BackendLearned {
		t.Errorf("Expected learned backend, got %s", cfg.Backend)
	}
	if cfg.FrameWidth != 320 || cfg.FrameHeight != 320 {
		t.Errorf("Expected 320x320, got %dx%d", cfg.FrameWidth, cfg.FrameHeight)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PID_KP", "0.7")
	t.Setenv("PID_KI", "0.05")
	t.Setenv("PID_INTEGRAL", "ON")
	t.Setenv("DRONE_COMMAND_TIMEOUT", "250ms")
	t.Setenv("SHOW_WINDOW", "true")
	t.Setenv("FRAME_WIDTH", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Kp != 0.7 || cfg.Ki != 0.05 {
		t.Errorf("Gains not overridden: %v %v", cfg.Kp, cfg.Ki)
	}
	if cfg.PIDIntegral != IntegralOn {
		t.Errorf("Expected integral mode on, got %s", cfg.PIDIntegral)
	}
	if cfg.CommandTimeout != 250*time.Millisecond {
		t.Errorf("Expected 250ms timeout, got %v", cfg.CommandTimeout)
	}
	if !cfg.ShowWindow {
		t.Error("Expected ShowWindow to be true")
	}
	if cfg.FrameWidth != 360 {
		t.Errorf("Invalid FRAME_WIDTH should fall back to default, got %d", cfg.FrameWidth)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		valid  bool
	}{
		{"valid geometric", func(c *Config) {}, true},
		{"valid learned", func(c *Config) { c.Backend = BackendLearned; c.ModelPath = "m.onnx" }, true},
		{"unknown backend", func(c *Config) { c.Backend = "sonar" }, false},
		{"missing cascade", func(c *Config) { c.CascadePath = "" }, false},
		{"scale factor too small", func(c *Config) { c.ScaleFactor = 1 }, false},
		{"learned without model", func(c *Config) { c.Backend = BackendLearned; c.ModelPath = "" }, false},
		{"threshold out of range", func(c *Config) { c.Backend = BackendLearned; c.ModelPath = "m"; c.Confidence = 1.5 }, false},
		{"zero width", func(c *Config) { c.FrameWidth = 0 }, false},
		{"bad integral mode", func(c *Config) { c.PIDIntegral = "maybe" }, false},
		{"no drone address", func(c *Config) { c.DroneAddr = "" }, false},
		{"no timeout", func(c *Config) { c.CommandTimeout = 0 }, false},
		{"no video port", func(c *Config) { c.VideoPort = 0 }, false},
		{"no relay address", func(c *Config) { c.VideoRelayAddr = "" }, false},
		{"no frame failures", func(c *Config) { c.MaxFrameFailures = 0 }, false},
		{"no buffer", func(c *Config) { c.TickBufferLimit = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}
