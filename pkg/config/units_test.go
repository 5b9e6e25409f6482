package config

import (
	"math"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"10s", 10 * time.Second, false},
		{"1m", 1 * time.Minute, false},
		{"1.5h", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 168 * time.Hour, false},
		{"2d2h", 50 * time.Hour, false},
		{"500ms", 500 * time.Millisecond, false},
		{"", 0, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"100m/s", 100, false},
		{"360km/h", 100, false},
		{"3600kn", 1852, false},
		{"250", 250, false},
		{" 42 m/s ", 42, false},
		{"fast", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSpeed(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSpeed(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("ParseSpeed(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestYAMLUnmarshal(t *testing.T) {
	type TestConfig struct {
		Time  Duration `yaml:"time"`
		Speed Speed    `yaml:"speed"`
		Plain Speed    `yaml:"plain"`
	}

	yamlData := `
time: 2d
speed: 180km/h
plain: 75
`
	var cfg TestConfig
	if err := yaml.Unmarshal([]byte(yamlData), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if time.Duration(cfg.Time) != 48*time.Hour {
		t.Errorf("Expected 48h, got %v", time.Duration(cfg.Time))
	}
	if math.Abs(float64(cfg.Speed)-50) > 1e-9 {
		t.Errorf("Expected 50 m/s, got %v", cfg.Speed)
	}
	if cfg.Plain != 75 {
		t.Errorf("Expected 75 m/s, got %v", cfg.Plain)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	type TestConfig struct {
		Time  Duration `yaml:"time"`
		Speed Speed    `yaml:"speed"`
	}
	in := TestConfig{Time: Duration(4 * time.Second), Speed: 120}

	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out TestConfig
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
