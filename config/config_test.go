package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate()=%v", err)
	}
	if cfg.TickInterval() != time.Second/30 {
		t.Errorf("TickInterval()=%v", cfg.TickInterval())
	}
	low, high, err := cfg.Colors()
	if err != nil {
		t.Fatal(err)
	}
	if low.Hex() != "#ff0000" || high.Hex() != "#0000ff" {
		t.Errorf("Colors()=%s,%s; expected red, blue", low.Hex(), high.Hex())
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("max_depth: 2\nchild_scale: 0.25\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDepth != 2 || cfg.ChildScale != 0.25 {
		t.Errorf("Parse did not apply overrides: %+v", cfg)
	}
	if cfg.MaxTwist != Default().MaxTwist || cfg.Mesh != "cube" {
		t.Errorf("Parse dropped defaults: %+v", cfg)
	}
}

func TestParseJson(t *testing.T) {
	cfg, err := Parse([]byte(`{"max_depth": 1, "mesh": "sphere"}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDepth != 1 || cfg.Mesh != "sphere" {
		t.Errorf("Parse(json)=%+v", cfg)
	}
}

var invalidConfigs = []string{
	"max_depth: -1",
	"max_depth: 9",
	"child_scale: 0",
	"max_rotation_speed: -5",
	"max_twist: -1",
	"spawn_delay_min: 0.6",
	"spawn_delay_min: -0.1",
	"ticks_per_second: 0",
	"ticks_per_second: 2000000000",
	"child_scale: .nan",
	"child_scale: .inf",
	"max_rotation_speed: .nan",
	"max_twist: .inf",
	"spawn_delay_min: .nan",
	"spawn_delay_max: .inf",
	"material: {roughness: .nan}",
	"low_color: nope",
	"high_color: '#12'",
	"max_depth: [1, 2]",
}

func TestParseRejects(t *testing.T) {
	for _, in := range invalidConfigs {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("Parse(%q) expected error", in)
		}
	}
}

func TestTickIntervalOfValidConfig(t *testing.T) {
	cfg, err := Parse([]byte("ticks_per_second: 1000"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TickInterval() <= 0 {
		t.Errorf("TickInterval()=%v", cfg.TickInterval())
	}
}

func TestZeroDepthIsValid(t *testing.T) {
	if _, err := Parse([]byte("max_depth: 0")); err != nil {
		t.Errorf("max_depth 0 rejected: %v", err)
	}
}

func TestMergeLeavesConfigOnError(t *testing.T) {
	cfg := Default()
	if err := cfg.Merge([]byte("max_depth: 20")); err == nil {
		t.Fatal("expected error")
	}
	if cfg.MaxDepth != Default().MaxDepth {
		t.Errorf("failed Merge modified config: %d", cfg.MaxDepth)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fractal.yaml")
	if err := ioutil.WriteFile(path, []byte("max_depth: 3\nseed: 42\n"), 0666); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDepth != 3 || cfg.Seed != 42 {
		t.Errorf("Load=%+v", cfg)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) expected error")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("LoadOrDefault(\"\")=%+v", cfg)
	}
}
