package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	input := `
api_base = https://api.example.com/v1
token = "secret"
style = contrast

[viewport]
min_zoom = 0.25
max_zoom = 8

[editor]
history_limit = 50
pen_size = 5
pen_color = #1677ff

[export]
pixel_ratio = 3
ready_interval = 100ms

[notify]
submit = false
copy = true

[style.contrast]
Rect = #000000
Pen: #00ff00
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.APIBase != "https://api.example.com/v1" || cfg.Token != "secret" || cfg.Style != "contrast" {
		t.Errorf("root section = %q %q %q", cfg.APIBase, cfg.Token, cfg.Style)
	}
	if cfg.Viewport.MinZoom != 0.25 || cfg.Viewport.MaxZoom != 8 {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Editor.HistoryLimit != 50 || cfg.Editor.PenSize != 5 || cfg.Editor.PenColor != "#1677ff" {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if cfg.Editor.MaxStrokePoints != 10000 {
		t.Errorf("unset key lost its default: %d", cfg.Editor.MaxStrokePoints)
	}
	if cfg.Export.PixelRatio != 3 || cfg.Export.ReadyInterval != 100*time.Millisecond || cfg.Export.ReadyAttempts != 30 {
		t.Errorf("export = %+v", cfg.Export)
	}
	if cfg.Notify.Submit || !cfg.Notify.Copy {
		t.Errorf("notify = %+v", cfg.Notify)
	}
	s, ok := cfg.Styles["contrast"]
	if !ok {
		t.Fatal("Expected style 'contrast' to be loaded")
	}
	if s.Rect.R != 0 || s.Rect.A != 255 || s.Pen.G != 0xff {
		t.Errorf("style = %+v", s)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"[notify]\nsubmit = maybe\n",
		"[editor]\nhistory_limit = lots\n",
		"[editor]\npen_color = nope\n",
		"[export]\nready_interval = soon\n",
		"[style.x]\nRect = #zz\n",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `api_base = http://localhost:8080
draft_dir = /tmp/drafts
style = custom

[export]
stage_width = 800
ready_interval = 20ms

[notify]
submit = true
render = true
copy = false

[style.custom]
Name = custom
Stage = #000000
Text = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}
	cfg2, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	if cfg.APIBase != cfg2.APIBase || cfg.DraftDir != cfg2.DraftDir || cfg.Style != cfg2.Style {
		t.Errorf("root mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Export != cfg2.Export || cfg.Editor != cfg2.Editor || cfg.Viewport != cfg2.Viewport {
		t.Errorf("section mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	s1, s2 := cfg.Styles["custom"], cfg2.Styles["custom"]
	if s1 == nil || s2 == nil {
		t.Fatalf("Custom style missing in one config")
	}
	if *s1 != *s2 {
		t.Errorf("style mismatch: %+v vs %+v", s1, s2)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := New()
	cfg.APIBase = "from-file"
	env := map[string]string{EnvAPIBase: "from-env", EnvToken: "tok"}
	cfg.ApplyEnv(func(k string) string { return env[k] })
	if cfg.APIBase != "from-env" || cfg.Token != "tok" || cfg.DraftDir != "" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoaderPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv(EnvStyle, "")

	override := filepath.Join(dir, "override.rc")
	if err := os.WriteFile(override, []byte("style = dark\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader("1.0.0", override)
	cfg, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Style != "dark" {
		t.Fatalf("style = %q", cfg.Style)
	}

	l = NewLoader("1.0.0", "")
	if got := l.GetConfigPath(); got != "" {
		t.Fatalf("unexpected config path %q", got)
	}
	path, err := l.Save(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "xdg", "grademark", "config.rc") {
		t.Fatalf("saved to %q", path)
	}
	if got := l.GetConfigPath(); got != path {
		t.Fatalf("saved config not found: %q", got)
	}
	again, err := l.Load()
	if err != nil || again.Style != "dark" {
		t.Fatalf("reload = %+v, %v", again, err)
	}
}
