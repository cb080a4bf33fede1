package style

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff4d4f", color.RGBA{0xff, 0x4d, 0x4f, 0xff}},
		{"#FAAD14", color.RGBA{0xfa, 0xad, 0x14, 0xff}},
		{"#f00", color.RGBA{0xff, 0, 0, 0xff}},
		{"#11223344", color.RGBA{0x11, 0x22, 0x33, 0x44}},
		{"red", color.RGBA{0xff, 0, 0, 0xff}},
		{" Orange ", color.RGBA{0xff, 0xa5, 0, 0xff}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v want %v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "#12", "#gggggg", "notacolor", "#1234567"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) succeeded", bad)
		}
	}
}

func TestColorOr(t *testing.T) {
	fb := color.RGBA{1, 2, 3, 255}
	if ColorOr("", fb) != fb || ColorOr("bogus", fb) != fb {
		t.Fatal("fallback not used")
	}
	if ColorOr("#000000", fb) != (color.RGBA{0, 0, 0, 255}) {
		t.Fatal("valid colour ignored")
	}
}

func TestParseRoundTrip(t *testing.T) {
	s, err := Parse(strings.NewReader("Name: Mine\nrect: #010203\nUnknown: #ffffff\n// comment\n"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "Mine" || s.Rect != (color.RGBA{1, 2, 3, 255}) {
		t.Fatalf("parsed %+v", s)
	}
	if s.Pen != Default().Pen {
		t.Fatal("unset keys should keep defaults")
	}
	again, err := Parse(strings.NewReader(s.String()))
	if err != nil {
		t.Fatal(err)
	}
	if *again != *s {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", again, s)
	}
	if _, err := Parse(strings.NewReader("Pen: nope")); err == nil {
		t.Fatal("expected error for bad colour")
	}
}

func TestLoaderOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "custom.style"), []byte("Name: FromDir\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	preset := Default()
	preset.Name = "FromConfig"
	l := &Loader{ConfigDir: dir, Presets: map[string]*Style{"mine": preset}}

	cases := map[string]string{
		"":       "Default",
		"mine":   "FromConfig",
		"dark":   "Dark",
		"custom": "FromDir",
		filepath.Join(dir, "custom.style"): "FromDir",
	}
	for name, want := range cases {
		s, err := l.Load(name)
		if err != nil {
			t.Errorf("Load(%q): %v", name, err)
			continue
		}
		if s.Name != want {
			t.Errorf("Load(%q).Name = %q want %q", name, s.Name, want)
		}
	}
	if _, err := l.Load("missing"); err == nil {
		t.Error("expected error for missing style")
	}
}
