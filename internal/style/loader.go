package style

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed defaults/*.style
var embedded embed.FS

// Loader resolves a preset name to a Style.
type Loader struct {
	ConfigDir string
	SystemDir string
	// Presets are the [style.<name>] sections of the configuration file.
	Presets map[string]*Style
}

// NewLoader creates a Loader with the standard search paths.
func NewLoader(presets map[string]*Style) *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "grademark", "styles"),
		SystemDir: "/usr/share/grademark/styles",
		Presets:   presets,
	}
}

// Load finds a preset, trying in order: a file path, the configuration
// presets, the embedded presets, ConfigDir and SystemDir. An empty name
// selects Default.
func (l *Loader) Load(name string) (*Style, error) {
	if name == "" {
		return Default(), nil
	}
	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}
	if s, ok := l.Presets[name]; ok {
		return s, nil
	}
	filename := name
	if !strings.HasSuffix(filename, ".style") {
		filename += ".style"
	}
	if f, err := embedded.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return Parse(f)
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, filename)
		if _, err := os.Stat(p); err == nil {
			return parseFile(p)
		}
	}
	return nil, fmt.Errorf("style %q not found", name)
}

func parseFile(path string) (*Style, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("style %s: %w", path, err)
	}
	return s, nil
}
