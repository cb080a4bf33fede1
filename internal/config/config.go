package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/example/grademark/internal/style"
)

// Viewport holds the zoom bounds.
type Viewport struct {
	MinZoom float64
	MaxZoom float64
}

// Editor holds annotation editing settings.
type Editor struct {
	HistoryLimit    int
	MaxStrokePoints int
	PenSize         float64
	PenColor        string
}

// Export holds settings of the submit pipeline.
type Export struct {
	PixelRatio    float64
	ReadyAttempts int
	ReadyInterval time.Duration
	StageWidth    float64
}

// Notify holds notification settings.
type Notify struct {
	Submit bool
	Render bool
	Copy   bool
}

// Config holds the application configuration.
type Config struct {
	APIBase  string
	Token    string
	DraftDir string
	Style    string
	Viewport Viewport
	Editor   Editor
	Export   Export
	Notify   Notify
	Styles   map[string]*style.Style
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Viewport: Viewport{MinZoom: 0.1, MaxZoom: 10},
		Editor: Editor{
			HistoryLimit:    100,
			MaxStrokePoints: 10000,
			PenSize:         3,
			PenColor:        "#ff0000",
		},
		Export: Export{
			PixelRatio:    2,
			ReadyAttempts: 30,
			ReadyInterval: 50 * time.Millisecond,
			StageWidth:    1000,
		},
		Notify: Notify{Submit: true},
		Styles: make(map[string]*style.Style),
	}
}

// Env variables read by ApplyEnv.
const (
	EnvAPIBase  = "GRADEMARK_API_BASE"
	EnvToken    = "GRADEMARK_TOKEN"
	EnvDraftDir = "GRADEMARK_DRAFT_DIR"
	EnvStyle    = "GRADEMARK_STYLE"
)

// ApplyEnv overrides settings from the environment. getenv is normally
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	for name, dst := range map[string]*string{
		EnvAPIBase:  &c.APIBase,
		EnvToken:    &c.Token,
		EnvDraftDir: &c.DraftDir,
		EnvStyle:    &c.Style,
	} {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}
}

// DraftPath returns the directory drafts are kept in, defaulting to
// ~/.local/share/grademark/drafts.
func (c *Config) DraftPath() string {
	if c.DraftDir != "" {
		return c.DraftDir
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "grademark", "drafts")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "grademark", "drafts")
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.APIBase != "" {
		fmt.Fprintf(&sb, "api_base = %s\n", c.APIBase)
	}
	if c.Token != "" {
		fmt.Fprintf(&sb, "token = %s\n", c.Token)
	}
	if c.DraftDir != "" {
		fmt.Fprintf(&sb, "draft_dir = %s\n", c.DraftDir)
	}
	if c.Style != "" {
		fmt.Fprintf(&sb, "style = %s\n", c.Style)
	}
	sb.WriteString("\n")

	sb.WriteString("[viewport]\n")
	fmt.Fprintf(&sb, "min_zoom = %v\n", c.Viewport.MinZoom)
	fmt.Fprintf(&sb, "max_zoom = %v\n", c.Viewport.MaxZoom)
	sb.WriteString("\n")

	sb.WriteString("[editor]\n")
	fmt.Fprintf(&sb, "history_limit = %d\n", c.Editor.HistoryLimit)
	fmt.Fprintf(&sb, "max_stroke_points = %d\n", c.Editor.MaxStrokePoints)
	fmt.Fprintf(&sb, "pen_size = %v\n", c.Editor.PenSize)
	fmt.Fprintf(&sb, "pen_color = %s\n", c.Editor.PenColor)
	sb.WriteString("\n")

	sb.WriteString("[export]\n")
	fmt.Fprintf(&sb, "pixel_ratio = %v\n", c.Export.PixelRatio)
	fmt.Fprintf(&sb, "ready_attempts = %d\n", c.Export.ReadyAttempts)
	fmt.Fprintf(&sb, "ready_interval = %s\n", c.Export.ReadyInterval)
	fmt.Fprintf(&sb, "stage_width = %v\n", c.Export.StageWidth)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "submit = %v\n", c.Notify.Submit)
	fmt.Fprintf(&sb, "render = %v\n", c.Notify.Render)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var names []string
	for name := range c.Styles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&sb, "[style.%s]\n", name)
		sb.WriteString(c.Styles[name].String())
		sb.WriteString("\n")
	}

	return sb.String()
}
