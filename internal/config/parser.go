package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/grademark/internal/style"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var currentStyle *style.Style

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentStyle = nil

			if name, ok := strings.CutPrefix(section, "style."); ok {
				// Start with defaults so missing keys are fine
				currentStyle = style.Default()
				currentStyle.Name = name
				cfg.Styles[name] = currentStyle
			}
			continue
		}

		// Key = Value or Key: Value
		var key, value string
		if k, v, ok := strings.Cut(line, "="); ok {
			key, value = k, v
		} else if k, v, ok := strings.Cut(line, ":"); ok {
			key, value = k, v
		} else {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentStyle != nil:
			err = currentStyle.Set(key, value)
		case section == "":
			err = setRootField(cfg, key, value)
		case section == "viewport":
			err = setViewportField(&cfg.Viewport, key, value)
		case section == "editor":
			err = setEditorField(&cfg.Editor, key, value)
		case section == "export":
			err = setExportField(&cfg.Export, key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "api_base":
		cfg.APIBase = value
	case "token":
		cfg.Token = value
	case "draft_dir":
		cfg.DraftDir = value
	case "style":
		cfg.Style = value
	}
	return nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	return f, nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	return n, nil
}

func setViewportField(v *Viewport, key, value string) error {
	f, err := parseFloat(key, value)
	if err != nil {
		return err
	}
	switch strings.ToLower(key) {
	case "min_zoom":
		v.MinZoom = f
	case "max_zoom":
		v.MaxZoom = f
	}
	return nil
}

func setEditorField(e *Editor, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "history_limit":
		e.HistoryLimit, err = parseInt(key, value)
	case "max_stroke_points":
		e.MaxStrokePoints, err = parseInt(key, value)
	case "pen_size":
		e.PenSize, err = parseFloat(key, value)
	case "pen_color":
		if _, perr := style.ParseColor(value); perr != nil {
			return perr
		}
		e.PenColor = value
	}
	return err
}

func setExportField(x *Export, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "pixel_ratio":
		x.PixelRatio, err = parseFloat(key, value)
	case "ready_attempts":
		x.ReadyAttempts, err = parseInt(key, value)
	case "ready_interval":
		x.ReadyInterval, err = time.ParseDuration(value)
		if err != nil {
			err = fmt.Errorf("invalid duration for key %s: %w", key, err)
		}
	case "stage_width":
		x.StageWidth, err = parseFloat(key, value)
	}
	return err
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "submit":
		n.Submit = b
	case "render":
		n.Render = b
	case "copy":
		n.Copy = b
	}
	return nil
}
