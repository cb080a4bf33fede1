package annotate

import (
	"fmt"
	"strings"
)

// Tool selects how pointer gestures are interpreted.
type Tool int

const (
	ToolPan Tool = iota
	ToolFreehand
	ToolRect
	ToolText
)

var toolNames = map[Tool]string{
	ToolPan:      "pan",
	ToolFreehand: "freehand",
	ToolRect:     "rect",
	ToolText:     "text",
}

func (t Tool) String() string {
	if n, ok := toolNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ParseTool accepts the tool names used on the command line. "move" and
// "pen" are accepted as aliases of pan and freehand.
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pan", "move":
		return ToolPan, nil
	case "freehand", "pen", "draw":
		return ToolFreehand, nil
	case "rect", "rectangle":
		return ToolRect, nil
	case "text":
		return ToolText, nil
	}
	return ToolPan, fmt.Errorf("unknown tool %q", s)
}
