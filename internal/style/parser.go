package style

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"reflect"
	"strings"
)

var rgbaType = reflect.TypeOf(color.RGBA{})

// Parse reads a preset, one "Key: colour" per line, on top of Default.
func Parse(r io.Reader) (*Style, error) {
	s := Default()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if err := s.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, err
		}
	}
	return s, scanner.Err()
}

// Set assigns one field by case-insensitive name. Unknown keys are ignored.
func (s *Style) Set(key, value string) error {
	if strings.EqualFold(key, "Name") {
		s.Name = value
		return nil
	}
	val := reflect.ValueOf(s).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !strings.EqualFold(f.Name, key) || f.Type != rgbaType {
			continue
		}
		col, err := ParseColor(value)
		if err != nil {
			return fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		val.Field(i).Set(reflect.ValueOf(col))
		return nil
	}
	return nil
}

// Fields returns the colour fields in declaration order, keyed by name.
func (s *Style) Fields() []Field {
	val := reflect.ValueOf(s).Elem()
	typ := val.Type()
	var out []Field
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Type == rgbaType {
			out = append(out, Field{Name: typ.Field(i).Name, Color: val.Field(i).Interface().(color.RGBA)})
		}
	}
	return out
}

// Field is one named colour of a Style.
type Field struct {
	Name  string
	Color color.RGBA
}

// String renders the preset in the format Parse reads.
func (s *Style) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", s.Name)
	for _, f := range s.Fields() {
		fmt.Fprintf(&sb, "%s: %s\n", f.Name, Hex(f.Color))
	}
	return sb.String()
}
