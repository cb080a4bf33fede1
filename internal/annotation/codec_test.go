package annotation

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMarshalRoundTrip(t *testing.T) {
	doc := Document{
		Strokes: []Stroke{{OriginX: 1, OriginY: 2, Points: []Point{{3, 4}, {5, 6}}, StrokeWidth: 3, Color: "#ff0000"}},
		Rects:   []Rect{{X: 10, Y: 20, Width: 40, Height: 30, Color: "#ff4d4f", StrokeWidth: 2}},
		Texts:   []Text{{X: 7, Y: 8, Text: "well done", Color: "#1677ff", FontSize: 28}},
	}
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(doc) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, doc)
	}
}

func TestMarshalUsesFlatPoints(t *testing.T) {
	data, err := Marshal(Document{Strokes: []Stroke{{Points: []Point{{1, 2}, {3, 4}}}}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"points":[1,2,3,4]`) {
		t.Fatalf("expected flat point list, got %s", data)
	}
	if !strings.Contains(string(data), `"rects":[]`) {
		t.Fatalf("empty sequences should serialize as arrays, got %s", data)
	}
}

func TestUnmarshalUpgradesLegacyDrafts(t *testing.T) {
	legacy := `{"lines":[{"points":[1,2,3,4,5],"strokeWidth":3,"color":"#faad14"}],
		"rects":[{"x":50,"y":50,"width":-40,"height":-30}]}`
	doc, err := Unmarshal([]byte(legacy))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(doc.Strokes) != 1 {
		t.Fatalf("expected one stroke, got %d", len(doc.Strokes))
	}
	s := doc.Strokes[0]
	if s.OriginX != 0 || s.OriginY != 0 {
		t.Fatalf("missing origin should default to zero, got (%v,%v)", s.OriginX, s.OriginY)
	}
	if len(s.Points) != 2 {
		t.Fatalf("dangling coordinate should be dropped, got %v", s.Points)
	}
	if doc.Texts != nil {
		t.Fatalf("missing texts should decode empty, got %v", doc.Texts)
	}
	if want := (Rect{X: 10, Y: 20, Width: 40, Height: 30}); doc.Rects[0] != want {
		t.Fatalf("rect = %+v, want %+v", doc.Rects[0], want)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte("{not json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestDocumentImplementsJSON(t *testing.T) {
	in := Document{Texts: []Text{{Text: "x"}}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Equal(in) {
		t.Fatalf("got %+v want %+v", out, in)
	}
}
