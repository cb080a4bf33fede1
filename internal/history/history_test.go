package history

import (
	"fmt"
	"testing"

	"github.com/example/grademark/internal/annotation"
)

// gesture mimics a controller gesture: snapshot then mutate.
func gesture(s *Stack, doc annotation.Document, i int) annotation.Document {
	s.Snapshot(doc)
	return annotation.Apply(doc, annotation.AppendText{Text: annotation.Text{Text: fmt.Sprint(i)}})
}

func TestUndoRedoInverse(t *testing.T) {
	s := New(0)
	var states []annotation.Document
	doc := annotation.Document{}
	states = append(states, doc)
	for i := 0; i < 5; i++ {
		doc = gesture(s, doc, i)
		states = append(states, doc)
	}

	for i := len(states) - 2; i >= 0; i-- {
		var ok bool
		doc, ok = s.Undo(doc)
		if !ok {
			t.Fatalf("undo %d reported no change", i)
		}
		if !doc.Equal(states[i]) {
			t.Fatalf("after undo expected state %d, got %+v", i, doc)
		}
	}
	if _, ok := s.Undo(doc); ok {
		t.Fatal("undo on empty stack should be a no-op")
	}
	for i := 1; i < len(states); i++ {
		var ok bool
		doc, ok = s.Redo(doc)
		if !ok || !doc.Equal(states[i]) {
			t.Fatalf("redo to state %d failed: ok=%v doc=%+v", i, ok, doc)
		}
	}
}

func TestNewGestureClearsRedo(t *testing.T) {
	s := New(0)
	doc := gesture(s, annotation.Document{}, 1)
	doc = gesture(s, doc, 2)
	doc, _ = s.Undo(doc)
	if !s.CanRedo() {
		t.Fatal("expected redo entry after undo")
	}
	doc = gesture(s, doc, 3)
	got, ok := s.Redo(doc)
	if ok {
		t.Fatal("redo should be a no-op after a new gesture")
	}
	if !got.Equal(doc) {
		t.Fatal("no-op redo must return the current document")
	}
}

func TestSnapshotIsIsolatedFromLaterEdits(t *testing.T) {
	s := New(0)
	doc := annotation.Document{Strokes: []annotation.Stroke{{Points: []annotation.Point{{X: 1, Y: 1}}}}}
	s.Snapshot(doc)
	doc.Strokes[0].Points[0].X = 42
	restored, _ := s.Undo(doc)
	if restored.Strokes[0].Points[0].X != 1 {
		t.Fatalf("snapshot changed with the live document: %+v", restored)
	}
}

func TestLimitDropsOldest(t *testing.T) {
	s := New(3)
	doc := annotation.Document{}
	for i := 0; i < 5; i++ {
		doc = gesture(s, doc, i)
	}
	if u, _ := s.Len(); u != 3 {
		t.Fatalf("expected 3 undo entries, got %d", u)
	}
	for s.CanUndo() {
		doc, _ = s.Undo(doc)
	}
	if len(doc.Texts) != 2 {
		t.Fatalf("oldest reachable state should have 2 texts, got %d", len(doc.Texts))
	}
}

func TestReset(t *testing.T) {
	var s Stack
	doc := gesture(&s, annotation.Document{}, 1)
	s.Undo(doc)
	s.Reset()
	if s.CanUndo() || s.CanRedo() {
		t.Fatal("Reset should drop all entries")
	}
}
