package draft

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/example/grademark/internal/annotation"
)

func sampleDoc() annotation.Document {
	return annotation.Document{
		Strokes: []annotation.Stroke{{Points: []annotation.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, StrokeWidth: 3, Color: "#ff0000"}},
		Rects:   []annotation.Rect{{X: 10, Y: 20, Width: 40, Height: 30, Color: "#ff4d4f", StrokeWidth: 2}},
		Texts:   []annotation.Text{{X: 5, Y: 6, Text: "redo", Color: "#1677ff", FontSize: 28}},
	}
}

func stores(t *testing.T) map[string]*Store {
	return map[string]*Store{
		"memory": NewStore(NewMemoryKV()),
		"dir":    NewStore(DirKV{Dir: filepath.Join(t.TempDir(), "drafts")}),
	}
}

func TestKeyFormat(t *testing.T) {
	if got := Key("c1_l2_s3", "p/1.png"); got != "grading_draft_c1_l2_s3_p/1.png" {
		t.Fatalf("Key = %q", got)
	}
	if got := Prefix("c1_l2_s3"); got != "grading_draft_c1_l2_s3_" {
		t.Fatalf("Prefix = %q", got)
	}
}

func TestSaveLoadIdempotent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			doc := sampleDoc()
			if err := s.Save("sub", "p1", doc); err != nil {
				t.Fatal(err)
			}
			if err := s.Save("sub", "p1", doc); err != nil {
				t.Fatal(err)
			}
			got, ok := s.Load("sub", "p1")
			if !ok || !got.Equal(doc) {
				t.Fatalf("Load = %+v, %v", got, ok)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok := s.Load("sub", "nope"); ok {
				t.Fatal("expected no draft")
			}
		})
	}
}

func TestClearAndClearAll(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, p := range []string{"p1", "p2", "a/b.png"} {
				if err := s.Save("sub", p, sampleDoc()); err != nil {
					t.Fatal(err)
				}
			}
			if err := s.Save("other", "p1", sampleDoc()); err != nil {
				t.Fatal(err)
			}
			s.Clear("sub", "p1")
			if _, ok := s.Load("sub", "p1"); ok {
				t.Fatal("p1 still present")
			}
			if got, want := s.Pages("sub"), []string{"a/b.png", "p2"}; !reflect.DeepEqual(got, want) {
				t.Fatalf("Pages = %v want %v", got, want)
			}
			s.ClearAll("sub")
			if got := s.Pages("sub"); len(got) != 0 {
				t.Fatalf("Pages after ClearAll = %v", got)
			}
			if _, ok := s.Load("other", "p1"); !ok {
				t.Fatal("ClearAll removed another submission's draft")
			}
		})
	}
}

func TestCorruptDraftTreatedAsMissing(t *testing.T) {
	kv := NewMemoryKV()
	if err := kv.Set(Key("sub", "p1"), []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if _, ok := NewStore(kv).Load("sub", "p1"); ok {
		t.Fatal("corrupt draft should be treated as absent")
	}
}

type failingKV struct{ *MemoryKV }

func (failingKV) Get(string) ([]byte, bool, error) { return nil, false, errors.New("disk gone") }

func TestReadFailureTreatedAsMissing(t *testing.T) {
	s := NewStore(failingKV{NewMemoryKV()})
	if _, ok := s.Load("sub", "p1"); ok {
		t.Fatal("read failure should be treated as absent")
	}
}

func TestLegacyDraftUpgraded(t *testing.T) {
	kv := NewMemoryKV()
	legacy := `{"lines":[{"points":[1,2,3,4],"strokeWidth":3,"color":"#ff0000"}]}`
	if err := kv.Set(Key("sub", "p1"), []byte(legacy)); err != nil {
		t.Fatal(err)
	}
	doc, ok := NewStore(kv).Load("sub", "p1")
	if !ok || len(doc.Strokes) != 1 || doc.Strokes[0].OriginX != 0 {
		t.Fatalf("Load = %+v, %v", doc, ok)
	}
}

func TestDirKVLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	kv := DirKV{Dir: dir}
	if err := kv.Set("grading_draft_x_p1", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if err := kv.Remove("grading_draft_x_missing"); err != nil {
		t.Fatalf("removing a missing key: %v", err)
	}
}

func TestDirKVMissingDir(t *testing.T) {
	kv := DirKV{Dir: filepath.Join(t.TempDir(), "absent")}
	keys, err := kv.Keys("")
	if err != nil || len(keys) != 0 {
		t.Fatalf("Keys = %v, %v", keys, err)
	}
}
