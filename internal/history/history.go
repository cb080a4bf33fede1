// Package history keeps undo and redo snapshots of an annotation document.
package history

import "github.com/example/grademark/internal/annotation"

// DefaultLimit bounds the number of undo entries kept per page.
const DefaultLimit = 100

// Stack is a bounded undo stack with a redo buffer. Entries are deep copies
// so later edits to the live document never alter them.
//
// The zero value is ready to use with DefaultLimit.
type Stack struct {
	undo  []annotation.Document
	redo  []annotation.Document
	limit int
}

// New returns a stack that keeps at most limit undo entries. A limit of zero
// or less selects DefaultLimit.
func New(limit int) *Stack {
	return &Stack{limit: limit}
}

func (s *Stack) max() int {
	if s.limit <= 0 {
		return DefaultLimit
	}
	return s.limit
}

// Snapshot records the document as it was before a gesture and clears the
// redo buffer. When the stack is full the oldest entry is dropped.
func (s *Stack) Snapshot(before annotation.Document) {
	s.undo = append(s.undo, before.Clone())
	if over := len(s.undo) - s.max(); over > 0 {
		s.undo = append(s.undo[:0:0], s.undo[over:]...)
	}
	s.redo = nil
}

// Undo pops the latest snapshot and returns it as the new current document,
// moving current onto the redo buffer. With nothing to undo it returns
// current unchanged and false.
func (s *Stack) Undo(current annotation.Document) (annotation.Document, bool) {
	if len(s.undo) == 0 {
		return current, false
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, current.Clone())
	return prev.Clone(), true
}

// Redo is the inverse of Undo.
func (s *Stack) Redo(current annotation.Document) (annotation.Document, bool) {
	if len(s.redo) == 0 {
		return current, false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, current.Clone())
	return next.Clone(), true
}

// Reset drops all undo and redo entries.
func (s *Stack) Reset() {
	s.undo = nil
	s.redo = nil
}

// CanUndo reports whether Undo would change the document.
func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether Redo would change the document.
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// Len returns the number of undo and redo entries.
func (s *Stack) Len() (undo, redo int) { return len(s.undo), len(s.redo) }
