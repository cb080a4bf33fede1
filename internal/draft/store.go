// Package draft persists per-page annotation documents between sessions.
package draft

import (
	"strings"

	"github.com/example/grademark/internal/annotation"
	"github.com/example/grademark/internal/logging"
)

const keyPrefix = "grading_draft_"

// Key returns the storage key of one page's draft.
func Key(submission, page string) string {
	return keyPrefix + submission + "_" + page
}

// Prefix returns the key prefix shared by all drafts of a submission.
func Prefix(submission string) string {
	return keyPrefix + submission + "_"
}

// Store saves and loads drafts through a KV. Storage failures never reach
// the caller as errors on the read path: a draft that cannot be read or
// decoded is logged and treated as absent.
type Store struct {
	kv KV
}

// NewStore wraps kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Save writes doc as the draft of the given page, overwriting any
// previous draft.
func (s *Store) Save(submission, page string, doc annotation.Document) error {
	b, err := annotation.Marshal(doc)
	if err != nil {
		return err
	}
	key := Key(submission, page)
	if err := s.kv.Set(key, b); err != nil {
		logging.Logger().Warn("draft save failed", "key", key, "err", err)
		return err
	}
	return nil
}

// Load returns the stored draft of a page and whether one was found.
func (s *Store) Load(submission, page string) (annotation.Document, bool) {
	key := Key(submission, page)
	b, ok, err := s.kv.Get(key)
	if err != nil {
		logging.Logger().Warn("draft read failed", "key", key, "err", err)
		return annotation.Document{}, false
	}
	if !ok {
		return annotation.Document{}, false
	}
	doc, err := annotation.Unmarshal(b)
	if err != nil {
		logging.Logger().Warn("draft unreadable, ignoring", "key", key, "err", err)
		return annotation.Document{}, false
	}
	return doc, true
}

// Clear removes one page's draft.
func (s *Store) Clear(submission, page string) {
	key := Key(submission, page)
	if err := s.kv.Remove(key); err != nil {
		logging.Logger().Warn("draft remove failed", "key", key, "err", err)
	}
}

// ClearAll removes every draft of a submission.
func (s *Store) ClearAll(submission string) {
	if err := s.kv.RemoveAllWithPrefix(Prefix(submission)); err != nil {
		logging.Logger().Warn("draft purge failed", "submission", submission, "err", err)
	}
}

// Pages lists the page ids that have a stored draft.
func (s *Store) Pages(submission string) []string {
	prefix := Prefix(submission)
	keys, err := s.kv.Keys(prefix)
	if err != nil {
		logging.Logger().Warn("draft list failed", "submission", submission, "err", err)
		return nil
	}
	pages := make([]string, 0, len(keys))
	for _, k := range keys {
		pages = append(pages, strings.TrimPrefix(k, prefix))
	}
	return pages
}
