// Package progress tracks which chapters a reader has marked as read.
//
// The whole map is persisted on every change through a Persister. Load
// failures start from an empty map and save failures keep the in-memory
// change; both are logged and never surfaced to the reader.
package progress

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"bible-study/internal/catalog"
)

// RecordName is the name of the durable record holding the progress map.
const RecordName = "bible-reading-progress"

// Map holds the read chapters per book, each sorted ascending.
type Map map[string][]int

// Persister loads and saves the whole progress map.
type Persister interface {
	Load(ctx context.Context) (Map, error)
	Save(ctx context.Context, m Map) error
}

// Store is the in-memory progress map with write-through persistence.
type Store struct {
	mu        sync.Mutex
	chapters  Map
	persister Persister
	log       *slog.Logger
}

// Open loads the persisted map. It never fails: unreadable data yields an
// empty store.
func Open(ctx context.Context, persister Persister, log *slog.Logger) *Store {
	s := &Store{chapters: make(Map), persister: persister, log: log}

	loaded, err := persister.Load(ctx)
	if err != nil {
		log.Warn("could not load reading progress, starting fresh", slog.Any("error", err))
		return s
	}
	s.chapters = normalize(loaded)
	return s
}

// normalize sorts and dedups chapter sets and drops invalid or empty entries.
func normalize(m Map) Map {
	out := make(Map, len(m))
	for book, chapters := range m {
		var kept []int
		for _, ch := range chapters {
			if ch > 0 {
				kept = append(kept, ch)
			}
		}
		slices.Sort(kept)
		kept = slices.Compact(kept)
		if len(kept) > 0 {
			out[book] = kept
		}
	}
	return out
}

// ToggleRead flips the read state of a chapter and persists the map.
// It returns the new state.
func (s *Store) ToggleRead(ctx context.Context, book string, chapter int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	chapters := s.chapters[book]
	idx, found := slices.BinarySearch(chapters, chapter)
	if found {
		chapters = slices.Delete(chapters, idx, idx+1)
		if len(chapters) == 0 {
			delete(s.chapters, book)
		} else {
			s.chapters[book] = chapters
		}
	} else {
		s.chapters[book] = slices.Insert(chapters, idx, chapter)
	}

	if err := s.persister.Save(ctx, s.copyLocked()); err != nil {
		s.log.Error("could not save reading progress",
			slog.String("book", book), slog.Int("chapter", chapter), slog.Any("error", err))
	}
	return !found
}

// IsRead reports whether the chapter has been marked read.
func (s *Store) IsRead(book string, chapter int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, found := slices.BinarySearch(s.chapters[book], chapter)
	return found
}

// ReadCount is the number of chapters marked read in a book.
func (s *Store) ReadCount(book string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chapters[book])
}

// Percent is the share of the book's chapters marked read, 0-100.
func (s *Store) Percent(book catalog.Book) int {
	if book.Chapters <= 0 {
		return 0
	}
	return s.ReadCount(book.Name) * 100 / book.Chapters
}

// Snapshot returns a deep copy of the map.
func (s *Store) Snapshot() Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() Map {
	out := make(Map, len(s.chapters))
	for book, chapters := range s.chapters {
		out[book] = slices.Clone(chapters)
	}
	return out
}
