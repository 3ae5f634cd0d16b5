// Package reader drives book and chapter selection, chapter loading,
// verse pagination and verse selection for the reading view.
//
// Reader does no I/O. Selecting a book or chapter returns a LoadRequest
// that the caller runs (see Run) and hands back through ApplyLoad. Every
// request carries a sequence number and only the most recent one is
// applied, so a slow response for an earlier selection cannot replace the
// chapter the reader has since moved to.
package reader

import (
	"context"
	"errors"
	"fmt"

	"bible-study/internal/catalog"
	"bible-study/internal/scripture"
)

// PageSize is the number of verses shown at once.
const PageSize = 3

var (
	ErrUnknownBook       = errors.New("unknown book")
	ErrNoBookSelected    = errors.New("no book selected")
	ErrChapterOutOfRange = errors.New("chapter out of range")
)

// State is the coarse position of the reader in its lifecycle.
type State int

const (
	NoBookSelected State = iota
	BookSelected
	ChapterLoading
	ChapterLoaded
	ChapterLoadFailed
)

func (s State) String() string {
	switch s {
	case NoBookSelected:
		return "no-book-selected"
	case BookSelected:
		return "book-selected"
	case ChapterLoading:
		return "chapter-loading"
	case ChapterLoaded:
		return "chapter-loaded"
	case ChapterLoadFailed:
		return "chapter-load-failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SelectedVerse is the verse the reader has highlighted.
type SelectedVerse struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// LoadRequest asks the caller to fetch a chapter.
type LoadRequest struct {
	Book    string
	Chapter int
	Seq     uint64
}

// LoadResult is the outcome of running a LoadRequest.
type LoadResult struct {
	Request LoadRequest
	Data    *scripture.ChapterData
	Err     error
}

// Run executes a load request against a fetcher.
func Run(ctx context.Context, f scripture.Fetcher, req LoadRequest) LoadResult {
	data, err := f.FetchChapter(ctx, req.Book, req.Chapter)
	return LoadResult{Request: req, Data: data, Err: err}
}

type Reader struct {
	book     catalog.Book
	hasBook  bool
	chapter  int
	data     *scripture.ChapterData
	loading  bool
	loadErr  error
	offset   int
	selected *SelectedVerse

	seq  uint64
	last LoadRequest
}

func New() *Reader {
	return &Reader{}
}

// SelectBook switches to a book at chapter 1. An empty name deselects.
func (r *Reader) SelectBook(name string) (*LoadRequest, error) {
	if name == "" {
		r.hasBook = false
		r.book = catalog.Book{}
		r.chapter = 0
		r.data = nil
		r.loading = false
		r.loadErr = nil
		r.offset = 0
		r.selected = nil
		r.last = LoadRequest{}
		r.seq++
		return nil, nil
	}

	book, ok := catalog.FindBook(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBook, name)
	}

	r.book = book
	r.hasBook = true
	r.chapter = 1
	r.offset = 0
	r.selected = nil
	return r.request(), nil
}

// SelectChapter moves to chapter n of the current book.
func (r *Reader) SelectChapter(n int) (*LoadRequest, error) {
	if !r.hasBook {
		return nil, ErrNoBookSelected
	}
	if n < 1 || n > r.book.Chapters {
		return nil, fmt.Errorf("%w: %s has %d chapters", ErrChapterOutOfRange, r.book.Name, r.book.Chapters)
	}

	r.chapter = n
	r.offset = 0
	r.selected = nil
	return r.request(), nil
}

// Reload fetches the current chapter again, for example after the source
// switched translation. It returns nil when no book is selected.
func (r *Reader) Reload() *LoadRequest {
	if !r.hasBook {
		return nil
	}
	r.last = LoadRequest{}
	r.offset = 0
	r.selected = nil
	return r.request()
}

// request issues a load for the current pair unless that pair is already
// loaded or loading. A pair whose last load failed is fetched again.
func (r *Reader) request() *LoadRequest {
	if r.last.Seq != 0 && r.last.Book == r.book.Name && r.last.Chapter == r.chapter && r.loadErr == nil {
		return nil
	}

	r.seq++
	r.last = LoadRequest{Book: r.book.Name, Chapter: r.chapter, Seq: r.seq}
	r.loading = true
	r.data = nil
	r.loadErr = nil

	req := r.last
	return &req
}

// ApplyLoad stores a load outcome. It returns false and changes nothing when
// the result belongs to a superseded request.
func (r *Reader) ApplyLoad(res LoadResult) bool {
	if res.Request.Seq == 0 || res.Request.Seq != r.last.Seq {
		return false
	}

	r.loading = false
	r.offset = 0
	if res.Err != nil {
		r.loadErr = res.Err
		r.data = nil
		return true
	}
	if res.Data == nil {
		r.loadErr = fmt.Errorf("%s %d: %w", res.Request.Book, res.Request.Chapter, scripture.ErrChapterNotFound)
		return true
	}
	r.data = res.Data
	return true
}

// AdvancePage moves forward one page. It is a no-op on the last page.
func (r *Reader) AdvancePage() bool {
	next := r.offset + PageSize
	if next > r.verseCount()-1 {
		return false
	}
	r.offset = next
	r.selected = nil
	return true
}

// RetreatPage moves back one page. It is a no-op on the first page.
func (r *Reader) RetreatPage() bool {
	if r.offset == 0 {
		return false
	}
	r.offset = max(0, r.offset-PageSize)
	r.selected = nil
	return true
}

// SetPage jumps to a zero-based page index, clamped to the chapter.
func (r *Reader) SetPage(page int) bool {
	n := r.verseCount()
	if n == 0 {
		return false
	}
	offset := min(max(0, page)*PageSize, (n-1)/PageSize*PageSize)
	if offset == r.offset {
		return false
	}
	r.offset = offset
	r.selected = nil
	return true
}

// ShowVerse turns to the page holding verse number n and selects it.
func (r *Reader) ShowVerse(n int) bool {
	if r.data == nil {
		return false
	}
	for i, v := range r.data.Verses {
		if v.Verse == n {
			r.offset = i - i%PageSize
			r.SelectVerse(&r.data.Verses[i])
			return true
		}
	}
	return false
}

// SelectVerse sets or, with nil, clears the selected verse.
func (r *Reader) SelectVerse(v *scripture.Verse) {
	if v == nil {
		r.selected = nil
		return
	}
	r.selected = &SelectedVerse{Reference: v.Reference(), Text: v.Text}
}

// DisplayedVerses is the current page of verses.
func (r *Reader) DisplayedVerses() []scripture.Verse {
	if r.data == nil {
		return nil
	}
	end := min(r.offset+PageSize, len(r.data.Verses))
	if r.offset >= end {
		return nil
	}
	return r.data.Verses[r.offset:end]
}

// Page returns the 1-based current page and the page count.
func (r *Reader) Page() (current, total int) {
	n := r.verseCount()
	if n == 0 {
		return 0, 0
	}
	return r.offset/PageSize + 1, (n + PageSize - 1) / PageSize
}

func (r *Reader) State() State {
	switch {
	case !r.hasBook:
		return NoBookSelected
	case r.loading:
		return ChapterLoading
	case r.loadErr != nil:
		return ChapterLoadFailed
	case r.data != nil:
		return ChapterLoaded
	default:
		return BookSelected
	}
}

func (r *Reader) verseCount() int {
	if r.data == nil {
		return 0
	}
	return len(r.data.Verses)
}

// Book returns the selected book, if any.
func (r *Reader) Book() (catalog.Book, bool) { return r.book, r.hasBook }

func (r *Reader) Chapter() int { return r.chapter }

func (r *Reader) Data() *scripture.ChapterData { return r.data }

func (r *Reader) Loading() bool { return r.loading }

func (r *Reader) Offset() int { return r.offset }

// Err is the error of the last failed load, or nil.
func (r *Reader) Err() error { return r.loadErr }

// ErrorMessage is the reader-facing text for Err.
func (r *Reader) ErrorMessage() string { return scripture.UserMessage(r.loadErr) }

// Selected returns a copy of the selected verse, or nil.
func (r *Reader) Selected() *SelectedVerse {
	if r.selected == nil {
		return nil
	}
	sv := *r.selected
	return &sv
}
