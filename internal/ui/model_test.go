package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bible-study/internal/assistant"
	"bible-study/internal/config"
	"bible-study/internal/progress"
	"bible-study/internal/reader"
	"bible-study/internal/scripture"
)

type fakeFetcher struct {
	verses int
	err    error
	calls  []string
}

func (f *fakeFetcher) FetchChapter(_ context.Context, book string, chapter int) (*scripture.ChapterData, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s %d", book, chapter))
	if f.err != nil {
		return nil, f.err
	}
	data := &scripture.ChapterData{Reference: fmt.Sprintf("%s %d", book, chapter), TranslationName: "World English Bible"}
	for i := 1; i <= f.verses; i++ {
		data.Verses = append(data.Verses, scripture.Verse{
			BookName: book,
			Chapter:  chapter,
			Verse:    i,
			Text:     fmt.Sprintf("%s %d verse %d", book, chapter, i),
		})
	}
	return data, nil
}

type fakeGenerator struct{}

func (fakeGenerator) DailyVerse(context.Context) (assistant.DailyVerse, error) {
	return assistant.DailyVerse{Reference: "Psalm 118:24", Text: "This is the day which the LORD hath made."}, nil
}

func (fakeGenerator) Explain(_ context.Context, reference, _ string) (string, error) {
	return "**Meaning** of " + reference, nil
}

func (fakeGenerator) Answer(_ context.Context, question string) (string, error) {
	return "Answer to " + question, nil
}

type fakeTranslations struct {
	names   []string
	current string
}

func (f *fakeTranslations) Translations() []string { return f.names }
func (f *fakeTranslations) Translation() string    { return f.current }

func (f *fakeTranslations) UseTranslation(name string) error {
	f.current = name
	return nil
}

type fakeSearcher struct {
	verses []scripture.Verse
}

func (f fakeSearcher) Search(context.Context, string, int) ([]scripture.Verse, error) {
	return f.verses, nil
}

type harness struct {
	fetcher   *fakeFetcher
	persister *progress.MemoryPersister
	store     *progress.Store
	session   *SessionStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := &progress.MemoryPersister{}
	return &harness{
		fetcher:   &fakeFetcher{verses: 20},
		persister: p,
		store:     progress.Open(context.Background(), p, log),
		session:   NewSessionStore(filepath.Join(t.TempDir(), config.StateFile)),
	}
}

func (h *harness) model(translations Translations) Model {
	return New(context.Background(), Deps{
		Fetcher:      h.fetcher,
		Generator:    fakeGenerator{},
		Progress:     h.store,
		Session:      h.session,
		Translations: translations,
		Theme: config.Theme{
			HighlightColor: "#cba6f7",
			VerseNumColor:  "#89b4fa",
			TextColor:      "#cdd6f4",
			DimColor:       "#313244",
		},
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// collect runs cmd and returns the messages it produces, expanding batches.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// settle feeds messages through Update until no commands are left.
// Spinner ticks are dropped so nothing waits on a timer.
func settle(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for len(msgs) > 0 {
		msg := msgs[0]
		msgs = msgs[1:]
		switch msg.(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
			continue
		}
		updated, cmd := m.Update(msg)
		m = updated.(Model)
		msgs = append(msgs, collect(cmd)...)
	}
	return m
}

func start(t *testing.T, m Model) Model {
	t.Helper()
	return settle(t, m, collect(m.Init())...)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = settle(t, m, key(k))
	}
	return m
}

func TestInitLoadsDailyVerse(t *testing.T) {
	m := start(t, newHarness(t).model(nil))

	require.NotNil(t, m.assistant.DailyVerse())
	assert.Equal(t, "Psalm 118:24", m.assistant.DailyVerse().Reference)
	assert.Equal(t, reader.NoBookSelected, m.reader.State())
	assert.Equal(t, booksPane, m.focus)
}

func TestOpenBook(t *testing.T) {
	h := newHarness(t)
	m := start(t, h.model(nil))

	m = press(t, m, "j", "enter")

	book, ok := m.reader.Book()
	require.True(t, ok)
	assert.Equal(t, "Exodus", book.Name)
	assert.Equal(t, reader.ChapterLoaded, m.reader.State())
	assert.Equal(t, chaptersPane, m.focus)
	assert.Equal(t, []string{"Exodus 1"}, h.fetcher.calls)
}

func TestChapterGrid(t *testing.T) {
	h := newHarness(t)
	m := start(t, h.model(nil))
	m = press(t, m, "enter", "l", "m")

	assert.True(t, h.store.IsRead("Genesis", 2))
	assert.Equal(t, "Marked Genesis 2 as read", m.status)
	assert.Equal(t, 1, h.persister.Saves)

	m = press(t, m, "h", "h", "k")
	assert.Equal(t, 0, m.chapterCursor, "cursor stays inside the grid")

	m = press(t, m, "l", "enter")
	assert.Equal(t, 2, m.reader.Chapter())
	assert.Equal(t, readerPane, m.focus)
	assert.Equal(t, []string{"Genesis 1", "Genesis 2"}, h.fetcher.calls)
}

func TestChapterGridWithoutBook(t *testing.T) {
	m := start(t, newHarness(t).model(nil))
	m = press(t, m, "tab", "enter")
	assert.Equal(t, "Select a book first", m.status)
}

func TestSelectVerseRequestsExplanation(t *testing.T) {
	m := start(t, newHarness(t).model(nil))
	m = press(t, m, "enter", "enter", "j", "enter")

	require.NotNil(t, m.reader.Selected())
	assert.Equal(t, "Genesis 1:2", m.reader.Selected().Reference)
	assert.Equal(t, "**Meaning** of Genesis 1:2", m.assistant.Explanation())
	assert.False(t, m.assistant.LoadingExplanation())

	m = press(t, m, "l")
	current, _ := m.reader.Page()
	assert.Equal(t, 2, current)
	assert.Nil(t, m.reader.Selected())
	assert.Nil(t, m.assistant.Verse())
	assert.Empty(t, m.assistant.Explanation())
	assert.Equal(t, 0, m.verseCursor)
}

func TestStepChapterCrossesBooks(t *testing.T) {
	m := start(t, newHarness(t).model(nil))
	m = press(t, m, "/")
	m = press(t, m, "Genesis 50", "enter")
	require.Equal(t, 50, m.reader.Chapter())

	m = press(t, m, "n")
	book, _ := m.reader.Book()
	assert.Equal(t, "Exodus", book.Name)
	assert.Equal(t, 1, m.reader.Chapter())

	m = press(t, m, "p")
	book, _ = m.reader.Book()
	assert.Equal(t, "Genesis", book.Name)
	assert.Equal(t, 50, m.reader.Chapter())
	assert.Equal(t, 49, m.chapterCursor)
}

func TestJumpToVerse(t *testing.T) {
	h := newHarness(t)
	m := start(t, h.model(nil))

	m = press(t, m, "/", "john 3:16", "enter")

	book, _ := m.reader.Book()
	assert.Equal(t, "John", book.Name)
	assert.Equal(t, 3, m.reader.Chapter())
	require.NotNil(t, m.reader.Selected())
	assert.Equal(t, "John 3:16", m.reader.Selected().Reference)
	assert.Equal(t, 0, m.verseCursor)
	assert.Equal(t, 15, m.reader.Offset())
	assert.Equal(t, "**Meaning** of John 3:16", m.assistant.Explanation())
	assert.False(t, m.jumping)

	m = press(t, m, "/", "John 3:17", "enter")
	assert.Equal(t, "John 3:17", m.reader.Selected().Reference)
	assert.Equal(t, 1, m.verseCursor)
	assert.Len(t, h.fetcher.calls, 1, "same chapter is not fetched again")
}

func TestJumpRejectsUnknownReference(t *testing.T) {
	m := start(t, newHarness(t).model(nil))
	m = press(t, m, "/", "Hezekiah 1", "enter")

	assert.Contains(t, m.status, "unknown book")
	assert.Equal(t, reader.NoBookSelected, m.reader.State())
}

func TestAskQuestion(t *testing.T) {
	m := start(t, newHarness(t).model(nil))

	m = press(t, m, "?", "ctrl+s")
	assert.Equal(t, "Type a question first", m.status)

	m = press(t, m, "What is faith?", "ctrl+s")
	assert.Equal(t, "Answer to What is faith?", m.assistant.Answer())
	assert.Equal(t, "What is faith?", m.asked)
	assert.Empty(t, m.question.Value())

	m = press(t, m, "q")
	assert.Equal(t, "q", m.question.Value(), "typing goes to the question box")

	m = press(t, m, "esc")
	assert.False(t, m.question.Focused())
}

func TestStaleChapterLoadIgnored(t *testing.T) {
	h := newHarness(t)
	m := start(t, h.model(nil))

	updated, first := m.Update(key("enter"))
	m = updated.(Model)
	m.focus = booksPane
	m.bookCursor = 1
	updated, second := m.Update(key("enter"))
	m = updated.(Model)

	m = settle(t, m, collect(second)...)
	m = settle(t, m, collect(first)...)

	book, _ := m.reader.Book()
	assert.Equal(t, "Exodus", book.Name)
	assert.Equal(t, "Exodus 1", m.reader.Data().Reference)
}

func TestLoadFailureShowsMessage(t *testing.T) {
	h := newHarness(t)
	h.fetcher.err = errors.New("offline")
	m := start(t, h.model(nil))
	m = press(t, m, "enter")

	assert.Equal(t, reader.ChapterLoadFailed, m.reader.State())
	assert.Equal(t, "Could not load the requested chapter. Please try another selection.", m.reader.ErrorMessage())
	assert.Contains(t, m.View(), "Could not load")
}

func TestSessionRoundTrip(t *testing.T) {
	h := newHarness(t)
	m := start(t, h.model(nil))
	m = press(t, m, "/", "Romans 8", "enter", "l")

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	saved, err := h.session.Load()
	require.NoError(t, err)
	assert.Equal(t, Session{Book: "Romans", Chapter: 8, Page: 1}, saved)

	restored := start(t, h.model(nil))
	book, ok := restored.reader.Book()
	require.True(t, ok)
	assert.Equal(t, "Romans", book.Name)
	assert.Equal(t, 8, restored.reader.Chapter())
	current, _ := restored.reader.Page()
	assert.Equal(t, 2, current)
	assert.Equal(t, readerPane, restored.focus)
}

func TestStartLocationOverridesSession(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Save(Session{Book: "Romans", Chapter: 8, Page: 1}))

	m := h.model(nil)
	m = New(context.Background(), Deps{
		Fetcher:   h.fetcher,
		Generator: fakeGenerator{},
		Progress:  h.store,
		Session:   h.session,
		Log:       m.log,
		Start:     &scripture.Location{Book: "John", Chapter: 3, Verse: 16},
	})
	m = start(t, m)

	book, ok := m.reader.Book()
	require.True(t, ok)
	assert.Equal(t, "John", book.Name)
	assert.Equal(t, 3, m.reader.Chapter())
	require.NotNil(t, m.reader.Selected())
	assert.Equal(t, "John 3:16", m.reader.Selected().Reference)
	assert.Equal(t, []string{"John 3"}, h.fetcher.calls)
}

func TestJumpFallsBackToSearch(t *testing.T) {
	h := newHarness(t)
	m := h.model(nil)
	m.searcher = fakeSearcher{verses: []scripture.Verse{
		{BookName: "John", Chapter: 3, Verse: 16, Text: "For God so loved the world"},
		{BookName: "1 John", Chapter: 4, Verse: 8, Text: "God is love."},
	}}
	m = start(t, m)

	m = press(t, m, "/", "so loved", "enter")

	book, ok := m.reader.Book()
	require.True(t, ok)
	assert.Equal(t, "John", book.Name)
	require.NotNil(t, m.reader.Selected())
	assert.Equal(t, "John 3:16", m.reader.Selected().Reference)
	assert.Equal(t, `2 matches for "so loved", showing John 3:16`, m.status)

	m.searcher = fakeSearcher{}
	m = press(t, m, "/", "locusts", "enter")
	assert.Equal(t, `No verses match "locusts"`, m.status)
}

func TestNextTranslationReloads(t *testing.T) {
	h := newHarness(t)
	tr := &fakeTranslations{names: []string{"ASV", "KJV"}, current: "ASV"}
	m := start(t, h.model(tr))

	m = press(t, m, "enter", "t")
	assert.Equal(t, "KJV", tr.current)
	assert.Equal(t, "Translation: KJV", m.status)
	assert.Equal(t, []string{"Genesis 1", "Genesis 1"}, h.fetcher.calls)

	m = press(t, m, "q")
	saved, err := h.session.Load()
	require.NoError(t, err)
	assert.Equal(t, "KJV", saved.Translation)
}

func TestNextTranslationWithoutLocalSource(t *testing.T) {
	m := start(t, newHarness(t).model(nil))
	m = press(t, m, "t")
	assert.Contains(t, m.status, "local translation files")
}

func TestView(t *testing.T) {
	m := start(t, newHarness(t).model(nil))
	m = settle(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, m.View(), "Select a book to start reading.")

	m = press(t, m, "enter", "enter", "enter")
	view := m.View()
	assert.Contains(t, view, "Genesis 1")
	assert.Contains(t, view, "Page 1 of 7")
	assert.Contains(t, view, "Verse of the Day")
	assert.Contains(t, view, "About Genesis 1:1")
}

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		cursor, n, rows int
		start, end      int
	}{
		{cursor: 0, n: 3, rows: 5, start: 0, end: 3},
		{cursor: 0, n: 66, rows: 10, start: 0, end: 10},
		{cursor: 30, n: 66, rows: 10, start: 25, end: 35},
		{cursor: 65, n: 66, rows: 10, start: 56, end: 66},
	}
	for _, tt := range tests {
		start, end := scrollWindow(tt.cursor, tt.n, tt.rows)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}
}
