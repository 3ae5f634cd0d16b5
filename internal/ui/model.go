// Package ui is the interactive terminal reader.
package ui

import (
	"context"
	"log/slog"
	"slices"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"bible-study/internal/assistant"
	"bible-study/internal/catalog"
	"bible-study/internal/config"
	"bible-study/internal/progress"
	"bible-study/internal/reader"
	"bible-study/internal/scripture"
)

type pane int

const (
	booksPane pane = iota
	chaptersPane
	readerPane
	assistantPane
	paneCount
)

// Translations is implemented by sources that can switch translation.
type Translations interface {
	Translations() []string
	Translation() string
	UseTranslation(name string) error
}

// Deps are the services the UI drives.
type Deps struct {
	Fetcher      scripture.Fetcher
	Generator    assistant.Generator
	Progress     *progress.Store
	Session      *SessionStore
	Translations Translations
	Searcher     scripture.Searcher // optional; enables text search from the jump prompt
	Theme        config.Theme
	Log          *slog.Logger

	// Start opens this location instead of the saved one.
	Start *scripture.Location
}

type Model struct {
	ctx          context.Context
	fetcher      scripture.Fetcher
	generator    assistant.Generator
	progress     *progress.Store
	session      *SessionStore
	translations Translations
	searcher     scripture.Searcher
	log          *slog.Logger

	reader    *reader.Reader
	assistant *assistant.Orchestrator

	books         []catalog.Book
	bookCursor    int
	chapterCursor int
	verseCursor   int
	focus         pane

	question textarea.Model
	asked    string
	jump     textinput.Model
	jumping  bool
	spinner  spinner.Model

	initial      *reader.LoadRequest
	pendingPage  int
	pendingVerse int

	status string
	height int
	width  int
	styles styles
}

// New builds the model and restores the saved session, if any.
func New(ctx context.Context, deps Deps) Model {
	question := textarea.New()
	question.Placeholder = "Ask a question about the Bible..."
	question.ShowLineNumbers = false
	question.CharLimit = 500
	question.SetHeight(3)
	question.Cursor.SetMode(cursor.CursorStatic)

	jump := textinput.New()
	jump.Placeholder = "John 3:16"
	jump.Prompt = "Go to: "
	jump.CharLimit = 40
	jump.Cursor.SetMode(cursor.CursorStatic)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		ctx:          ctx,
		fetcher:      deps.Fetcher,
		generator:    deps.Generator,
		progress:     deps.Progress,
		session:      deps.Session,
		translations: deps.Translations,
		searcher:     deps.Searcher,
		log:          deps.Log,
		reader:       reader.New(),
		assistant:    assistant.NewOrchestrator(deps.Log),
		books:        catalog.All(),
		question:     question,
		jump:         jump,
		spinner:      spin,
		height:       24,
		width:        80,
		styles:       newStyles(deps.Theme),
	}
	m.restore(deps.Start)
	return m
}

func (m *Model) restore(start *scripture.Location) {
	saved := defaultSession()
	if m.session != nil {
		var err error
		if saved, err = m.session.Load(); err != nil {
			m.log.Warn("failed to load session, starting fresh", slog.Any("error", err))
		}
	}
	if start != nil {
		saved.Book, saved.Chapter, saved.Page = start.Book, start.Chapter, 0
		m.pendingVerse = start.Verse
	}

	if m.translations != nil && saved.Translation != "" {
		if err := m.translations.UseTranslation(saved.Translation); err != nil {
			m.log.Warn("saved translation unavailable", slog.String("translation", saved.Translation))
		}
	}
	if saved.Book == "" {
		return
	}

	req, err := m.reader.SelectBook(saved.Book)
	if err != nil {
		m.log.Warn("saved book unknown", slog.String("book", saved.Book))
		return
	}
	if saved.Chapter > 1 {
		if r, err := m.reader.SelectChapter(saved.Chapter); err == nil {
			req = r
		}
	}
	m.initial = req
	m.pendingPage = saved.Page
	m.syncCursors()
	m.focus = readerPane
}

func (m Model) currentSession() Session {
	s := defaultSession()
	if book, ok := m.reader.Book(); ok {
		s.Book = book.Name
		s.Chapter = m.reader.Chapter()
		if current, _ := m.reader.Page(); current > 0 {
			s.Page = current - 1
		}
	}
	if m.translations != nil {
		s.Translation = m.translations.Translation()
	}
	return s
}

func (m Model) saveSession() {
	if m.session == nil {
		return
	}
	if err := m.session.Save(m.currentSession()); err != nil {
		m.log.Warn("failed to save session", slog.Any("error", err))
	}
}

// syncCursors points the book and chapter cursors at the reader's position.
func (m *Model) syncCursors() {
	book, ok := m.reader.Book()
	if !ok {
		return
	}
	if i := slices.IndexFunc(m.books, func(b catalog.Book) bool { return b.Name == book.Name }); i >= 0 {
		m.bookCursor = i
	}
	m.chapterCursor = m.reader.Chapter() - 1
}

func (m Model) anyLoading() bool {
	return m.reader.Loading() ||
		m.assistant.LoadingDailyVerse() ||
		m.assistant.LoadingExplanation() ||
		m.assistant.LoadingAnswer()
}

func (m Model) Init() tea.Cmd {
	ticket := m.assistant.BeginDailyVerse()
	return tea.Batch(
		m.spinner.Tick,
		m.fetchDailyVerse(ticket),
		m.loadChapter(m.initial),
	)
}
