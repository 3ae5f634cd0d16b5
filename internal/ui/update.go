package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"bible-study/internal/assistant"
	"bible-study/internal/catalog"
	"bible-study/internal/reader"
	"bible-study/internal/scripture"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.width = msg.Width
		m.question.SetWidth(m.rightWidth())
		return m, nil

	case spinner.TickMsg:
		if !m.anyLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case chapterLoadedMsg:
		return m.applyChapter(reader.LoadResult(msg))

	case dailyVerseMsg:
		m.assistant.CompleteDailyVerse(msg.Ticket, msg.Verse, msg.Err)
		return m, nil

	case explanationMsg:
		m.assistant.CompleteExplanation(msg.Ticket, msg.Text, msg.Err)
		return m, nil

	case answerMsg:
		m.assistant.CompleteAnswer(msg.Ticket, msg.Text, msg.Err)
		return m, nil

	case searchMsg:
		return m.applySearch(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) applyChapter(res reader.LoadResult) (tea.Model, tea.Cmd) {
	if !m.reader.ApplyLoad(res) {
		m.log.Debug("discarding stale chapter load",
			slog.String("book", res.Request.Book),
			slog.Int("chapter", res.Request.Chapter))
		return m, nil
	}
	if res.Err != nil {
		m.log.Warn("chapter load failed",
			slog.String("book", res.Request.Book),
			slog.Int("chapter", res.Request.Chapter),
			slog.Any("error", res.Err))
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case m.pendingVerse > 0:
		if m.reader.ShowVerse(m.pendingVerse) {
			m.verseCursor = m.selectedIndex()
			cmd = m.syncSelection()
		}
	case m.pendingPage > 0:
		m.reader.SetPage(m.pendingPage)
	}
	m.pendingVerse = 0
	m.pendingPage = 0
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.saveSession()
		return m, tea.Quit
	}
	if m.jumping {
		return m.handleJumpKey(msg)
	}
	if m.question.Focused() {
		switch key {
		case "esc":
			m.question.Blur()
			return m, nil
		case "tab":
			m.question.Blur()
			m.focus = (m.focus + 1) % paneCount
			return m, nil
		case "ctrl+s":
			return m.submitQuestion()
		}
		var cmd tea.Cmd
		m.question, cmd = m.question.Update(msg)
		return m, cmd
	}

	m.status = ""
	switch key {
	case "q":
		m.saveSession()
		return m, tea.Quit
	case "tab":
		m.focus = (m.focus + 1) % paneCount
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + paneCount - 1) % paneCount
		return m, nil
	case "?":
		m.focus = assistantPane
		cmd := m.question.Focus()
		return m, cmd
	case "/":
		m.jumping = true
		m.jump.SetValue("")
		cmd := m.jump.Focus()
		return m, cmd
	case "t":
		return m.nextTranslation()
	}

	switch m.focus {
	case booksPane:
		return m.booksKey(key)
	case chaptersPane:
		return m.chaptersKey(key)
	case readerPane:
		return m.readerKey(key)
	case assistantPane:
		if key == "enter" {
			cmd := m.question.Focus()
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) booksKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		m.bookCursor = min(len(m.books)-1, m.bookCursor+1)
	case "k", "up":
		m.bookCursor = max(0, m.bookCursor-1)
	case "g":
		m.bookCursor = 0
	case "G":
		m.bookCursor = len(m.books) - 1
	case "enter":
		req, err := m.reader.SelectBook(m.books[m.bookCursor].Name)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.focus = chaptersPane
		cmd := m.follow(req)
		return m, cmd
	}
	return m, nil
}

func (m Model) chaptersKey(key string) (tea.Model, tea.Cmd) {
	book, ok := m.reader.Book()
	if !ok {
		m.status = "Select a book first"
		return m, nil
	}

	cols := chapterColumns(m.rightWidth())
	switch key {
	case "h", "left":
		m.chapterCursor--
	case "l", "right":
		m.chapterCursor++
	case "k", "up":
		m.chapterCursor -= cols
	case "j", "down":
		m.chapterCursor += cols
	case "enter":
		req, err := m.reader.SelectChapter(m.chapterCursor + 1)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.focus = readerPane
		cmd := m.follow(req)
		return m, cmd
	case "m":
		m.toggleRead(book.Name, m.chapterCursor+1)
	}
	m.chapterCursor = min(max(0, m.chapterCursor), book.Chapters-1)
	return m, nil
}

func (m Model) readerKey(key string) (tea.Model, tea.Cmd) {
	displayed := m.reader.DisplayedVerses()
	switch key {
	case "j", "down":
		m.verseCursor = max(0, min(len(displayed)-1, m.verseCursor+1))
	case "k", "up":
		m.verseCursor = max(0, m.verseCursor-1)
	case "enter":
		if m.verseCursor < len(displayed) {
			v := displayed[m.verseCursor]
			m.reader.SelectVerse(&v)
			return m, m.syncSelection()
		}
	case "esc":
		m.reader.SelectVerse(nil)
		return m, m.syncSelection()
	case "l", "right":
		if m.reader.AdvancePage() {
			m.verseCursor = 0
			return m, m.syncSelection()
		}
	case "h", "left":
		if m.reader.RetreatPage() {
			m.verseCursor = 0
			return m, m.syncSelection()
		}
	case "n":
		cmd := m.stepChapter(1)
		return m, cmd
	case "p":
		cmd := m.stepChapter(-1)
		return m, cmd
	case "m":
		if book, ok := m.reader.Book(); ok {
			m.toggleRead(book.Name, m.reader.Chapter())
		}
	}
	return m, nil
}

func (m *Model) toggleRead(book string, chapter int) {
	if m.progress.ToggleRead(m.ctx, book, chapter) {
		m.status = fmt.Sprintf("Marked %s %d as read", book, chapter)
	} else {
		m.status = fmt.Sprintf("Marked %s %d as unread", book, chapter)
	}
}

// stepChapter moves to the next or previous chapter, crossing into the
// adjacent book at either end.
func (m *Model) stepChapter(direction int) tea.Cmd {
	book, ok := m.reader.Book()
	if !ok {
		return nil
	}

	target := m.reader.Chapter() + direction
	if target >= 1 && target <= book.Chapters {
		req, _ := m.reader.SelectChapter(target)
		return m.follow(req)
	}

	i := slices.IndexFunc(m.books, func(b catalog.Book) bool { return b.Name == book.Name }) + direction
	if i < 0 || i >= len(m.books) {
		return nil
	}
	next := m.books[i]
	req, _ := m.reader.SelectBook(next.Name)
	if direction < 0 && next.Chapters > 1 {
		req, _ = m.reader.SelectChapter(next.Chapters)
	}
	return m.follow(req)
}

func (m Model) handleJumpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.jumping = false
		m.jump.Blur()
		return m, nil
	case "enter":
		m.jumping = false
		m.jump.Blur()
		query := strings.TrimSpace(m.jump.Value())
		loc, err := scripture.ParseReference(query)
		if err != nil {
			if m.searcher == nil || query == "" {
				m.status = err.Error()
				return m, nil
			}
			m.status = fmt.Sprintf("Searching for %q...", query)
			return m, m.search(query)
		}
		cmd := m.goTo(loc)
		return m, cmd
	}

	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

// goTo opens a parsed reference, selecting the verse once its chapter is
// loaded.
func (m *Model) goTo(loc scripture.Location) tea.Cmd {
	var (
		req *reader.LoadRequest
		err error
	)
	if book, ok := m.reader.Book(); ok && book.Name == loc.Book {
		req, err = m.reader.SelectChapter(loc.Chapter)
	} else {
		req, err = m.reader.SelectBook(loc.Book)
		if err == nil && loc.Chapter > 1 {
			req, err = m.reader.SelectChapter(loc.Chapter)
		}
	}
	if err != nil {
		m.status = err.Error()
		return nil
	}

	m.focus = readerPane
	cmd := m.follow(req)
	if loc.Verse == 0 {
		return cmd
	}
	if req != nil {
		m.pendingVerse = loc.Verse
		return cmd
	}
	if !m.reader.ShowVerse(loc.Verse) {
		m.status = fmt.Sprintf("%s %d has no verse %d", loc.Book, loc.Chapter, loc.Verse)
		return cmd
	}
	m.verseCursor = m.selectedIndex()
	return tea.Batch(cmd, m.syncSelection())
}

// applySearch opens the best match of a text search.
func (m Model) applySearch(msg searchMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn("search failed", slog.String("query", msg.query), slog.Any("error", msg.err))
		m.status = "Search failed"
		return m, nil
	}
	if len(msg.verses) == 0 {
		m.status = fmt.Sprintf("No verses match %q", msg.query)
		return m, nil
	}

	best := msg.verses[0]
	m.status = fmt.Sprintf("%d matches for %q, showing %s", len(msg.verses), msg.query, best.Reference())
	cmd := m.goTo(scripture.Location{Book: best.BookName, Chapter: best.Chapter, Verse: best.Verse})
	return m, cmd
}

func (m Model) submitQuestion() (tea.Model, tea.Cmd) {
	question := m.question.Value()
	ticket, err := m.assistant.Ask(question)
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion):
		m.status = "Type a question first"
		return m, nil
	case errors.Is(err, assistant.ErrQuestionInFlight):
		m.status = "Still answering the previous question"
		return m, nil
	}

	m.asked = question
	m.question.Reset()
	return m, tea.Batch(m.spinner.Tick, m.answer(ticket, question))
}

func (m Model) nextTranslation() (tea.Model, tea.Cmd) {
	if m.translations == nil {
		m.status = "Translation switching needs local translation files"
		return m, nil
	}
	names := m.translations.Translations()
	if len(names) < 2 {
		return m, nil
	}

	next := names[(slices.Index(names, m.translations.Translation())+1)%len(names)]
	if err := m.translations.UseTranslation(next); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = "Translation: " + next
	cmd := m.follow(m.reader.Reload())
	return m, cmd
}

// selectedIndex is the position of the selected verse on the current page.
func (m Model) selectedIndex() int {
	selected := m.reader.Selected()
	if selected == nil {
		return 0
	}
	for i, v := range m.reader.DisplayedVerses() {
		if v.Reference() == selected.Reference {
			return i
		}
	}
	return 0
}
