package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"bible-study/internal/catalog"
	"bible-study/internal/markup"
	"bible-study/internal/reader"
)

const (
	booksWidth      = 26
	paneChrome      = 4
	chapterCell     = 5
	maxChapterRows  = 5
	verseTextIndent = 6
)

func (m Model) rightWidth() int {
	return max(30, m.width-booksWidth-2*paneChrome)
}

func chapterColumns(width int) int {
	return max(1, width/chapterCell)
}

func (m Model) paneStyle(p pane) lipgloss.Style {
	if m.focus == p {
		return m.styles.focused
	}
	return m.styles.pane
}

func (m Model) View() string {
	bodyHeight := max(10, m.height-2)
	width := m.rightWidth()

	left := m.paneStyle(booksPane).
		Width(booksWidth + 2).
		Render(m.booksView(booksWidth, bodyHeight-2))

	right := lipgloss.JoinVertical(lipgloss.Left,
		m.paneStyle(chaptersPane).Width(width+2).Render(m.chaptersView(width)),
		m.paneStyle(readerPane).Width(width+2).Render(m.readerView(width)),
		m.paneStyle(assistantPane).Width(width+2).Render(m.assistantView(width)),
	)

	var content strings.Builder
	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	content.WriteString("\n")
	content.WriteString(m.footerView())
	return content.String()
}

func (m Model) booksView(width, height int) string {
	testament := "Old Testament"
	if m.books[m.bookCursor].Testament == catalog.New {
		testament = "New Testament"
	}
	lines := []string{m.styles.title.Render(testament)}

	current, _ := m.reader.Book()
	nameWidth := width - 8
	start, end := scrollWindow(m.bookCursor, len(m.books), max(3, height-1))
	for i := start; i < end; i++ {
		book := m.books[i]
		row := fmt.Sprintf("%-*s %4d%%", nameWidth, truncateText(book.Name, nameWidth), m.progress.Percent(book))

		switch {
		case i == m.bookCursor && m.focus == booksPane:
			lines = append(lines, m.styles.cursor.Render("> "+row))
		case book.Name == current.Name:
			lines = append(lines, m.styles.selected.Render("  "+row))
		default:
			lines = append(lines, m.styles.text.Render("  "+row))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) chaptersView(width int) string {
	book, ok := m.reader.Book()
	if !ok {
		return m.styles.title.Render("Chapters") + "\n" +
			m.styles.dim.Render("Select a book to see its chapters.")
	}

	header := m.styles.title.Render(fmt.Sprintf("%s  %d/%d read (%d%%)",
		book.Name, m.progress.ReadCount(book.Name), book.Chapters, m.progress.Percent(book)))

	cols := chapterColumns(width)
	rows := (book.Chapters + cols - 1) / cols
	start, end := scrollWindow(m.chapterCursor/cols, rows, maxChapterRows)

	lines := []string{header}
	for row := start; row < end; row++ {
		var line strings.Builder
		for col := 0; col < cols; col++ {
			n := row*cols + col + 1
			if n > book.Chapters {
				break
			}
			line.WriteString(m.chapterCellView(book.Name, n))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func (m Model) chapterCellView(book string, n int) string {
	mark := " "
	read := m.progress.IsRead(book, n)
	if read {
		mark = "✓"
	}
	cell := fmt.Sprintf("%3d%s ", n, mark)

	switch {
	case m.focus == chaptersPane && n-1 == m.chapterCursor:
		return m.styles.cursor.Reverse(true).Render(cell)
	case n == m.reader.Chapter():
		return m.styles.selected.Underline(true).Render(cell)
	case read:
		return m.styles.read.Render(cell)
	default:
		return m.styles.text.Render(cell)
	}
}

func (m Model) readerView(width int) string {
	switch m.reader.State() {
	case reader.NoBookSelected:
		return m.styles.dim.Render("Select a book to start reading.")
	case reader.ChapterLoading:
		return m.spinner.View() + " Loading chapter..."
	case reader.ChapterLoadFailed:
		return m.styles.errorText.Render(m.reader.ErrorMessage())
	case reader.BookSelected:
		return ""
	}

	data := m.reader.Data()
	header := m.styles.title.Render(data.Reference)
	if data.TranslationName != "" {
		header += m.styles.dim.Render("  " + data.TranslationName)
	}
	if book, ok := m.reader.Book(); ok && m.progress.IsRead(book.Name, m.reader.Chapter()) {
		header += m.styles.read.Render("  ✓ read")
	}

	var content strings.Builder
	content.WriteString(header)
	content.WriteString("\n\n")

	selected := m.reader.Selected()
	for i, v := range m.reader.DisplayedVerses() {
		isSelected := selected != nil && selected.Reference == v.Reference()
		m.renderVerse(&content, v.Verse, v.Text, isSelected, i == m.verseCursor && m.focus == readerPane, width)
	}

	current, total := m.reader.Page()
	content.WriteString(m.styles.dim.Render(fmt.Sprintf("Page %d of %d", current, total)))
	return content.String()
}

func (m Model) renderVerse(content *strings.Builder, num int, text string, isSelected, hasCursor bool, width int) {
	if hasCursor {
		content.WriteString(m.styles.cursor.Render(">"))
	} else {
		content.WriteString(" ")
	}
	content.WriteByte(' ')
	content.WriteString(m.styles.verseNum.Render(fmt.Sprintf("%3d", num)))
	content.WriteByte(' ')

	style := m.styles.text
	if isSelected {
		style = m.styles.selected
	}

	lines := strings.Split(wordwrap.String(text, max(20, width-verseTextIndent)), "\n")
	padding := strings.Repeat(" ", verseTextIndent)
	for i, line := range lines {
		if i > 0 {
			content.WriteString(padding)
		}
		content.WriteString(style.Render(line))
		content.WriteByte('\n')
	}
	content.WriteByte('\n')
}

func (m Model) assistantView(width int) string {
	var content strings.Builder

	content.WriteString(m.styles.title.Render("Verse of the Day"))
	content.WriteString("\n")
	if m.assistant.LoadingDailyVerse() {
		content.WriteString(m.spinner.View() + " Finding today's verse...")
	} else if dv := m.assistant.DailyVerse(); dv != nil {
		content.WriteString(m.styles.verseNum.Render(dv.Reference))
		content.WriteString("\n")
		content.WriteString(m.styles.text.Render(wordwrap.String(dv.Text, width)))
	}
	content.WriteString("\n\n")

	if v := m.assistant.Verse(); v != nil {
		content.WriteString(m.styles.title.Render("About " + v.Reference))
		content.WriteString("\n")
		if m.assistant.LoadingExplanation() {
			content.WriteString(m.spinner.View() + " Explaining...")
		} else {
			content.WriteString(markup.Terminal(m.assistant.Explanation(), m.styles.bold, width))
		}
		content.WriteString("\n\n")
	}

	content.WriteString(m.styles.title.Render("Ask a Question"))
	content.WriteString("\n")
	content.WriteString(m.question.View())
	if m.asked != "" {
		content.WriteString("\n")
		content.WriteString(m.styles.dim.Render(wordwrap.String("Q: "+m.asked, width)))
		content.WriteString("\n")
		if m.assistant.LoadingAnswer() {
			content.WriteString(m.spinner.View() + " Thinking...")
		} else {
			content.WriteString(markup.Terminal(m.assistant.Answer(), m.styles.bold, width))
		}
	}
	return content.String()
}

func (m Model) footerView() string {
	if m.jumping {
		return m.jump.View()
	}

	helpText := "j/k: Navigate • enter: Open book • tab: Next pane • /: Go to • ?: Ask • q: Quit"
	switch {
	case m.question.Focused():
		helpText = "ctrl+s: Ask • esc: Stop typing • tab: Next pane • ctrl+c: Quit"
	case m.focus == chaptersPane:
		helpText = "h/j/k/l: Navigate • enter: Read • m: Mark read • tab: Next pane • q: Quit"
	case m.focus == readerPane:
		helpText = "j/k: Verse • enter: Explain • h/l: Page • n/p: Chapter • m: Mark read • t: Translation • q: Quit"
	case m.focus == assistantPane:
		helpText = "enter/?: Write a question • tab: Next pane • /: Go to • q: Quit"
	}

	footer := m.centerText(m.styles.help.Render(helpText))
	if m.status != "" {
		footer = m.styles.dim.Render(m.status) + "\n" + footer
	}
	return footer
}

// scrollWindow returns the [start, end) range of n rows that keeps cursor
// visible in a window of size rows.
func scrollWindow(cursor, n, rows int) (start, end int) {
	if n <= rows {
		return 0, n
	}
	start = min(max(0, cursor-rows/2), n-rows)
	return start, start + rows
}

func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return text[:maxLen]
	}
	return text[:maxLen-3] + "..."
}

func (m Model) centerText(text string) string {
	visualWidth := lipgloss.Width(text)
	if visualWidth >= m.width {
		return text
	}
	leftPadding := (m.width - visualWidth) / 2
	return strings.Repeat(" ", leftPadding) + text
}
