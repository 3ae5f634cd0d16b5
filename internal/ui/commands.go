package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"bible-study/internal/assistant"
	"bible-study/internal/reader"
	"bible-study/internal/scripture"
)

const searchLimit = 50

type (
	chapterLoadedMsg reader.LoadResult
	dailyVerseMsg    assistant.DailyVerseResult
	explanationMsg   assistant.ExplanationResult
	answerMsg        assistant.AnswerResult

	searchMsg struct {
		query  string
		verses []scripture.Verse
		err    error
	}
)

func (m Model) loadChapter(req *reader.LoadRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	ctx, f, r := m.ctx, m.fetcher, *req
	return func() tea.Msg {
		return chapterLoadedMsg(reader.Run(ctx, f, r))
	}
}

func (m Model) fetchDailyVerse(t assistant.Ticket) tea.Cmd {
	ctx, g := m.ctx, m.generator
	return func() tea.Msg {
		return dailyVerseMsg(assistant.FetchDailyVerse(ctx, g, t))
	}
}

func (m Model) explain(t assistant.Ticket, v reader.SelectedVerse) tea.Cmd {
	ctx, g := m.ctx, m.generator
	return func() tea.Msg {
		return explanationMsg(assistant.Explain(ctx, g, t, v))
	}
}

func (m Model) answer(t assistant.Ticket, question string) tea.Cmd {
	ctx, g := m.ctx, m.generator
	return func() tea.Msg {
		return answerMsg(assistant.Answer(ctx, g, t, question))
	}
}

func (m Model) search(query string) tea.Cmd {
	ctx, s := m.ctx, m.searcher
	return func() tea.Msg {
		verses, err := s.Search(ctx, query, searchLimit)
		return searchMsg{query: query, verses: verses, err: err}
	}
}

// syncSelection hands the reader's selected verse to the assistant and
// returns the explanation request it triggers, if any.
func (m Model) syncSelection() tea.Cmd {
	selected := m.reader.Selected()
	ticket, ok := m.assistant.SelectVerse(selected)
	if !ok {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.explain(ticket, *selected))
}

// follow starts a chapter load and resets the reader-side cursors.
func (m *Model) follow(req *reader.LoadRequest) tea.Cmd {
	m.verseCursor = 0
	m.pendingPage = 0
	m.pendingVerse = 0
	m.syncCursors()
	cmds := []tea.Cmd{m.syncSelection()}
	if req != nil {
		cmds = append(cmds, m.spinner.Tick, m.loadChapter(req))
	}
	return tea.Batch(cmds...)
}
