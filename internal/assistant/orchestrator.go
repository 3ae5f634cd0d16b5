package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"bible-study/internal/reader"
)

var (
	ErrEmptyQuestion    = errors.New("question is empty")
	ErrQuestionInFlight = errors.New("a question is already being answered")
)

// Ticket identifies one request of a workflow. Completions carrying a ticket
// other than the workflow's latest are discarded.
type Ticket uint64

// Orchestrator holds the state of the three assistant workflows. Each has its
// own loading flag, so a pending explanation never blocks a question and the
// other way round.
//
// Without the tickets, a slow explanation for an earlier verse could land
// after the explanation for the verse selected since and replace it; the
// ticket check drops such late results.
type Orchestrator struct {
	log *slog.Logger

	dailyVerse        *DailyVerse
	loadingDailyVerse bool
	dailyTicket       Ticket

	verse              *reader.SelectedVerse
	explanation        string
	explainFailed      bool
	loadingExplanation bool
	explainTicket      Ticket

	answer        string
	loadingAnswer bool
	answerTicket  Ticket

	next Ticket
}

func NewOrchestrator(log *slog.Logger) *Orchestrator {
	return &Orchestrator{log: log}
}

func (o *Orchestrator) issue() Ticket {
	o.next++
	return o.next
}

// BeginDailyVerse marks the daily verse as loading.
func (o *Orchestrator) BeginDailyVerse() Ticket {
	o.loadingDailyVerse = true
	o.dailyTicket = o.issue()
	return o.dailyTicket
}

// CompleteDailyVerse stores the generated verse, or the fallback on error.
func (o *Orchestrator) CompleteDailyVerse(t Ticket, v DailyVerse, err error) bool {
	if t != o.dailyTicket {
		return false
	}
	o.loadingDailyVerse = false
	if err != nil {
		o.log.Warn("daily verse generation failed, using fallback", slog.Any("error", err))
		v = FallbackDailyVerse
	}
	o.dailyVerse = &v
	return true
}

// SelectVerse reacts to a change of the selected verse. A new verse clears
// the shown explanation and returns a ticket for explaining it; nil clears
// the explanation and requests nothing. Re-selecting the verse already shown
// only asks again when its explanation failed.
func (o *Orchestrator) SelectVerse(v *reader.SelectedVerse) (Ticket, bool) {
	if v == nil {
		o.verse = nil
		o.explanation = ""
		o.explainFailed = false
		o.loadingExplanation = false
		o.explainTicket = o.issue()
		return 0, false
	}
	if o.verse != nil && *o.verse == *v && !o.explainFailed {
		return 0, false
	}

	sv := *v
	o.verse = &sv
	o.explanation = ""
	o.explainFailed = false
	o.loadingExplanation = true
	o.explainTicket = o.issue()
	return o.explainTicket, true
}

// CompleteExplanation stores an explanation, or the apology on error.
func (o *Orchestrator) CompleteExplanation(t Ticket, text string, err error) bool {
	if t != o.explainTicket {
		return false
	}
	o.loadingExplanation = false
	o.explainFailed = err != nil
	if err != nil {
		o.log.Warn("verse explanation failed", slog.Any("error", err))
		text = ExplanationFallback
	}
	o.explanation = text
	return true
}

// Ask starts answering a question. Blank questions are rejected, as is a new
// question while the previous one is still being answered.
func (o *Orchestrator) Ask(question string) (Ticket, error) {
	if strings.TrimSpace(question) == "" {
		return 0, ErrEmptyQuestion
	}
	if o.loadingAnswer {
		return 0, ErrQuestionInFlight
	}
	o.answer = ""
	o.loadingAnswer = true
	o.answerTicket = o.issue()
	return o.answerTicket, nil
}

// CompleteAnswer stores an answer, or the apology on error.
func (o *Orchestrator) CompleteAnswer(t Ticket, text string, err error) bool {
	if t != o.answerTicket {
		return false
	}
	o.loadingAnswer = false
	if err != nil {
		o.log.Warn("question answering failed", slog.Any("error", err))
		text = AnswerFallback
	}
	o.answer = text
	return true
}

func (o *Orchestrator) DailyVerse() *DailyVerse {
	if o.dailyVerse == nil {
		return nil
	}
	v := *o.dailyVerse
	return &v
}

func (o *Orchestrator) Verse() *reader.SelectedVerse {
	if o.verse == nil {
		return nil
	}
	v := *o.verse
	return &v
}

func (o *Orchestrator) Explanation() string      { return o.explanation }
func (o *Orchestrator) Answer() string           { return o.answer }
func (o *Orchestrator) LoadingDailyVerse() bool  { return o.loadingDailyVerse }
func (o *Orchestrator) LoadingExplanation() bool { return o.loadingExplanation }
func (o *Orchestrator) LoadingAnswer() bool      { return o.loadingAnswer }

// DailyVerseResult, ExplanationResult and AnswerResult carry a generator
// outcome back to the orchestrator.
type DailyVerseResult struct {
	Ticket Ticket
	Verse  DailyVerse
	Err    error
}

type ExplanationResult struct {
	Ticket Ticket
	Text   string
	Err    error
}

type AnswerResult struct {
	Ticket Ticket
	Text   string
	Err    error
}

func FetchDailyVerse(ctx context.Context, g Generator, t Ticket) DailyVerseResult {
	v, err := g.DailyVerse(ctx)
	return DailyVerseResult{Ticket: t, Verse: v, Err: err}
}

func Explain(ctx context.Context, g Generator, t Ticket, v reader.SelectedVerse) ExplanationResult {
	text, err := g.Explain(ctx, v.Reference, v.Text)
	return ExplanationResult{Ticket: t, Text: text, Err: err}
}

func Answer(ctx context.Context, g Generator, t Ticket, question string) AnswerResult {
	text, err := g.Answer(ctx, strings.TrimSpace(question))
	return AnswerResult{Ticket: t, Text: text, Err: err}
}
