// Package scripture retrieves chapter text from remote or local sources.
package scripture

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrChapterNotFound is returned when a source has no text for a chapter.
var ErrChapterNotFound = errors.New("chapter not found")

// Verse is a single verse as delivered by a Fetcher.
type Verse struct {
	BookID   string `json:"book_id"`
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

// Reference formats the verse as "Book chapter:verse".
func (v Verse) Reference() string {
	return fmt.Sprintf("%s %d:%d", v.BookName, v.Chapter, v.Verse)
}

// ChapterData is one chapter of text. Field names follow bible-api.com.
type ChapterData struct {
	Reference       string  `json:"reference"`
	Verses          []Verse `json:"verses"`
	Text            string  `json:"text"`
	TranslationID   string  `json:"translation_id"`
	TranslationName string  `json:"translation_name"`
	TranslationNote string  `json:"translation_note"`
}

// Fetcher resolves a book and chapter to its text.
type Fetcher interface {
	FetchChapter(ctx context.Context, book string, chapter int) (*ChapterData, error)
}

// HTTPError reports a non-2xx response from a chapter API.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

const userFacingLoadError = "Could not load the requested chapter. Please try another selection."

// UserMessage turns a fetch error into the text shown to readers.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return userFacingLoadError
}

// normalizeVerseText collapses the line breaks bible-api.com embeds in verse text.
func normalizeVerseText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
