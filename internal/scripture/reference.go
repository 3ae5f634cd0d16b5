package scripture

import (
	"fmt"
	"strconv"
	"strings"

	"bible-study/internal/catalog"
)

// Location points at a book, chapter and optionally a verse (0 when absent).
type Location struct {
	Book    string
	Chapter int
	Verse   int
}

// ParseReference parses "John 3:16", "gen 1" or "1 cor 13" into a Location.
// A missing chapter means chapter 1. Book names may be abbreviated.
func ParseReference(query string) (Location, error) {
	query = strings.TrimSpace(query)

	bookChapter := query
	verseNum := 0
	if before, after, found := strings.Cut(query, ":"); found {
		num, err := strconv.Atoi(strings.TrimSpace(after))
		if err != nil || num < 1 {
			return Location{}, fmt.Errorf("invalid verse in %q", query)
		}
		bookChapter = strings.TrimSpace(before)
		verseNum = num
	}

	words := strings.Fields(bookChapter)
	if len(words) == 0 {
		return Location{}, fmt.Errorf("empty reference")
	}

	chapterNum := 1
	bookName := strings.Join(words, " ")
	if len(words) > 1 {
		if num, err := strconv.Atoi(words[len(words)-1]); err == nil {
			chapterNum = num
			bookName = strings.Join(words[:len(words)-1], " ")
		}
	} else if verseNum > 0 {
		return Location{}, fmt.Errorf("missing chapter in %q", query)
	}

	book, ok := catalog.MatchBook(bookName)
	if !ok {
		return Location{}, fmt.Errorf("unknown book %q", bookName)
	}
	if chapterNum < 1 || chapterNum > book.Chapters {
		return Location{}, fmt.Errorf("%s has %d chapters", book.Name, book.Chapters)
	}

	return Location{Book: book.Name, Chapter: chapterNum, Verse: verseNum}, nil
}
