package scripture

import (
	"context"
	"sort"
	"strings"

	"bible-study/internal/catalog"
)

// Searcher finds verses containing a phrase.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Verse, error)
}

const wordTrim = ".,;:!?\"'()[]"

type scoredVerse struct {
	verse Verse
	score int
}

func (t *translation) addToIndex(v Verse) {
	pos := len(t.verses)
	t.verses = append(t.verses, v)

	seen := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(v.Text)) {
		clean := strings.Trim(word, wordTrim)
		if len(clean) <= 2 || seen[clean] {
			continue
		}
		seen[clean] = true
		t.index[clean] = append(t.index[clean], pos)
	}
}

// fuzzyMatchAndScore reports whether pattern occurs in text. Lower scores
// are better: a substring match scores its offset, a word prefix or infix
// match scores by word position.
func fuzzyMatchAndScore(text, pattern string) (matches bool, score int) {
	if pattern == "" {
		return true, 1000000
	}

	textLower := strings.ToLower(text)
	patternLower := strings.ToLower(pattern)

	if idx := strings.Index(textLower, patternLower); idx >= 0 {
		return true, idx
	}

	for i, word := range strings.Fields(textLower) {
		cleanWord := strings.Trim(word, wordTrim)
		if strings.HasPrefix(cleanWord, patternLower) {
			return true, 100 + i
		}
		if strings.Contains(cleanWord, patternLower) {
			return true, 500 + i
		}
	}

	return false, 1000000
}

// intersect merges two ascending position lists.
func intersect(a, b []int) []int {
	var result []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			result = append(result, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return result
}

func rank(matches []scoredVerse, limit int) []Verse {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	verses := make([]Verse, len(matches))
	for i, match := range matches {
		verses[i] = match.verse
	}
	return verses
}

// search looks for query in one translation. "<book> <term>" restricts the
// search to that book when the leading words name one.
func (t *translation) search(query string, limit int) []Verse {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	if parts := strings.Fields(query); len(parts) >= 2 {
		if book, ok := catalog.MatchBook(strings.Join(parts[:len(parts)-1], " ")); ok {
			term := parts[len(parts)-1]
			inBook := func(v Verse) bool { return v.BookName == book.Name }
			if matches := t.scan(t.all(), term, inBook); len(matches) > 0 {
				return rank(matches, limit)
			}
		}
	}

	candidates, ok := t.candidates(query)
	if !ok {
		candidates = t.all()
	}
	return rank(t.scan(candidates, query, nil), limit)
}

// candidates intersects the index entries of every indexed query word. It
// reports false when some word is missing from the index, since a partial
// word can still match by substring.
func (t *translation) candidates(query string) ([]int, bool) {
	var (
		positions []int
		found     bool
	)
	for _, word := range strings.Fields(strings.ToLower(query)) {
		clean := strings.Trim(word, wordTrim)
		if len(clean) <= 2 {
			continue
		}
		entries, ok := t.index[clean]
		if !ok {
			return nil, false
		}
		if !found {
			positions = append([]int(nil), entries...)
			found = true
			continue
		}
		positions = intersect(positions, entries)
	}
	return positions, found
}

func (t *translation) all() []int {
	positions := make([]int, len(t.verses))
	for i := range positions {
		positions[i] = i
	}
	return positions
}

func (t *translation) scan(positions []int, pattern string, keep func(Verse) bool) []scoredVerse {
	var matches []scoredVerse
	for _, pos := range positions {
		v := t.verses[pos]
		if keep != nil && !keep(v) {
			continue
		}
		if ok, score := fuzzyMatchAndScore(v.Text, pattern); ok {
			matches = append(matches, scoredVerse{verse: v, score: score})
		}
	}
	return matches
}

// Search finds verses of the active translation containing query, best
// matches first. A limit <= 0 returns every match.
func (ls *LocalSource) Search(ctx context.Context, query string, limit int) ([]Verse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ls.mu.Lock()
	t, err := ls.load(ls.current)
	ls.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return t.search(query, limit), nil
}
