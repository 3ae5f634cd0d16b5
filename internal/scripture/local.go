package scripture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"bible-study/internal/catalog"
)

// bible is the on-disk layout of a translation: book -> chapter -> verse -> text.
type bible map[string]map[string]map[string]string

// translation is one parsed *_bible.json file.
type translation struct {
	name         string
	chapterIndex map[string]map[int][]Verse
	verses       []Verse
	index        map[string][]int
}

func parseTranslation(name string, jsonData []byte) (*translation, error) {
	var b bible
	if err := json.Unmarshal(jsonData, &b); err != nil {
		return nil, fmt.Errorf("failed to parse bible JSON: %w", err)
	}

	t := &translation{
		name:         name,
		chapterIndex: make(map[string]map[int][]Verse, len(b)),
		index:        make(map[string][]int),
	}

	for _, bookName := range bookOrder(b) {
		chapters := b[bookName]
		t.chapterIndex[bookName] = make(map[int][]Verse, len(chapters))
		for _, chapterNum := range sortMapKeysAsInts(chapters) {
			chapter := chapters[strconv.Itoa(chapterNum)]
			for _, verseNum := range sortMapKeysAsInts(chapter) {
				verse := Verse{
					BookName: canonicalBookName(bookName),
					Chapter:  chapterNum,
					Verse:    verseNum,
					Text:     normalizeVerseText(chapter[strconv.Itoa(verseNum)]),
				}
				t.chapterIndex[bookName][chapterNum] = append(t.chapterIndex[bookName][chapterNum], verse)
				t.addToIndex(verse)
			}
		}
	}

	return t, nil
}

// bookOrder lists the books of a file in canonical order. Books the catalog
// does not know go last, sorted by name.
func bookOrder(b bible) []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}

	all := catalog.All()
	rank := make(map[string]int, len(all))
	for i, book := range all {
		rank[book.Name] = i
	}
	position := func(name string) int {
		if book, ok := catalog.MatchBook(name); ok {
			return rank[book.Name]
		}
		return len(all)
	}
	sort.SliceStable(names, func(i, j int) bool {
		pi, pj := position(names[i]), position(names[j])
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})
	return names
}

func canonicalBookName(name string) string {
	if book, ok := catalog.MatchBook(name); ok {
		return book.Name
	}
	return name
}

func sortMapKeysAsInts[T any](m map[string]T) []int {
	numbers := make([]int, 0, len(m))
	for key := range m {
		if num, err := strconv.Atoi(key); err == nil {
			numbers = append(numbers, num)
		}
	}
	sort.Ints(numbers)
	return numbers
}

// resolveBook maps a catalog name onto the key used in the file, which may
// differ in case or plurality ("Psalms" vs "Psalm").
func (t *translation) resolveBook(book string) (string, bool) {
	if _, ok := t.chapterIndex[book]; ok {
		return book, true
	}
	want := strings.ToLower(book)
	for name := range t.chapterIndex {
		lower := strings.ToLower(name)
		if lower == want || lower == strings.TrimSuffix(want, "s") || strings.TrimSuffix(lower, "s") == want {
			return name, true
		}
	}
	return "", false
}

// LocalSource serves chapters from translation files named <NAME>_bible.json.
// Files are parsed on first use and kept in memory.
type LocalSource struct {
	mu           sync.Mutex
	translations map[string]*translation
	names        []string
	filePaths    map[string]string
	current      string
}

// NewLocalSource indexes the translation files in dir. preferred selects the
// translation to read from; it falls back to the first name in sort order.
func NewLocalSource(dir, preferred string) (*LocalSource, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*_bible.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob bible files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no bible JSON files found in %s (expected files like ESV_bible.json)", dir)
	}

	ls := &LocalSource{
		translations: make(map[string]*translation),
		filePaths:    make(map[string]string),
	}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), "_bible.json")
		ls.filePaths[name] = file
		ls.names = append(ls.names, name)
	}
	sort.Strings(ls.names)

	ls.current = ls.names[0]
	if _, ok := ls.filePaths[preferred]; ok {
		ls.current = preferred
	}
	return ls, nil
}

// Translations lists the available translation names.
func (ls *LocalSource) Translations() []string {
	return append([]string(nil), ls.names...)
}

// Translation reports the translation chapters are served from.
func (ls *LocalSource) Translation() string {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.current
}

// UseTranslation switches the active translation.
func (ls *LocalSource) UseTranslation(name string) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if _, ok := ls.filePaths[name]; !ok {
		return fmt.Errorf("unknown translation %q", name)
	}
	ls.current = name
	return nil
}

func (ls *LocalSource) load(name string) (*translation, error) {
	if t, ok := ls.translations[name]; ok {
		return t, nil
	}
	data, err := os.ReadFile(ls.filePaths[name])
	if err != nil {
		return nil, fmt.Errorf("read translation %s: %w", name, err)
	}
	t, err := parseTranslation(name, data)
	if err != nil {
		return nil, err
	}
	ls.translations[name] = t
	return t, nil
}

// FetchChapter returns a chapter from the active translation.
func (ls *LocalSource) FetchChapter(ctx context.Context, book string, chapter int) (*ChapterData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ls.mu.Lock()
	t, err := ls.load(ls.current)
	ls.mu.Unlock()
	if err != nil {
		return nil, err
	}

	key, ok := t.resolveBook(book)
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", book, chapter, ErrChapterNotFound)
	}
	verses := t.chapterIndex[key][chapter]
	if len(verses) == 0 {
		return nil, fmt.Errorf("%s %d: %w", book, chapter, ErrChapterNotFound)
	}

	data := &ChapterData{
		Reference:       fmt.Sprintf("%s %d", book, chapter),
		Verses:          make([]Verse, len(verses)),
		TranslationID:   strings.ToLower(t.name),
		TranslationName: t.name,
	}
	texts := make([]string, len(verses))
	for i, v := range verses {
		v.BookName = book
		data.Verses[i] = v
		texts[i] = v.Text
	}
	data.Text = strings.Join(texts, "\n")
	return data, nil
}
