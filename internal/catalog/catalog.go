// Package catalog holds the static list of Bible books and their chapter counts.
package catalog

import "strings"

// Testament identifies one of the two ordered book groups.
type Testament string

const (
	Old Testament = "old"
	New Testament = "new"
)

// Book is a canonical book of the Bible.
type Book struct {
	Name      string    `json:"name"`
	Chapters  int       `json:"chapters"`
	Testament Testament `json:"testament"`
}

var oldTestament = []Book{
	{"Genesis", 50, Old}, {"Exodus", 40, Old}, {"Leviticus", 27, Old},
	{"Numbers", 36, Old}, {"Deuteronomy", 34, Old}, {"Joshua", 24, Old},
	{"Judges", 21, Old}, {"Ruth", 4, Old}, {"1 Samuel", 31, Old},
	{"2 Samuel", 24, Old}, {"1 Kings", 22, Old}, {"2 Kings", 25, Old},
	{"1 Chronicles", 29, Old}, {"2 Chronicles", 36, Old}, {"Ezra", 10, Old},
	{"Nehemiah", 13, Old}, {"Esther", 10, Old}, {"Job", 42, Old},
	{"Psalms", 150, Old}, {"Proverbs", 31, Old}, {"Ecclesiastes", 12, Old},
	{"Song of Solomon", 8, Old}, {"Isaiah", 66, Old}, {"Jeremiah", 52, Old},
	{"Lamentations", 5, Old}, {"Ezekiel", 48, Old}, {"Daniel", 12, Old},
	{"Hosea", 14, Old}, {"Joel", 3, Old}, {"Amos", 9, Old},
	{"Obadiah", 1, Old}, {"Jonah", 4, Old}, {"Micah", 7, Old},
	{"Nahum", 3, Old}, {"Habakkuk", 3, Old}, {"Zephaniah", 3, Old},
	{"Haggai", 2, Old}, {"Zechariah", 14, Old}, {"Malachi", 4, Old},
}

var newTestament = []Book{
	{"Matthew", 28, New}, {"Mark", 16, New}, {"Luke", 24, New},
	{"John", 21, New}, {"Acts", 28, New}, {"Romans", 16, New},
	{"1 Corinthians", 16, New}, {"2 Corinthians", 13, New}, {"Galatians", 6, New},
	{"Ephesians", 6, New}, {"Philippians", 4, New}, {"Colossians", 4, New},
	{"1 Thessalonians", 5, New}, {"2 Thessalonians", 3, New}, {"1 Timothy", 6, New},
	{"2 Timothy", 4, New}, {"Titus", 3, New}, {"Philemon", 1, New},
	{"Hebrews", 13, New}, {"James", 5, New}, {"1 Peter", 5, New},
	{"2 Peter", 3, New}, {"1 John", 5, New}, {"2 John", 1, New},
	{"3 John", 1, New}, {"Jude", 1, New}, {"Revelation", 22, New},
}

var byName = func() map[string]Book {
	m := make(map[string]Book, len(oldTestament)+len(newTestament))
	for _, b := range oldTestament {
		m[b.Name] = b
	}
	for _, b := range newTestament {
		m[b.Name] = b
	}
	return m
}()

// OldTestament returns the Old Testament books in canonical order.
func OldTestament() []Book {
	return append([]Book(nil), oldTestament...)
}

// NewTestament returns the New Testament books in canonical order.
func NewTestament() []Book {
	return append([]Book(nil), newTestament...)
}

// All returns every book, Old Testament first.
func All() []Book {
	books := make([]Book, 0, len(oldTestament)+len(newTestament))
	books = append(books, oldTestament...)
	return append(books, newTestament...)
}

// FindBook looks a book up by its exact name.
func FindBook(name string) (Book, bool) {
	b, ok := byName[name]
	return b, ok
}

// MatchBook resolves a user-typed name: exact match first, then a
// case-insensitive prefix match in canonical order.
func MatchBook(name string) (Book, bool) {
	if b, ok := FindBook(name); ok {
		return b, true
	}
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return Book{}, false
	}
	for _, b := range All() {
		bookLower := strings.ToLower(b.Name)
		if bookLower == lower || strings.HasPrefix(bookLower, lower) {
			return b, true
		}
	}
	return Book{}, false
}
