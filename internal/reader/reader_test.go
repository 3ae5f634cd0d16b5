package reader

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bible-study/internal/scripture"
)

type fakeFetcher struct {
	verses int
	err    error
	calls  []string
}

func (f *fakeFetcher) FetchChapter(_ context.Context, book string, chapter int) (*scripture.ChapterData, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s %d", book, chapter))
	if f.err != nil {
		return nil, f.err
	}
	data := &scripture.ChapterData{Reference: fmt.Sprintf("%s %d", book, chapter)}
	for i := 1; i <= f.verses; i++ {
		data.Verses = append(data.Verses, scripture.Verse{
			BookName: book,
			Chapter:  chapter,
			Verse:    i,
			Text:     fmt.Sprintf("verse %d", i),
		})
	}
	return data, nil
}

// load runs a request, if any, and applies its result.
func load(t *testing.T, r *Reader, f scripture.Fetcher, req *LoadRequest) {
	t.Helper()
	require.NotNil(t, req)
	require.True(t, r.ApplyLoad(Run(context.Background(), f, *req)))
}

func verseNumbers(vs []scripture.Verse) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = v.Verse
	}
	return out
}

func TestInitialState(t *testing.T) {
	r := New()
	assert.Equal(t, NoBookSelected, r.State())
	assert.Nil(t, r.DisplayedVerses())
	assert.Nil(t, r.Selected())

	_, err := r.SelectChapter(1)
	assert.ErrorIs(t, err, ErrNoBookSelected)
}

func TestGenesisScenario(t *testing.T) {
	f := &fakeFetcher{verses: 31}
	r := New()

	req, err := r.SelectBook("Genesis")
	require.NoError(t, err)
	assert.Equal(t, ChapterLoading, r.State())
	assert.Equal(t, "Genesis", req.Book)
	assert.Equal(t, 1, req.Chapter)

	load(t, r, f, req)
	assert.Equal(t, ChapterLoaded, r.State())
	assert.False(t, r.Loading())
	assert.Equal(t, []int{1, 2, 3}, verseNumbers(r.DisplayedVerses()))

	assert.True(t, r.AdvancePage())
	assert.Equal(t, []int{4, 5, 6}, verseNumbers(r.DisplayedVerses()))

	current, total := r.Page()
	assert.Equal(t, 2, current)
	assert.Equal(t, 11, total)
}

func TestSelectBookResetsChapterAndSelection(t *testing.T) {
	f := &fakeFetcher{verses: 10}
	r := New()

	req, _ := r.SelectBook("Exodus")
	load(t, r, f, req)
	req, err := r.SelectChapter(5)
	require.NoError(t, err)
	load(t, r, f, req)
	r.AdvancePage()
	r.SelectVerse(&r.DisplayedVerses()[0])
	require.NotNil(t, r.Selected())

	req, err = r.SelectBook("John")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Chapter())
	assert.Nil(t, r.Selected())
	assert.Equal(t, 0, r.Offset())
	assert.Equal(t, LoadRequest{Book: "John", Chapter: 1, Seq: req.Seq}, *req)
}

func TestSelectBookEmptyResets(t *testing.T) {
	f := &fakeFetcher{verses: 5}
	r := New()
	req, _ := r.SelectBook("Ruth")
	load(t, r, f, req)
	r.SelectVerse(&r.DisplayedVerses()[1])

	req, err := r.SelectBook("")
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, NoBookSelected, r.State())
	assert.Equal(t, 0, r.Chapter())
	assert.Nil(t, r.Data())
	assert.Nil(t, r.Selected())
}

func TestSelectBookUnknown(t *testing.T) {
	r := New()
	_, err := r.SelectBook("Hezekiah")
	assert.ErrorIs(t, err, ErrUnknownBook)
	assert.Equal(t, NoBookSelected, r.State())
}

func TestSelectChapterOutOfRange(t *testing.T) {
	f := &fakeFetcher{verses: 5}
	r := New()
	req, _ := r.SelectBook("Ruth")
	load(t, r, f, req)

	for _, n := range []int{0, -1, 5} {
		req, err := r.SelectChapter(n)
		assert.ErrorIs(t, err, ErrChapterOutOfRange, "chapter %d", n)
		assert.Nil(t, req)
		assert.Equal(t, 1, r.Chapter())
		assert.Equal(t, ChapterLoaded, r.State())
	}

	req, err := r.SelectChapter(4)
	require.NoError(t, err)
	assert.Equal(t, 4, req.Chapter)
}

func TestSamePairDoesNotRefetch(t *testing.T) {
	f := &fakeFetcher{verses: 9}
	r := New()
	req, _ := r.SelectBook("Genesis")
	load(t, r, f, req)
	r.AdvancePage()

	req, err := r.SelectChapter(1)
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, 0, r.Offset(), "page still resets")
	assert.NotNil(t, r.Data())

	req, _ = r.SelectBook("Genesis")
	assert.Nil(t, req)
	assert.Len(t, f.calls, 1)
}

func TestReload(t *testing.T) {
	f := &fakeFetcher{verses: 9}
	r := New()
	assert.Nil(t, r.Reload())

	req, _ := r.SelectBook("Ruth")
	load(t, r, f, req)
	r.AdvancePage()

	req = r.Reload()
	require.NotNil(t, req)
	assert.Equal(t, "Ruth", req.Book)
	assert.Equal(t, ChapterLoading, r.State())
	assert.Equal(t, 0, r.Offset())
	load(t, r, f, req)
	assert.Equal(t, []string{"Ruth 1", "Ruth 1"}, f.calls)
}

func TestSamePairWhileLoadingDoesNotRefetch(t *testing.T) {
	r := New()
	first, _ := r.SelectBook("Genesis")
	require.NotNil(t, first)

	again, err := r.SelectChapter(1)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.True(t, r.Loading())
}

func TestLoadFailureAndRecovery(t *testing.T) {
	f := &fakeFetcher{err: &scripture.HTTPError{StatusCode: 500}}
	r := New()

	req, _ := r.SelectBook("Genesis")
	load(t, r, f, req)
	assert.Equal(t, ChapterLoadFailed, r.State())
	assert.Nil(t, r.Data())
	assert.NotEmpty(t, r.ErrorMessage())
	var httpErr *scripture.HTTPError
	assert.True(t, errors.As(r.Err(), &httpErr))

	f.err = nil
	f.verses = 4
	req, err := r.SelectChapter(2)
	require.NoError(t, err)
	assert.Nil(t, r.Err(), "starting a load clears the error")
	assert.Equal(t, ChapterLoading, r.State())

	load(t, r, f, req)
	assert.Equal(t, ChapterLoaded, r.State())
	assert.Empty(t, r.ErrorMessage())
}

func TestFailedPairCanBeRetried(t *testing.T) {
	f := &fakeFetcher{err: errors.New("network down")}
	r := New()
	req, _ := r.SelectBook("Mark")
	load(t, r, f, req)

	f.err = nil
	f.verses = 3
	req, err := r.SelectChapter(1)
	require.NoError(t, err)
	require.NotNil(t, req)
	load(t, r, f, req)
	assert.Equal(t, ChapterLoaded, r.State())
}

func TestStaleLoadIsIgnored(t *testing.T) {
	f := &fakeFetcher{verses: 3}
	r := New()

	stale, _ := r.SelectBook("Genesis")
	fresh, _ := r.SelectChapter(2)
	require.NotNil(t, stale)
	require.NotNil(t, fresh)

	freshResult := Run(context.Background(), f, *fresh)
	staleResult := Run(context.Background(), f, *stale)

	assert.True(t, r.ApplyLoad(freshResult))
	assert.False(t, r.ApplyLoad(staleResult))
	assert.Equal(t, "Genesis 2", r.Data().Reference)
}

func TestLoadAfterDeselectIsIgnored(t *testing.T) {
	f := &fakeFetcher{verses: 3}
	r := New()
	req, _ := r.SelectBook("Genesis")
	_, _ = r.SelectBook("")

	assert.False(t, r.ApplyLoad(Run(context.Background(), f, *req)))
	assert.Equal(t, NoBookSelected, r.State())
}

func TestPaginationBounds(t *testing.T) {
	tests := []struct {
		verses   int
		advances int
		offset   int
	}{
		{verses: 1, advances: 0, offset: 0},
		{verses: 3, advances: 0, offset: 0},
		{verses: 4, advances: 1, offset: 3},
		{verses: 6, advances: 1, offset: 3},
		{verses: 7, advances: 2, offset: 6},
		{verses: 31, advances: 10, offset: 30},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d verses", tt.verses), func(t *testing.T) {
			f := &fakeFetcher{verses: tt.verses}
			r := New()
			req, _ := r.SelectBook("Genesis")
			load(t, r, f, req)

			advanced := 0
			for r.AdvancePage() {
				advanced++
				assert.Less(t, r.Offset(), tt.verses)
			}
			assert.Equal(t, tt.advances, advanced)
			assert.Equal(t, tt.offset, r.Offset())
			assert.False(t, r.AdvancePage(), "advancing at the last page is a no-op")
			assert.Equal(t, tt.offset, r.Offset())

			for r.RetreatPage() {
				assert.GreaterOrEqual(t, r.Offset(), 0)
			}
			assert.Equal(t, 0, r.Offset())
			assert.False(t, r.RetreatPage())
		})
	}
}

func TestPaginationWithoutData(t *testing.T) {
	r := New()
	assert.False(t, r.AdvancePage())
	assert.False(t, r.RetreatPage())
	assert.False(t, r.SetPage(2))

	current, total := r.Page()
	assert.Zero(t, current)
	assert.Zero(t, total)
}

func TestPageChangeClearsSelection(t *testing.T) {
	f := &fakeFetcher{verses: 9}
	r := New()
	req, _ := r.SelectBook("Genesis")
	load(t, r, f, req)

	r.SelectVerse(&r.DisplayedVerses()[2])
	require.NotNil(t, r.Selected())
	r.AdvancePage()
	assert.Nil(t, r.Selected())

	r.SelectVerse(&r.DisplayedVerses()[0])
	r.RetreatPage()
	assert.Nil(t, r.Selected())

	r.SelectVerse(&r.DisplayedVerses()[0])
	assert.False(t, r.RetreatPage())
	assert.NotNil(t, r.Selected(), "no-op page change keeps the selection")
}

func TestSelectVerse(t *testing.T) {
	f := &fakeFetcher{verses: 3}
	r := New()
	req, _ := r.SelectBook("John")
	load(t, r, f, req)

	r.SelectVerse(&r.DisplayedVerses()[1])
	assert.Equal(t, &SelectedVerse{Reference: "John 1:2", Text: "verse 2"}, r.Selected())

	r.SelectVerse(nil)
	assert.Nil(t, r.Selected())
}

func TestSetPageAndShowVerse(t *testing.T) {
	f := &fakeFetcher{verses: 10}
	r := New()
	req, _ := r.SelectBook("John")
	load(t, r, f, req)

	assert.True(t, r.SetPage(2))
	assert.Equal(t, 6, r.Offset())
	assert.True(t, r.SetPage(99))
	assert.Equal(t, 9, r.Offset())
	assert.False(t, r.SetPage(99))

	assert.True(t, r.ShowVerse(5))
	assert.Equal(t, 3, r.Offset())
	assert.Equal(t, "John 1:5", r.Selected().Reference)
	assert.False(t, r.ShowVerse(42))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "chapter-loaded", ChapterLoaded.String())
	assert.Equal(t, "state(9)", State(9).String())
}
