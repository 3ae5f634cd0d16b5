package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bible-study/internal/assistant"
	"bible-study/internal/catalog"
	"bible-study/internal/markup"
	"bible-study/internal/scripture"
)

type handlers struct {
	deps Deps
}

type bookResponse struct {
	catalog.Book
	ReadChapters []int `json:"read_chapters"`
	Percent      int   `json:"percent"`
}

type chapterResponse struct {
	*scripture.ChapterData
	Read bool `json:"read"`
}

type toggleResponse struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Read    bool   `json:"read"`
	Percent int    `json:"percent"`
}

type dailyVerseResponse struct {
	Reference   string    `json:"reference"`
	Text        string    `json:"text"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

type explainRequest struct {
	Reference string `json:"reference" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

type explainResponse struct {
	Reference string `json:"reference"`
	HTML      string `json:"html"`
}

type searchResponse struct {
	Query   string            `json:"query"`
	Results []scripture.Verse `json:"results"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question string `json:"question"`
	HTML     string `json:"html"`
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) listBooks(c *gin.Context) {
	snapshot := h.deps.Progress.Snapshot()
	describe := func(books []catalog.Book) []bookResponse {
		out := make([]bookResponse, len(books))
		for i, b := range books {
			read := snapshot[b.Name]
			if read == nil {
				read = []int{}
			}
			out[i] = bookResponse{Book: b, ReadChapters: read, Percent: h.deps.Progress.Percent(b)}
		}
		return out
	}

	c.JSON(http.StatusOK, gin.H{
		"old": describe(catalog.OldTestament()),
		"new": describe(catalog.NewTestament()),
	})
}

// bookChapter resolves the :book and :chapter parameters, writing the error
// response itself when they are invalid.
func bookChapter(c *gin.Context) (catalog.Book, int, bool) {
	book, ok := catalog.FindBook(c.Param("book"))
	if !ok {
		errorJSON(c, http.StatusNotFound, fmt.Sprintf("unknown book %q", c.Param("book")))
		return catalog.Book{}, 0, false
	}
	chapter, err := strconv.Atoi(c.Param("chapter"))
	if err != nil || chapter < 1 || chapter > book.Chapters {
		errorJSON(c, http.StatusBadRequest, fmt.Sprintf("chapter must be between 1 and %d", book.Chapters))
		return catalog.Book{}, 0, false
	}
	return book, chapter, true
}

func (h *handlers) getChapter(c *gin.Context) {
	book, chapter, ok := bookChapter(c)
	if !ok {
		return
	}

	data, err := h.deps.Fetcher.FetchChapter(c.Request.Context(), book.Name, chapter)
	if err == nil && data == nil {
		err = fmt.Errorf("%s %d: %w", book.Name, chapter, scripture.ErrChapterNotFound)
	}
	if err != nil {
		logger(c).Warn("chapter fetch failed",
			slog.String("book", book.Name),
			slog.Int("chapter", chapter),
			slog.Any("error", err))
		errorJSON(c, http.StatusBadGateway, scripture.UserMessage(err))
		return
	}

	c.JSON(http.StatusOK, chapterResponse{
		ChapterData: data,
		Read:        h.deps.Progress.IsRead(book.Name, chapter),
	})
}

func (h *handlers) getProgress(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Progress.Snapshot())
}

func (h *handlers) toggleProgress(c *gin.Context) {
	book, chapter, ok := bookChapter(c)
	if !ok {
		return
	}

	read := h.deps.Progress.ToggleRead(c.Request.Context(), book.Name, chapter)
	c.JSON(http.StatusOK, toggleResponse{
		Book:    book.Name,
		Chapter: chapter,
		Read:    read,
		Percent: h.deps.Progress.Percent(book),
	})
}

func (h *handlers) getDailyVerse(c *gin.Context) {
	v, at := h.deps.DailyVerse.Get(c.Request.Context())
	c.JSON(http.StatusOK, dailyVerseResponse{Reference: v.Reference, Text: v.Text, RefreshedAt: at})
}

func (h *handlers) explain(c *gin.Context) {
	var req explainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "reference and text are required")
		return
	}

	text, err := h.deps.Generator.Explain(c.Request.Context(), req.Reference, req.Text)
	if err != nil {
		logger(c).Warn("verse explanation failed", slog.Any("error", err))
		text = assistant.ExplanationFallback
	}
	c.JSON(http.StatusOK, explainResponse{Reference: req.Reference, HTML: string(markup.HTML(text))})
}

func (h *handlers) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		errorJSON(c, http.StatusBadRequest, assistant.ErrEmptyQuestion.Error())
		return
	}

	text, err := h.deps.Generator.Answer(c.Request.Context(), question)
	if err != nil {
		if !errors.Is(err, assistant.ErrGeneratorUnavailable) {
			logger(c).Warn("question answering failed", slog.Any("error", err))
		}
		text = assistant.AnswerFallback
	}
	c.JSON(http.StatusOK, askResponse{Question: question, HTML: string(markup.HTML(text))})
}

const defaultSearchLimit = 50

func (h *handlers) search(c *gin.Context) {
	if h.deps.Searcher == nil {
		errorJSON(c, http.StatusNotImplemented, "search needs a local scripture source")
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		errorJSON(c, http.StatusBadRequest, "query must not be empty")
		return
	}
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errorJSON(c, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	verses, err := h.deps.Searcher.Search(c.Request.Context(), query, limit)
	if err != nil {
		logger(c).Error("search failed", slog.String("query", query), slog.Any("error", err))
		errorJSON(c, http.StatusInternalServerError, "search failed")
		return
	}
	if verses == nil {
		verses = []scripture.Verse{}
	}
	c.JSON(http.StatusOK, searchResponse{Query: query, Results: verses})
}
