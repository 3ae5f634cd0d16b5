package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"bible-study/internal/catalog"
	"bible-study/internal/config"
	"bible-study/internal/logging"
	"bible-study/internal/progress"
	"bible-study/internal/scripture"
	"bible-study/internal/server"
	"bible-study/internal/ui"
)

// ReadCmd opens the interactive reader.
type ReadCmd struct {
	Reference []string `arg:"" optional:"" help:"Passage to open, e.g. 'John 3:16'"`
}

func (c *ReadCmd) Run() error {
	var start *scripture.Location
	if len(c.Reference) > 0 {
		loc, err := scripture.ParseReference(strings.Join(c.Reference, " "))
		if err != nil {
			return err
		}
		start = &loc
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, logToFile, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	deps := ui.Deps{
		Fetcher:   a.fetcher,
		Generator: a.generator,
		Progress:  a.progress,
		Session:   ui.NewSessionStore(a.cfg.Path(config.StateFile)),
		Theme:     a.cfg.Theme,
		Log:       a.log,
		Start:     start,
	}
	if a.local != nil {
		deps.Translations = a.local
		deps.Searcher = a.local
	}

	a.log.Info("starting reader", slog.String("version", version))
	if _, err := tea.NewProgram(ui.New(ctx, deps), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run reader: %w", err)
	}
	return nil
}

// ServeCmd starts the HTTP API.
type ServeCmd struct {
	Addr string `help:"Listen address, overrides server.addr"`
}

func (c *ServeCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, logToStderr, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}

	daily := server.NewDailyVerseCache(a.generator, a.log)
	scheduler := server.NewScheduler(daily, a.log)
	if err := scheduler.Start(ctx, a.cfg.Server.DailyVerseCron); err != nil {
		return err
	}
	defer scheduler.Stop()

	deps := server.Deps{
		Fetcher:    a.fetcher,
		Generator:  a.generator,
		Progress:   a.progress,
		DailyVerse: daily,
		Log:        a.log,
	}
	if a.local != nil {
		deps.Searcher = a.local
	}

	return server.Serve(ctx, addr, server.NewRouter(deps), a.cfg.Server.ShutdownTimeout, a.log)
}

// ProgressCmd prints how far each started book has been read.
type ProgressCmd struct {
	All bool `help:"Include books with no chapters read"`
}

func (c *ProgressCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	log := logging.New(cfg.Log, os.Stderr)

	persister, closer, err := openPersister(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	return printProgress(os.Stdout, progress.Open(ctx, persister, log), c.All)
}

func printProgress(w io.Writer, store *progress.Store, all bool) error {
	printed := 0
	for _, group := range []struct {
		title string
		books []catalog.Book
	}{
		{"Old Testament", catalog.OldTestament()},
		{"New Testament", catalog.NewTestament()},
	} {
		header := false
		for _, book := range group.books {
			read := store.ReadCount(book.Name)
			if read == 0 && !all {
				continue
			}
			if !header {
				if printed > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintln(w, group.title)
				header = true
			}
			fmt.Fprintf(w, "  %-18s %3d/%-3d %3d%%\n", book.Name, read, book.Chapters, store.Percent(book))
			printed++
		}
	}
	if printed == 0 {
		_, err := fmt.Fprintln(w, "No chapters read yet.")
		return err
	}
	return nil
}

// SearchCmd searches the active local translation.
type SearchCmd struct {
	Query []string `arg:"" help:"Words to search for; a leading book name narrows the search"`
	Limit int      `short:"n" default:"20" help:"Maximum number of results"`
}

func (c *SearchCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Scripture.Source != config.SourceLocal {
		return errors.New("search needs scripture.source set to local")
	}

	local, err := scripture.NewLocalSource(cfg.Scripture.LocalDir, cfg.Scripture.Translation)
	if err != nil {
		return err
	}
	verses, err := local.Search(context.Background(), strings.Join(c.Query, " "), c.Limit)
	if err != nil {
		return err
	}
	return printVerses(os.Stdout, verses)
}

func printVerses(w io.Writer, verses []scripture.Verse) error {
	if len(verses) == 0 {
		_, err := fmt.Fprintln(w, "No matches.")
		return err
	}
	for _, v := range verses {
		if _, err := fmt.Fprintf(w, "%s  %s\n", v.Reference(), v.Text); err != nil {
			return err
		}
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("bible-study version %s\n", version)
	return nil
}
