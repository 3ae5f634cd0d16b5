package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"bible-study/internal/assistant"
	"bible-study/internal/config"
	"bible-study/internal/logging"
	"bible-study/internal/progress"
	"bible-study/internal/scripture"
)

// app holds the services shared by every command.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	fetcher   scripture.Fetcher
	local     *scripture.LocalSource
	generator assistant.Generator
	progress  *progress.Store
	closers   []io.Closer
}

// logTarget selects where an app logs. The reader owns the terminal, so it
// logs to a file in the data directory.
type logTarget int

const (
	logToStderr logTarget = iota
	logToFile
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, target logTarget, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	out := stderr
	if target == logToFile {
		f, err := logging.OpenFile(cfg.Path(config.LogFile))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, f)
		out = f
	}
	a.log = logging.New(cfg.Log, out)

	if err := a.openScripture(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openProgress(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.generator = newGenerator(cfg, a.log)
	return a, nil
}

func (a *app) openScripture() error {
	sc := a.cfg.Scripture
	if sc.Source == config.SourceLocal {
		local, err := scripture.NewLocalSource(sc.LocalDir, sc.Translation)
		if err != nil {
			return err
		}
		a.local = local
		a.fetcher = local
		a.log.Info("reading from local translations",
			slog.String("dir", sc.LocalDir),
			slog.Any("translations", local.Translations()))
		return nil
	}

	client := scripture.NewBibleAPIClient(sc.APIURL, sc.Translation, sc.Timeout)
	namespace := sc.Translation
	if namespace == "" {
		namespace = "default"
	}

	var cache scripture.ChapterCache = scripture.NewMemoryCache()
	if addr := a.cfg.Cache.RedisAddr; addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: a.cfg.Cache.RedisPassword,
			DB:       a.cfg.Cache.RedisDB,
		})
		a.closers = append(a.closers, rdb)
		cache = scripture.NewRedisCache(rdb, a.cfg.Cache.TTL)
		a.log.Info("caching chapters in redis", slog.String("addr", addr))
	}
	a.fetcher = scripture.NewCachedFetcher(client, cache, namespace, a.log)
	return nil
}

func (a *app) openProgress(ctx context.Context) error {
	persister, closer, err := openPersister(a.cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	a.progress = progress.Open(ctx, persister, a.log)
	return nil
}

// openPersister opens the configured progress backend. The closer is nil
// when the backend holds nothing open.
func openPersister(cfg *config.Config) (progress.Persister, io.Closer, error) {
	if cfg.Storage.Driver == config.DriverSQLite {
		db, err := progress.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	}
	return progress.NewFilePersister(cfg.Storage.Path), nil, nil
}

func newGenerator(cfg *config.Config, log *slog.Logger) assistant.Generator {
	if !cfg.AIEnabled() {
		log.Info("no AI key configured, assistant answers are unavailable")
		return assistant.Offline{}
	}
	return assistant.NewAnthropicGenerator(assistant.AnthropicConfig{
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.Model,
		BaseURL:   cfg.AI.BaseURL,
		MaxTokens: cfg.AI.MaxTokens,
		Timeout:   cfg.AI.Timeout,
	}, log)
}

// Close releases everything opened by newApp, last opened first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
