package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"bible-study/internal/assistant"
)

// DailyVerseCache holds the verse served by /api/daily-verse.
type DailyVerseCache struct {
	gen assistant.Generator
	log *slog.Logger

	mu          sync.RWMutex
	verse       *assistant.DailyVerse
	refreshedAt time.Time
}

func NewDailyVerseCache(gen assistant.Generator, log *slog.Logger) *DailyVerseCache {
	return &DailyVerseCache{gen: gen, log: log}
}

// Refresh generates a new verse, storing the fallback verse on failure.
func (c *DailyVerseCache) Refresh(ctx context.Context) assistant.DailyVerse {
	v, err := c.gen.DailyVerse(ctx)
	if err != nil {
		c.log.Warn("daily verse generation failed, using fallback", slog.Any("error", err))
		v = assistant.FallbackDailyVerse
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.verse = &v
	c.refreshedAt = time.Now()
	return v
}

// Get returns the cached verse, generating one on first use.
func (c *DailyVerseCache) Get(ctx context.Context) (assistant.DailyVerse, time.Time) {
	c.mu.RLock()
	if c.verse != nil {
		v, at := *c.verse, c.refreshedAt
		c.mu.RUnlock()
		return v, at
	}
	c.mu.RUnlock()

	v := c.Refresh(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return v, c.refreshedAt
}

// Scheduler refreshes a DailyVerseCache on a cron schedule.
type Scheduler struct {
	cron  *cron.Cron
	cache *DailyVerseCache
	log   *slog.Logger
}

func NewScheduler(cache *DailyVerseCache, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
		cache: cache,
		log:   log,
	}
}

// Start schedules the refresh job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		v := s.cache.Refresh(ctx)
		s.log.Info("daily verse refreshed", slog.String("reference", v.Reference))
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	s.cron.Start()
	s.log.Info("daily verse scheduler started",
		slog.String("schedule", schedule),
		slog.Time("next_run", s.cron.Entry(entryID).Next))
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
