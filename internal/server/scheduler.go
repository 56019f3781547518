package server

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/llmcheck/visibility/internal/scan"
	"github.com/llmcheck/visibility/internal/store"
)

// Scheduler re-runs scans for tracked URLs on their cron schedules so the
// trend series keeps moving without user traffic. A Redis SetNX lock keeps
// multiple server replicas from scanning the same URL at once.
type Scheduler struct {
	Store  *store.Store
	Orch   *scan.Orchestrator
	Rdb    *redis.Client
	Logger *log.Logger
	Stop   chan struct{}
}

func (s *Scheduler) Start() {
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	tracked, err := s.Store.ListAllTrackedURLs(ctx)
	if err != nil {
		s.Logger.Printf("list tracked urls: %v", err)
		return
	}
	for _, t := range tracked {
		var last *time.Time
		ts, err := s.Store.LatestScanTime(ctx, t.URL)
		switch {
		case err == nil:
			last = &ts
		case errors.Is(err, store.ErrNotFound):
			// never scanned, due now
		default:
			s.Logger.Printf("latest scan time for %s: %v", t.URL, err)
			continue
		}
		if !isDue(t.ScheduleCron, last) {
			continue
		}

		if s.Rdb != nil {
			lockKey := "sched:lock:" + t.URL
			ok, err := s.Rdb.SetNX(ctx, lockKey, "1", 5*time.Minute).Result()
			if err != nil {
				// Skip rather than scan unlocked: every replica would
				// otherwise fan out the same provider calls at once.
				s.Logger.Printf("scheduler lock for %s: %v", t.URL, err)
				continue
			}
			if !ok {
				continue
			}
		}

		go s.runScan(t)
	}
}

func (s *Scheduler) runScan(t store.TrackedURL) {
	ctx := context.Background()
	out, err := s.Orch.Run(ctx, scan.Query{TargetURL: t.URL, Industry: t.Industry})
	if err != nil {
		s.Logger.Printf("scheduled scan for %s: %v", t.URL, err)
		return
	}
	if err := s.Store.SaveScan(ctx, out); err != nil {
		s.Logger.Printf("save scheduled scan for %s: %v", t.URL, err)
		return
	}
	s.Logger.Printf("scheduled scan for %s: %d/%d found", t.URL, out.TotalFound, out.TotalQueries)
}

// isDue determines whether a URL with cronSpec should be rescanned now given
// its last scan time. Supports "@daily", "@hourly", and 5-field cron
// expressions; invalid expressions fall back to @daily.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "", "@daily":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			if last == nil {
				return true
			}
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			return true
		}
		next := expr.Next(*last)
		return !next.After(now)
	}
}
