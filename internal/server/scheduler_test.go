package server

import (
	"bytes"
	"context"
	"log"
	"sync/atomic"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"

	"github.com/llmcheck/visibility/config"
	"github.com/llmcheck/visibility/internal/scan"
	"github.com/llmcheck/visibility/internal/store"
)

type countingProvider struct {
	model scan.Model
	calls *atomic.Int32
}

func (p countingProvider) Model() scan.Model { return p.model }
func (p countingProvider) Complete(ctx context.Context, prompt string) (string, error) {
	p.calls.Add(1)
	return "", nil
}

func TestTickSkipsWhenLockServiceIsDown(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	var calls atomic.Int32
	orch, err := scan.NewOrchestrator(config.ScanConfig{CallTimeout: time.Second}, []scan.Provider{
		countingProvider{model: scan.ModelChatGPT, calls: &calls},
	}, log.New(log.Writer(), "[SCAN] ", log.LstdFlags))
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}

	var buf bytes.Buffer
	sched := &Scheduler{
		Store:  &store.Store{DB: db},
		Orch:   orch,
		Rdb:    redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}),
		Logger: log.New(&buf, "[SCHED] ", log.LstdFlags),
		Stop:   make(chan struct{}),
	}

	mock.ExpectQuery("FROM tracked_urls").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "url", "industry", "schedule_cron", "created_at"}).
			AddRow("t-1", "user-1", "https://acme.io", "saas", "@daily", time.Now()))
	// never scanned, so the URL is due
	mock.ExpectQuery("SELECT scanned_at FROM scans").
		WithArgs("https://acme.io").
		WillReturnRows(sqlmock.NewRows([]string{"scanned_at"}))

	sched.tick()

	if got := calls.Load(); got != 0 {
		t.Fatalf("scan ran %d provider calls despite the lock service being down", got)
	}
	if !bytes.Contains(buf.Bytes(), []byte("scheduler lock")) {
		t.Fatalf("lock failure not logged: %q", buf.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIsDue(t *testing.T) {
	dayAgo := time.Now().Add(-25 * time.Hour)
	hourAgo := time.Now().Add(-61 * time.Minute)
	justNow := time.Now().Add(-time.Minute)

	tests := []struct {
		name string
		cron string
		last *time.Time
		want bool
	}{
		{"never scanned is due", "@daily", nil, true},
		{"daily due after a day", "@daily", &dayAgo, true},
		{"daily not due after a minute", "@daily", &justNow, false},
		{"hourly due after an hour", "@hourly", &hourAgo, true},
		{"hourly not due after a minute", "@hourly", &justNow, false},
		{"empty schedule defaults to daily", "", &dayAgo, true},
		{"cron expression due", "0 * * * *", &hourAgo, true},
		{"invalid cron falls back to daily", "bananas", &justNow, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isDue(tt.cron, tt.last); got != tt.want {
				t.Fatalf("isDue(%q) got %v, want %v", tt.cron, got, tt.want)
			}
		})
	}
}
