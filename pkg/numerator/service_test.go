package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64 // Simulates DB sequence value
	queries      int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Strict passes (key); cached passes (key, increment).
	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	m.queries++

	return &mockRow{val: m.currentValue}
}

var period = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func TestNextNumber_Sequential(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()

	num, err := svc.NextNumber(ctx, "TXN", period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TXN-2026-00001" {
		t.Errorf("expected TXN-2026-00001, got %s", num)
	}

	num, err = svc.NextNumber(ctx, "TXN", period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TXN-2026-00002" {
		t.Errorf("expected TXN-2026-00002, got %s", num)
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("TXN")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	// The whole range is served from one allocation query.
	for i := 1; i <= 10; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, opts, period)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := formatNumber(cfg, period, int64(i))
		if num != want {
			t.Errorf("expected %s, got %s", want, num)
		}
	}
	if q.queries != 1 {
		t.Errorf("expected 1 allocation query, got %d", q.queries)
	}

	// The 11th number triggers a refill.
	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != formatNumber(cfg, period, 11) {
		t.Errorf("expected number 11, got %s", num)
	}
	if q.queries != 2 {
		t.Errorf("expected 2 allocation queries, got %d", q.queries)
	}
}

func TestBuildKey(t *testing.T) {
	if got := buildKey(Config{Prefix: "TXN", ResetPeriod: "year"}, period); got != "TXN_2026" {
		t.Errorf("year key: got %s", got)
	}
	if got := buildKey(Config{Prefix: "TXN", ResetPeriod: "month"}, period); got != "TXN_2026_03" {
		t.Errorf("month key: got %s", got)
	}
	if got := buildKey(Config{Prefix: "TXN", ResetPeriod: "never"}, period); got != "TXN" {
		t.Errorf("never key: got %s", got)
	}
}
