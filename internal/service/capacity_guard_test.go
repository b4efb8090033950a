package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestGuard(t *testing.T) (*RedisCapacityGuard, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	guard := NewRedisCapacityGuard(nil, client, newTestLogger())
	guard.now = func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(guard.Stop)
	return guard, mr
}

func TestDailyKey(t *testing.T) {
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	if got := DailyKey(5, date); got != "appointment:daily:5:2026-10-19" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestCapacityGuard_ReserveUntilFull(t *testing.T) {
	guard, mr := newTestGuard(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	if err := guard.Reserve(ctx, 5, date, 2, 0); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if err := guard.Reserve(ctx, 5, date, 2, 0); err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if err := guard.Reserve(ctx, 5, date, 2, 0); !errors.Is(err, ErrCapacityFull) {
		t.Fatalf("expected ErrCapacityFull, got %v", err)
	}

	got, err := mr.Get(DailyKey(5, date))
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if got != "2" {
		t.Fatalf("expected counter rolled back to 2, got %s", got)
	}
	if ttl := mr.TTL(DailyKey(5, date)); ttl <= 0 {
		t.Fatalf("expected counter to carry a TTL, got %v", ttl)
	}
}

func TestCapacityGuard_SeedsFromBookedCount(t *testing.T) {
	guard, _ := newTestGuard(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	if err := guard.Reserve(ctx, 7, date, 2, 2); !errors.Is(err, ErrCapacityFull) {
		t.Fatalf("expected ErrCapacityFull with 2 already booked, got %v", err)
	}
	if err := guard.Reserve(ctx, 8, date, 5, 2); err != nil {
		t.Fatalf("expected room with capacity 5, got %v", err)
	}
}

func TestCapacityGuard_ReleaseFreesSlot(t *testing.T) {
	guard, mr := newTestGuard(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if err := guard.Reserve(ctx, 5, date, 2, 0); err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
	}
	if err := guard.Release(ctx, 5, date); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := guard.Reserve(ctx, 5, date, 2, 0); err != nil {
		t.Fatalf("expected slot after release, got %v", err)
	}

	if err := guard.Release(ctx, 9, date); err != nil {
		t.Fatalf("release of unknown day: %v", err)
	}
	if mr.Exists(DailyKey(9, date)) {
		t.Fatalf("expected release not to create a counter")
	}
}

func TestCapacityGuard_ReleaseNeverNegative(t *testing.T) {
	guard, mr := newTestGuard(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	mr.Set(DailyKey(5, date), "0")
	if err := guard.Release(ctx, 5, date); err != nil {
		t.Fatalf("release: %v", err)
	}
	got, _ := mr.Get(DailyKey(5, date))
	if got != "0" {
		t.Fatalf("expected counter to stay at 0, got %s", got)
	}
}

func TestCapacityGuard_RedisDown(t *testing.T) {
	guard, mr := newTestGuard(t)
	mr.Close()

	err := guard.Reserve(context.Background(), 5, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), 2, 0)
	if err == nil {
		t.Fatalf("expected error with redis down")
	}
	if errors.Is(err, ErrCapacityFull) {
		t.Fatalf("expected transport error, not ErrCapacityFull")
	}
}

func TestCapacityGuard_ConcurrentReserveNeverOvershoots(t *testing.T) {
	guard, mr := newTestGuard(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	const callers = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		reserved int
		full     int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := guard.Reserve(ctx, 5, date, 2, 0)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				reserved++
			case errors.Is(err, ErrCapacityFull):
				full++
			default:
				t.Errorf("unexpected reserve error: %v", err)
			}
		}()
	}
	wg.Wait()

	if reserved != 2 || full != callers-2 {
		t.Fatalf("expected 2 reserved and %d full, got %d and %d", callers-2, reserved, full)
	}
	if got, _ := mr.Get(DailyKey(5, date)); got != "2" {
		t.Fatalf("expected counter 2, got %q", got)
	}
}
