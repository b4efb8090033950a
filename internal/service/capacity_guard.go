package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"clinic-booking-service/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// =============================================================================
// Errors
// =============================================================================

// ErrCapacityFull is returned when a doctor has no free slot left on a date
var ErrCapacityFull = errors.New("doctor daily capacity is full")

// reserveSlotScript increments the day counter and rolls back above capacity.
//
// KEYS[1] = day counter, ARGV[1] = capacity
// Returns the new count, or -1 when the day is full.
var reserveSlotScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current > tonumber(ARGV[1]) then
		redis.call('DECR', KEYS[1])
		return -1
	end
	return current
`)

// releaseSlotScript decrements the day counter without going below zero
// and without creating a missing key.
var releaseSlotScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	if current <= 0 then
		return 0
	end
	return redis.call('DECR', KEYS[1])
`)

// =============================================================================
// Constants
// =============================================================================

const (
	// RedisDailyKeyPrefix prefixes appointment:daily:{doctor}:{yyyy-mm-dd}
	RedisDailyKeyPrefix = "appointment:daily:"

	// Batch size for startup sync
	syncBatchSize = 500

	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// =============================================================================
// Types
// =============================================================================

// CapacityGuard keeps a shared count of active appointments per doctor per day.
// The database remains the source of truth; the guard only refuses slots.
type CapacityGuard interface {
	// Reserve takes one slot. booked is the active count the caller saw in
	// the database and seeds the counter when it does not exist yet.
	Reserve(ctx context.Context, doctorID int, date time.Time, capacity int, booked int64) error
	// Release gives one slot back
	Release(ctx context.Context, doctorID int, date time.Time) error
}

// RedisCapacityGuard is the Redis-backed CapacityGuard.
//
// Lock Ordering (to prevent deadlocks):
// 1. Acquire the day mutex FIRST
// 2. Then perform Redis operations
type RedisCapacityGuard struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
	now         func() time.Time

	// Per-(doctor, day) mutex, map[string]*mutexWithTimestamp
	dayMu     sync.Map
	syncGroup singleflight.Group

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// dailyCount holds one row of the startup sync query
type dailyCount struct {
	DoctorID        int
	AppointmentDate time.Time
	Booked          int64
}

// =============================================================================
// Constructor
// =============================================================================

// NewRedisCapacityGuard starts the background mutex cleanup.
// Call Stop() during graceful shutdown.
func NewRedisCapacityGuard(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) *RedisCapacityGuard {
	g := &RedisCapacityGuard{
		db:          db,
		redisClient: redisClient,
		log:         log,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}

	g.wg.Add(1)
	go g.cleanupMutexMapLoop()

	return g
}

// =============================================================================
// Lifecycle Methods
// =============================================================================

// Stop is safe to call multiple times.
func (g *RedisCapacityGuard) Stop() {
	if g.stopped.CompareAndSwap(false, true) {
		close(g.stopChan)
		g.wg.Wait()
		g.log.Info("CapacityGuard stopped")
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// DailyKey returns the Redis key of the counter for a doctor on a date
func DailyKey(doctorID int, date time.Time) string {
	return fmt.Sprintf("%s%d:%s", RedisDailyKeyPrefix, doctorID, entity.DateOnly(date).Format(entity.DateLayout))
}

func (g *RedisCapacityGuard) Reserve(ctx context.Context, doctorID int, date time.Time, capacity int, booked int64) error {
	key := DailyKey(doctorID, date)

	mt := g.getDayMutex(key)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	// Seed only when missing, an existing counter already reflects other reservations
	if err := g.redisClient.SetNX(ctx, key, booked, g.calculateTTL(date)).Err(); err != nil {
		g.log.Warnf("Failed to seed capacity counter %s: %+v", key, err)
		return fmt.Errorf("seed capacity counter %s: %w", key, err)
	}

	result, err := reserveSlotScript.Run(ctx, g.redisClient, []string{key}, capacity).Int()
	if err != nil {
		g.log.Warnf("Failed Lua script reserveSlot for %s: %+v", key, err)
		return fmt.Errorf("lua reserve slot %s: %w", key, err)
	}

	if result == -1 {
		return ErrCapacityFull
	}

	g.log.Debugf("Reserved slot %s: count=%d capacity=%d", key, result, capacity)
	return nil
}

func (g *RedisCapacityGuard) Release(ctx context.Context, doctorID int, date time.Time) error {
	key := DailyKey(doctorID, date)

	mt := g.getDayMutex(key)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if err := releaseSlotScript.Run(ctx, g.redisClient, []string{key}).Err(); err != nil {
		g.log.Warnf("Failed to release slot %s: %+v", key, err)
		return fmt.Errorf("release slot %s: %w", key, err)
	}

	g.log.Debugf("Released slot %s", key)
	return nil
}

// Resync overwrites the counters of today and later from the database and
// returns the number of doctor-days written. Concurrent calls share one run.
// Bootstrap calls it before accepting traffic.
func (g *RedisCapacityGuard) Resync(ctx context.Context) (int, error) {
	synced, err, _ := g.syncGroup.Do("sync", func() (interface{}, error) {
		return g.syncFromDatabase(ctx)
	})
	if err != nil {
		return 0, err
	}
	return synced.(int), nil
}

func (g *RedisCapacityGuard) syncFromDatabase(ctx context.Context) (int, error) {
	g.log.Info("Starting capacity counter sync from database...")
	startTime := time.Now()

	if err := g.redisClient.Ping(ctx).Err(); err != nil {
		g.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return 0, fmt.Errorf("redis ping failed: %w", err)
	}

	today := entity.DateOnly(g.now())
	offset := 0
	totalSynced := 0

	for {
		var results []dailyCount

		err := g.db.WithContext(ctx).Model(&entity.Appointment{}).
			Select("doctor_id, appointment_date, COUNT(*) AS booked").
			Where("appointment_date >= ? AND status <> ?", today, entity.AppointmentStatusCancelled).
			Group("doctor_id, appointment_date").
			Order("doctor_id, appointment_date").
			Limit(syncBatchSize).
			Offset(offset).
			Scan(&results).Error
		if err != nil {
			g.log.Errorf("Failed to query daily counts at offset %d: %+v", offset, err)
			return totalSynced, fmt.Errorf("query daily counts at offset %d: %w", offset, err)
		}

		if len(results) == 0 {
			break
		}

		// New pipeline per batch
		pipe := g.redisClient.TxPipeline()
		for _, result := range results {
			key := DailyKey(result.DoctorID, result.AppointmentDate)
			pipe.Set(ctx, key, result.Booked, g.calculateTTL(result.AppointmentDate))
		}
		if _, err := pipe.Exec(ctx); err != nil {
			g.log.Errorf("Failed to execute pipeline for batch at offset %d: %+v", offset, err)
			return totalSynced, fmt.Errorf("pipeline exec at offset %d: %w", offset, err)
		}

		totalSynced += len(results)

		if len(results) < syncBatchSize {
			break
		}
		offset += syncBatchSize

		select {
		case <-ctx.Done():
			return totalSynced, ctx.Err()
		default:
		}
	}

	g.log.Infof("Capacity counter sync completed: %d doctor-days synced in %v", totalSynced, time.Since(startTime))
	return totalSynced, nil
}

// =============================================================================
// Private Helper Methods
// =============================================================================

func (g *RedisCapacityGuard) getDayMutex(key string) *mutexWithTimestamp {
	mt, _ := g.dayMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (g *RedisCapacityGuard) cleanupMutexMapLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			g.log.Debug("Mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			g.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes, checking lastUsed under the lock
func (g *RedisCapacityGuard) cleanupStaleMutexes() {
	cutoffTime := time.Now().Add(-mutexStaleThreshold).Unix()
	var cleaned int

	g.dayMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				g.dayMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		g.log.Debugf("Cleaned up %d stale mutexes", cleaned)
	}
}

// calculateTTL keeps a counter until the day after its date
func (g *RedisCapacityGuard) calculateTTL(date time.Time) time.Duration {
	expireAt := entity.DateOnly(date).AddDate(0, 0, 2)
	ttl := expireAt.Sub(g.now())

	if ttl <= 0 {
		return 1 * time.Minute
	}

	return ttl
}

// NoopCapacityGuard accepts every reservation, leaving the database check alone in charge
type NoopCapacityGuard struct{}

func (NoopCapacityGuard) Reserve(context.Context, int, time.Time, int, int64) error { return nil }

func (NoopCapacityGuard) Release(context.Context, int, time.Time) error { return nil }
