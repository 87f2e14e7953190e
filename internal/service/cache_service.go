package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
)

const availableSlotsKeyPrefix = "slots:available:"

// AvailableSlotsKey is the cache key for the available-slot list of a date.
func AvailableSlotsKey(date string) string {
	return availableSlotsKeyPrefix + date
}

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Generation(ctx context.Context, key string) (int64, error)
	BumpGeneration(ctx context.Context, key string) (int64, error)
}

// CacheService wraps the cache store with metrics and graceful degradation:
// store failures are logged and treated as misses.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get loads key into dest and reports whether it was a hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Set stores value under key using the default TTL when ttl is zero.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if err := s.repo.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Versioned returns the key holding the current generation of base. Read the
// version before loading from the database and store under the same key: a
// concurrent Invalidate moves readers to a new key, so a stale write is never
// served. ok is false when the cache is off or the generation is unreadable.
func (s *CacheService) Versioned(ctx context.Context, base string) (key string, ok bool) {
	if !s.Enabled() {
		return "", false
	}
	gen, err := s.repo.Generation(ctx, base)
	if err != nil {
		s.logger.Warn("cache generation failed", zap.String("key", base), zap.Error(err))
		return "", false
	}
	return generationKey(base, gen), true
}

// Invalidate advances the generation of each base key and drops the payload
// of the generation it replaced.
func (s *CacheService) Invalidate(ctx context.Context, bases ...string) {
	if !s.Enabled() {
		return
	}
	for _, base := range bases {
		gen, err := s.repo.BumpGeneration(ctx, base)
		if err != nil {
			s.logger.Warn("cache invalidate failed", zap.String("key", base), zap.Error(err))
			continue
		}
		if err := s.repo.Delete(ctx, generationKey(base, gen-1)); err != nil {
			s.logger.Warn("cache cleanup failed", zap.String("key", base), zap.Error(err))
		}
	}
}

func generationKey(base string, gen int64) string {
	return base + ":g" + strconv.FormatInt(gen, 10)
}
