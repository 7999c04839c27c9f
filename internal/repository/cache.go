package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-shipping-tax-service/internal/models"
)

const (
	taxClassesKey     = "tax:classes"
	taxRatesKeyPrefix = "tax:rates:"
	defaultCacheTTL   = 5 * time.Minute
)

// RedisTaxRateCache implements TaxRateCache using Redis.
type RedisTaxRateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.LoggerV2
}

// NewRedisTaxRateCache creates a new Redis-based tax rate cache.
func NewRedisTaxRateCache(cfg config.RedisConfig) *RedisTaxRateCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisTaxRateCache{
		client: client,
		ttl:    ttl,
		logger: logging.NewLoggerV2("tax-rate-cache"),
	}
}

func ratesKey(class models.TaxClass) string {
	return taxRatesKeyPrefix + class.Label()
}

// GetClasses returns the cached class list. The bool is false on a miss.
func (c *RedisTaxRateCache) GetClasses(ctx context.Context) ([]models.TaxClass, bool, error) {
	var classes []models.TaxClass
	hit, err := c.get(ctx, taxClassesKey, &classes)
	return classes, hit, err
}

// SetClasses stores the class list.
func (c *RedisTaxRateCache) SetClasses(ctx context.Context, classes []models.TaxClass) error {
	return c.set(ctx, taxClassesKey, classes)
}

// GetRates returns the cached rates of a class. The bool is false on a miss.
func (c *RedisTaxRateCache) GetRates(ctx context.Context, class models.TaxClass) ([]models.TaxRate, bool, error) {
	var rates []models.TaxRate
	hit, err := c.get(ctx, ratesKey(class), &rates)
	return rates, hit, err
}

// SetRates stores the rates of a class.
func (c *RedisTaxRateCache) SetRates(ctx context.Context, class models.TaxClass, rates []models.TaxRate) error {
	return c.set(ctx, ratesKey(class), rates)
}

// InvalidateAll drops every cached class list and rate list.
func (c *RedisTaxRateCache) InvalidateAll(ctx context.Context) error {
	keys := []string{taxClassesKey}

	iter := c.client.Scan(ctx, 0, taxRatesKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Error("Cache scan error", logging.Fields{"error": err.Error()})
		return err
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("Cache invalidate error", logging.Fields{
			"keys":  len(keys),
			"error": err.Error(),
		})
		return err
	}

	c.logger.Info("Tax rate cache invalidated", logging.Fields{"keys": len(keys)})
	return nil
}

// Ping checks the Redis connection.
func (c *RedisTaxRateCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *RedisTaxRateCache) Close() error {
	return c.client.Close()
}

func (c *RedisTaxRateCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss", logging.Fields{"key": key})
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get error", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}

	c.logger.Debug("Cache hit", logging.Fields{"key": key})
	return true, nil
}

func (c *RedisTaxRateCache) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set error", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// CachedTaxRateSource reads through a TaxRateCache in front of another source.
// Cache failures are logged and fall back to the underlying source.
type CachedTaxRateSource struct {
	source TaxRateSource
	cache  TaxRateCache
	logger *logging.LoggerV2
}

// NewCachedTaxRateSource wraps source with cache.
func NewCachedTaxRateSource(source TaxRateSource, cache TaxRateCache) *CachedTaxRateSource {
	return &CachedTaxRateSource{
		source: source,
		cache:  cache,
		logger: logging.NewLoggerV2("cached-tax-rates"),
	}
}

func (s *CachedTaxRateSource) TaxClasses(ctx context.Context) ([]models.TaxClass, error) {
	if classes, hit, err := s.cache.GetClasses(ctx); err == nil && hit {
		return classes, nil
	}

	classes, err := s.source.TaxClasses(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetClasses(ctx, classes); err != nil {
		s.logger.Warn("Failed to cache tax classes", logging.Fields{"error": err.Error()})
	}
	return classes, nil
}

func (s *CachedTaxRateSource) RatesForClass(ctx context.Context, class models.TaxClass) ([]models.TaxRate, error) {
	if rates, hit, err := s.cache.GetRates(ctx, class); err == nil && hit {
		return rates, nil
	}

	rates, err := s.source.RatesForClass(ctx, class)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetRates(ctx, class, rates); err != nil {
		s.logger.Warn("Failed to cache tax rates", logging.Fields{
			"tax_class": class.Label(),
			"error":     err.Error(),
		})
	}
	return rates, nil
}

// Invalidate drops all cached tax data.
func (s *CachedTaxRateSource) Invalidate(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}
