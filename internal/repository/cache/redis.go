package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/product_catalog/internal/domain"
)

// RedisCache caches resolved product views and review list pages.
type RedisCache struct {
	client         *redis.Client
	productViewTTL time.Duration
	reviewsListTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, productViewTTL, reviewsListTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         client,
		productViewTTL: productViewTTL,
		reviewsListTTL: reviewsListTTL,
	}
}

// Product view cache keys and methods

func (c *RedisCache) productViewKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:view", productID.String())
}

// GetProductView retrieves a cached product with its variants resolved
func (c *RedisCache) GetProductView(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	val, err := c.client.Get(ctx, c.productViewKey(productID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal([]byte(val), &product); err != nil {
		return nil, err
	}

	return &product, nil
}

// SetProductView stores a resolved product view in cache
func (c *RedisCache) SetProductView(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.productViewKey(product.ID), data, c.productViewTTL).Err()
}

// InvalidateProductView removes a product view from cache
func (c *RedisCache) InvalidateProductView(ctx context.Context, productID uuid.UUID) error {
	return c.client.Del(ctx, c.productViewKey(productID)).Err()
}

// Review list cache keys and methods

func (c *RedisCache) reviewsListKey(productID uuid.UUID, limit, offset int) string {
	return fmt.Sprintf("product:%s:reviews:limit:%d:offset:%d", productID.String(), limit, offset)
}

func (c *RedisCache) productCacheKeysSet(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:cache_keys", productID.String())
}

// GetReviewsList retrieves a cached reviews page for a product
func (c *RedisCache) GetReviewsList(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	val, err := c.client.Get(ctx, c.reviewsListKey(productID, limit, offset)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var reviews []*domain.Review
	if err := json.Unmarshal([]byte(val), &reviews); err != nil {
		return nil, err
	}

	return reviews, nil
}

// SetReviewsList stores a reviews page in cache and tracks the key in a
// SET so all pages can be invalidated together
func (c *RedisCache) SetReviewsList(ctx context.Context, productID uuid.UUID, limit, offset int, reviews []*domain.Review) error {
	key := c.reviewsListKey(productID, limit, offset)
	trackingKey := c.productCacheKeysSet(productID)

	data, err := json.Marshal(reviews)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.reviewsListTTL)
	pipe.SAdd(ctx, trackingKey, key)
	pipe.Expire(ctx, trackingKey, c.reviewsListTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateReviewsList removes all cached review pages for a product
// using SET-based key tracking
func (c *RedisCache) InvalidateReviewsList(ctx context.Context, productID uuid.UUID) error {
	trackingKey := c.productCacheKeysSet(productID)

	keys, err := c.client.SMembers(ctx, trackingKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	if len(keys) > 0 {
		keys = append(keys, trackingKey)
		return c.client.Unlink(ctx, keys...).Err()
	}

	return nil
}

// InvalidateAllProductCache invalidates every cache entry for a product
func (c *RedisCache) InvalidateAllProductCache(ctx context.Context, productID uuid.UUID) error {
	if err := c.InvalidateProductView(ctx, productID); err != nil && err != redis.Nil {
		return err
	}

	if err := c.InvalidateReviewsList(ctx, productID); err != nil && err != redis.Nil {
		return err
	}

	return nil
}
