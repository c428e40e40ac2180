package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"posapp/internal/domain/model"
	"posapp/pkg/e"
	"posapp/pkg/logger"

	"github.com/jimlawless/whereami"
	"github.com/redis/go-redis/v9"
)

// ProductCache は商品詳細の読み取りキャッシュ。
// 在庫判定には使わない（判定は常にDBの現在値）。
// 失敗はログに残すだけで呼び出し側には返さない。
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewProductCache(client *redis.Client, ttl time.Duration, l logger.Logger) *ProductCache {
	return &ProductCache{client: client, ttl: ttl, logger: l}
}

func (c *ProductCache) Get(ctx context.Context, id string) (model.Product, bool) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Product{}, false
	}
	if err != nil {
		c.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return model.Product{}, false
	}

	var p model.Product
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return model.Product{}, false
	}
	if p.ID != id {
		c.logger.Warnf("Cache ID mismatch: key_id: %s, model_id: %s", id, p.ID)
		c.Delete(ctx, id)
		return model.Product{}, false
	}
	return p, true
}

func (c *ProductCache) Set(ctx context.Context, p model.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Warnf("Failed to marshal product for caching (Product ID: %s): %v", p.ID, e.Wrap(whereami.WhereAmI(), err))
		return
	}
	if err := c.client.Set(ctx, productKey(p.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warnf("Redis SET failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

// 在庫が動いた商品を消す
func (c *ProductCache) Delete(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// Nop はRedisなしで起動するときのキャッシュ
type Nop struct{}

func (Nop) Get(context.Context, string) (model.Product, bool) { return model.Product{}, false }
func (Nop) Set(context.Context, model.Product)                {}
func (Nop) Delete(context.Context, ...string)                 {}
