package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/ports"
)

const (
	keyPrefix     = "tienda:sales-summary:"
	generationKey = "tienda:sales-summary-gen"
)

var _ ports.SalesSummaryCache = (*RedisSalesSummaryCache)(nil)

// RedisSalesSummaryCache guarda los agregados como JSON bajo el prefijo tienda:sales-summary:.
type RedisSalesSummaryCache struct {
	client redis.UniversalClient
}

// NewRedisSalesSummaryCache abre un cliente Redis.
func NewRedisSalesSummaryCache(addr, password string, db int) *RedisSalesSummaryCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisSalesSummaryCache{client: client}
}

// NewRedisSalesSummaryCacheWithClient usa un cliente ya construido.
func NewRedisSalesSummaryCacheWithClient(client redis.UniversalClient) *RedisSalesSummaryCache {
	return &RedisSalesSummaryCache{client: client}
}

// Ping verifica la conexión con Redis.
func (c *RedisSalesSummaryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *RedisSalesSummaryCache) Close() error {
	return c.client.Close()
}

// Generation lee el contador de invalidaciones; 0 si nunca se invalidó.
func (c *RedisSalesSummaryCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get lee y decodifica el agregado guardado bajo key. Una clave ausente no es error.
func (c *RedisSalesSummaryCache) Get(ctx context.Context, key string) (*dto.SalesSummaryDTO, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var resp dto.SalesSummaryDTO
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

// Set guarda value como JSON con la vigencia ttl; un value nil no se escribe.
func (c *RedisSalesSummaryCache) Set(ctx context.Context, key string, value *dto.SalesSummaryDTO, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+key, payload, ttl).Err()
}

// Invalidate incrementa la generación y luego borra las claves del prefijo recorriéndolas con SCAN.
// Un Set concurrente que llegue después del borrado queda bajo la generación anterior y nadie lo lee.
func (c *RedisSalesSummaryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return err
	}
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
