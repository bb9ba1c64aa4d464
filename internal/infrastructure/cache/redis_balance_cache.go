package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Ombor-api/internal/application/inventory"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
)

var _ inventory.BalanceCache = (*RedisBalanceCache)(nil)

const (
	keyPrefix     = "ombor:balance"
	versionPrefix = "ombor:balance-ver"
	// versionTTL mayor que cualquier ventana lectura-escritura; al expirar la generación vuelve a 0.
	versionTTL = 24 * time.Hour
)

// RedisBalanceCache guarda fotos de balances en Redis con TTL.
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisBalanceCache construye la caché. ttl <= 0 deja las claves sin expiración.
func NewRedisBalanceCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisBalanceCache {
	return &RedisBalanceCache{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "balance_cache").Logger(),
	}
}

func balanceKey(companyID, productID string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, companyID, productID)
}

func versionKey(companyID, productID string) string {
	return fmt.Sprintf("%s:%s:%s", versionPrefix, companyID, productID)
}

// Get devuelve nil, nil si la clave no existe.
func (c *RedisBalanceCache) Get(ctx context.Context, companyID, productID string) (*entity.InventoryBalance, error) {
	data, err := c.client.Get(ctx, balanceKey(companyID, productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var b entity.InventoryBalance
	if err := json.Unmarshal(data, &b); err != nil {
		// Entrada corrupta: se trata como fallo de caché.
		c.log.Warn().Err(err).Str("product_id", productID).Msg("descartando balance en caché ilegible")
		return nil, nil
	}
	return &b, nil
}

// Version generación actual del producto; 0 si nunca se invalidó.
func (c *RedisBalanceCache) Version(ctx context.Context, companyID, productID string) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(companyID, productID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get version: %w", err)
	}
	return v, nil
}

// Set guarda la foto dentro de un WATCH sobre la generación. Si la generación ya no es version,
// o cambia antes del EXEC, no se guarda nada.
func (c *RedisBalanceCache) Set(ctx context.Context, b *entity.InventoryBalance, version int64) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal balance: %w", err)
	}
	verKey := versionKey(b.CompanyID, b.ProductID)
	stale := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			stale = true
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, balanceKey(b.CompanyID, b.ProductID), data, c.ttl)
			return nil
		})
		return err
	}, verKey)
	if errors.Is(err, redis.TxFailedErr) {
		stale = true
		err = nil
	}
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	if stale {
		c.log.Debug().Str("product_id", b.ProductID).Int64("version", version).Msg("foto obsoleta descartada")
		return nil
	}
	c.log.Debug().Str("product_id", b.ProductID).Dur("ttl", c.ttl).Msg("balance en caché")
	return nil
}

// Invalidate borra las fotos de los productos indicados e incrementa su generación.
func (c *RedisBalanceCache) Invalidate(ctx context.Context, companyID string, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range productIDs {
			verKey := versionKey(companyID, id)
			pipe.Del(ctx, balanceKey(companyID, id))
			pipe.Incr(ctx, verKey)
			pipe.Expire(ctx, verKey, versionTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}
