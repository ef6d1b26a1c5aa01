package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"event-ticketing/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const voucherCachePrefix = "voucher:code:"

// cachedVoucherRepository is a read-through Redis cache in front of a
// VoucherRepository. Redis failures degrade to the underlying repository.
type cachedVoucherRepository struct {
	next VoucherRepository
	rdb  redis.Cmdable
	ttl  time.Duration
	log  *zap.Logger
}

func NewCachedVoucherRepository(next VoucherRepository, rdb redis.Cmdable, ttl time.Duration, log *zap.Logger) VoucherRepository {
	return &cachedVoucherRepository{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With(zap.String("repository", "voucher_cache")),
	}
}

func (r *cachedVoucherRepository) FindByCode(ctx context.Context, code string) (*entity.Voucher, error) {
	key := voucherCachePrefix + code

	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v entity.Voucher
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			return &v, nil
		}
		r.log.Warn("Discarding undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		r.log.Warn("Voucher cache read failed", zap.Error(err), zap.String("key", key))
	}

	v, err := r.next.FindByCode(ctx, code)
	if err != nil || v == nil {
		return v, err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		r.log.Warn("Failed to encode voucher for cache", zap.Error(err))
		return v, nil
	}
	if err := r.rdb.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		r.log.Warn("Voucher cache write failed", zap.Error(err), zap.String("key", key))
	}

	return v, nil
}
