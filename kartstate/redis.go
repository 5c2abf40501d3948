package kartstate

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func metaKey(kartID string) string {
	return "kartcore:kart:" + kartID + ":meta"
}

func countKey(kartID string) string {
	return "kartcore:kart:" + kartID + ":count"
}

const allKartsKey = "kartcore:karts"

func (r *RedisStore) SetKartMeta(ctx context.Context, meta *KartMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, metaKey(meta.KartID), data, 0)
	pipe.SAdd(ctx, allKartsKey, meta.KartID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) GetKartMeta(ctx context.Context, kartID string) (*KartMeta, error) {
	data, err := r.client.Get(ctx, metaKey(kartID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta KartMeta
	return &meta, json.Unmarshal(data, &meta)
}

func (r *RedisStore) SetCount(ctx context.Context, kartID string, count int) error {
	return r.client.Set(ctx, countKey(kartID), count, 0).Err()
}

func (r *RedisStore) GetCount(ctx context.Context, kartID string) (int, error) {
	val, err := r.client.Get(ctx, countKey(kartID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// GetAllKartIDs returns the cached kart ids in sorted order.
func (r *RedisStore) GetAllKartIDs(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, allKartsKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *RedisStore) RemoveKart(ctx context.Context, kartID string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, metaKey(kartID), countKey(kartID))
	pipe.SRem(ctx, allKartsKey, kartID)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) FlushAll(ctx context.Context) error {
	ids, err := r.GetAllKartIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		r.RemoveKart(ctx, id)
	}
	return r.client.Del(ctx, allKartsKey).Err()
}
