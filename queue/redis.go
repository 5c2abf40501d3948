package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kartcore/store"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps case queue records as JSON values and swaps them with
// WATCH/MULTI, so a write only lands if nobody touched the key since it was read.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func queueKey(caseID string) string {
	return "kartcore:queue:" + caseID
}

type redisQueue struct {
	Entries    map[int]store.QueueEntry `json:"entries"`
	QueueCount int                      `json:"queue_count"`
	Version    int64                    `json:"version"`
}

func decodeQueue(caseID string, data []byte) (*store.CaseQueue, error) {
	var rq redisQueue
	if err := json.Unmarshal(data, &rq); err != nil {
		return nil, fmt.Errorf("decode queue %s: %w", caseID, err)
	}
	q := store.NewCaseQueue(caseID)
	if rq.Entries != nil {
		q.Entries = rq.Entries
	}
	q.QueueCount = rq.QueueCount
	q.Version = rq.Version
	return q, nil
}

func readQueue(ctx context.Context, c redis.Cmdable, caseID string) (*store.CaseQueue, error) {
	data, err := c.Get(ctx, queueKey(caseID)).Bytes()
	if err == redis.Nil {
		return store.NewCaseQueue(caseID), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeQueue(caseID, data)
}

func (r *RedisStore) GetCaseQueue(ctx context.Context, caseID string) (*store.CaseQueue, error) {
	return readQueue(ctx, r.client, caseID)
}

func (r *RedisStore) SwapCaseQueue(ctx context.Context, q *store.CaseQueue, expected int64) error {
	key := queueKey(q.CaseID)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := readQueue(ctx, tx, q.CaseID)
		if err != nil {
			return err
		}
		if cur.Version != expected {
			return store.ErrConflict
		}
		data, err := json.Marshal(redisQueue{Entries: q.Entries, QueueCount: q.QueueCount, Version: expected + 1})
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return store.ErrConflict
	}
	if err != nil {
		return err
	}
	q.Version = expected + 1
	return nil
}

// Delete removes a case's queue record.
func (r *RedisStore) Delete(ctx context.Context, caseID string) error {
	return r.client.Del(ctx, queueKey(caseID)).Err()
}
