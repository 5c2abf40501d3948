package kartstate

import (
	"context"
	"log"

	"kartcore/store"
)

// Manager provides write-through kart state management: SQL first, then Redis.
// A nil RedisStore runs SQL only.
type Manager struct {
	db    *store.DB
	redis *RedisStore
}

func NewManager(db *store.DB, redis *RedisStore) *Manager {
	return &Manager{db: db, redis: redis}
}

// RegisterKart creates a kart in SQL and caches it.
func (m *Manager) RegisterKart(ctx context.Context, k *store.Kart) error {
	if err := m.db.CreateKart(ctx, k); err != nil {
		return err
	}
	m.refreshKartRedis(ctx, k.ID)
	return nil
}

// MoveKart records a kart's new cell.
func (m *Manager) MoveKart(ctx context.Context, kartID, location string) error {
	if err := m.db.UpdateKartLocation(ctx, kartID, location); err != nil {
		return err
	}
	m.refreshKartRedis(ctx, kartID)
	return nil
}

func (m *Manager) RemoveKart(ctx context.Context, kartID string) error {
	if err := m.db.DeleteKart(ctx, kartID); err != nil {
		return err
	}
	if m.redis != nil {
		m.redis.RemoveKart(ctx, kartID)
	}
	return nil
}

// AssignJob appends an order to a kart's work list.
func (m *Manager) AssignJob(ctx context.Context, job *store.KartJob) error {
	if err := m.db.AppendKartJob(ctx, job); err != nil {
		return err
	}
	m.refreshCount(ctx, job.KartID)
	return nil
}

// FinishJob removes an order from a kart's work list.
func (m *Manager) FinishJob(ctx context.Context, kartID, orderID string) error {
	if err := m.db.RemoveKartJob(ctx, kartID, orderID); err != nil {
		return err
	}
	m.refreshCount(ctx, kartID)
	return nil
}

// ListKarts reads every kart's state, preferring Redis, ordered by kart id.
func (m *Manager) ListKarts(ctx context.Context) ([]*KartState, error) {
	if m.redis != nil {
		ids, err := m.redis.GetAllKartIDs(ctx)
		if err == nil && len(ids) > 0 {
			states := make([]*KartState, 0, len(ids))
			complete := true
			for _, id := range ids {
				meta, err := m.redis.GetKartMeta(ctx, id)
				if err != nil || meta == nil {
					complete = false
					break
				}
				count, _ := m.redis.GetCount(ctx, id)
				states = append(states, &KartState{
					KartID:      meta.KartID,
					Name:        meta.Name,
					Location:    meta.Location,
					QueueLength: count,
				})
			}
			if complete {
				return states, nil
			}
		}
	}

	// Fall back to SQL
	return m.listKartsFromSQL(ctx)
}

// GetKartState reads one kart, preferring Redis.
func (m *Manager) GetKartState(ctx context.Context, kartID string) (*KartState, error) {
	if m.redis != nil {
		meta, err := m.redis.GetKartMeta(ctx, kartID)
		if err == nil && meta != nil {
			count, _ := m.redis.GetCount(ctx, kartID)
			return &KartState{KartID: meta.KartID, Name: meta.Name, Location: meta.Location, QueueLength: count}, nil
		}
	}
	k, err := m.db.GetKart(ctx, kartID)
	if err != nil {
		return nil, err
	}
	count, err := m.db.CountKartJobs(ctx, kartID)
	if err != nil {
		return nil, err
	}
	return &KartState{KartID: k.ID, Name: k.Name, Location: k.CurrentLocation, QueueLength: count}, nil
}

// SyncRedisFromSQL rebuilds all Redis state from SQL. Called on startup.
func (m *Manager) SyncRedisFromSQL(ctx context.Context) error {
	if m.redis == nil {
		return nil
	}
	m.redis.FlushAll(ctx)

	karts, err := m.db.ListKarts(ctx)
	if err != nil {
		return err
	}
	for _, k := range karts {
		if err := m.redis.SetKartMeta(ctx, &KartMeta{KartID: k.ID, Name: k.Name, Location: k.CurrentLocation}); err != nil {
			log.Printf("kartstate: sync meta for kart %s: %v", k.ID, err)
			continue
		}
		m.refreshCount(ctx, k.ID)
	}

	log.Printf("kartstate: synced %d karts to redis", len(karts))
	return nil
}

func (m *Manager) refreshKartRedis(ctx context.Context, kartID string) {
	if m.redis == nil {
		return
	}
	k, err := m.db.GetKart(ctx, kartID)
	if err != nil {
		log.Printf("kartstate: refresh redis for kart %s: %v", kartID, err)
		return
	}
	m.redis.SetKartMeta(ctx, &KartMeta{KartID: k.ID, Name: k.Name, Location: k.CurrentLocation})
	m.refreshCount(ctx, kartID)
}

func (m *Manager) refreshCount(ctx context.Context, kartID string) {
	if m.redis == nil {
		return
	}
	n, err := m.db.CountKartJobs(ctx, kartID)
	if err != nil {
		log.Printf("kartstate: count jobs for kart %s: %v", kartID, err)
		return
	}
	m.redis.SetCount(ctx, kartID, n)
}

func (m *Manager) listKartsFromSQL(ctx context.Context) ([]*KartState, error) {
	karts, err := m.db.ListKarts(ctx)
	if err != nil {
		return nil, err
	}
	states := make([]*KartState, 0, len(karts))
	for _, k := range karts {
		count, err := m.db.CountKartJobs(ctx, k.ID)
		if err != nil {
			return nil, err
		}
		states = append(states, &KartState{KartID: k.ID, Name: k.Name, Location: k.CurrentLocation, QueueLength: count})
	}
	return states, nil
}
