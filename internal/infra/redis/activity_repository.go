package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"econquest-progress-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ActivityLoader fetches activities from a backing store (e.g., Postgres).
type ActivityLoader interface {
	LoadActivity(ctx context.Context, activityID int64) (domain.Activity, error)
}

// ActivityRepository caches activities in Redis and falls back to a loader on cache miss.
// Each activity is stored as a JSON string: SET activity:{id} {json} EX ttl
type ActivityRepository struct {
	client *redis.Client
	loader ActivityLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewActivityRepository(client *redis.Client, loader ActivityLoader, ttl time.Duration) *ActivityRepository {
	return &ActivityRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ActivityRepository) GetActivity(ctx context.Context, activityID int64) (domain.Activity, error) {
	key := r.key(activityID)
	if activity, ok := r.cached(ctx, key); ok {
		return activity, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if activity, ok := r.cached(ctx, key); ok {
			return activity, nil
		}

		activity, err := r.loader.LoadActivity(ctx, activityID)
		if err != nil {
			return domain.Activity{}, err
		}

		if payload, err := json.Marshal(activity); err == nil {
			// best-effort; the loader stays the source of truth
			_ = r.client.Set(ctx, key, payload, r.ttlWithJitter()).Err()
		}
		return activity, nil
	})
	if err != nil {
		return domain.Activity{}, err
	}
	return result.(domain.Activity), nil
}

// Invalidate drops the cached copy so edits show up before the TTL runs out.
func (r *ActivityRepository) Invalidate(ctx context.Context, activityID int64) error {
	return r.client.Del(ctx, r.key(activityID)).Err()
}

func (r *ActivityRepository) cached(ctx context.Context, key string) (domain.Activity, bool) {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Activity{}, false
	}
	var activity domain.Activity
	if err := json.Unmarshal(payload, &activity); err != nil {
		return domain.Activity{}, false
	}
	return activity, true
}

func (r *ActivityRepository) key(activityID int64) string {
	return "activity:" + strconv.FormatInt(activityID, 10)
}

func (r *ActivityRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
