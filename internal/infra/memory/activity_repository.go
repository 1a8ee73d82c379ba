package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"econquest-progress-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ActivityLoader fetches activities from a backing store (e.g., Postgres).
type ActivityLoader interface {
	LoadActivity(ctx context.Context, activityID int64) (domain.Activity, error)
}

// ActivityRepository caches activities with TTL to avoid repeated DB hits.
type ActivityRepository struct {
	loader ActivityLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[int64]cachedActivity
}

type cachedActivity struct {
	activity  domain.Activity
	expiresAt time.Time
}

func NewActivityRepository(loader ActivityLoader, ttl time.Duration) *ActivityRepository {
	return &ActivityRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedActivity),
	}
}

func (r *ActivityRepository) GetActivity(ctx context.Context, activityID int64) (domain.Activity, error) {
	if activity, ok := r.cached(activityID); ok {
		return activity, nil
	}

	result, err, _ := r.sf.Do(strconv.FormatInt(activityID, 10), func() (interface{}, error) {
		if activity, ok := r.cached(activityID); ok {
			return activity, nil
		}

		activity, err := r.loader.LoadActivity(ctx, activityID)
		if err != nil {
			return domain.Activity{}, err
		}

		r.mu.Lock()
		r.cache[activityID] = cachedActivity{
			activity:  activity,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return activity, nil
	})
	if err != nil {
		return domain.Activity{}, err
	}
	return result.(domain.Activity), nil
}

// Invalidate drops a cached activity so the next read reloads it.
func (r *ActivityRepository) Invalidate(activityID int64) {
	r.mu.Lock()
	delete(r.cache, activityID)
	r.mu.Unlock()
}

func (r *ActivityRepository) cached(activityID int64) (domain.Activity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[activityID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Activity{}, false
	}
	return entry.activity, true
}

func (r *ActivityRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticActivityLoader is a loader backed by an in-memory map (useful for tests/demos).
type StaticActivityLoader struct {
	mu         sync.RWMutex
	activities map[int64]domain.Activity
}

func NewStaticActivityLoader(activities ...domain.Activity) *StaticActivityLoader {
	l := &StaticActivityLoader{activities: make(map[int64]domain.Activity, len(activities))}
	for _, a := range activities {
		l.activities[a.ID] = a
	}
	return l
}

func (l *StaticActivityLoader) LoadActivity(_ context.Context, activityID int64) (domain.Activity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if activity, ok := l.activities[activityID]; ok {
		return activity, nil
	}
	return domain.Activity{}, domain.ErrActivityNotFound
}

// Put adds or replaces an activity.
func (l *StaticActivityLoader) Put(activity domain.Activity) {
	l.mu.Lock()
	l.activities[activity.ID] = activity
	l.mu.Unlock()
}

// ByModule returns the module's activities in no particular order.
func (l *StaticActivityLoader) ByModule(moduleID int64) []domain.Activity {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.Activity
	for _, a := range l.activities {
		if a.ModuleID == moduleID {
			out = append(out, a)
		}
	}
	return out
}
