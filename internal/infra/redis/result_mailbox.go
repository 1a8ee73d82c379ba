package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"econquest-progress-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ResultMailbox keeps each user's latest result in Redis.
// Take uses GETDEL so concurrent readers never both receive the same result.
type ResultMailbox struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultMailbox(client *redis.Client, ttl time.Duration) *ResultMailbox {
	return &ResultMailbox{
		client: client,
		ttl:    ttl,
	}
}

func (m *ResultMailbox) Put(ctx context.Context, userID int64, result domain.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	// ttl 0 keeps the key until it is read
	return m.client.Set(ctx, m.key(userID), payload, m.ttl).Err()
}

func (m *ResultMailbox) Take(ctx context.Context, userID int64) (domain.Result, bool, error) {
	payload, err := m.client.GetDel(ctx, m.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Result{}, false, nil
	}
	if err != nil {
		return domain.Result{}, false, err
	}
	var result domain.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		// a corrupt slot is treated as empty; it is already deleted
		return domain.Result{}, false, nil
	}
	return result, true, nil
}

func (m *ResultMailbox) key(userID int64) string {
	return "progress:result:" + strconv.FormatInt(userID, 10)
}
