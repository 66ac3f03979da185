package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	oauthStatePrefix = "linkedin:oauth:state:"
	OAuthStateTTL    = 10 * time.Minute
)

var ErrStateNotFound = errors.New("oauth state not found or expired")

type StateStoreInterface interface {
	SaveState(ctx context.Context, state string, userID uuid.UUID) error
	ConsumeState(ctx context.Context, state string) (uuid.UUID, error)
}

// RedisStateStore keeps OAuth CSRF states for a short time. Each state can be
// consumed once.
type RedisStateStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStateStore(rdb *redis.Client) *RedisStateStore {
	return &RedisStateStore{rdb: rdb, ttl: OAuthStateTTL}
}

func (s *RedisStateStore) SaveState(ctx context.Context, state string, userID uuid.UUID) error {
	return s.rdb.Set(ctx, oauthStatePrefix+state, userID.String(), s.ttl).Err()
}

func (s *RedisStateStore) ConsumeState(ctx context.Context, state string) (uuid.UUID, error) {
	val, err := s.rdb.GetDel(ctx, oauthStatePrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrStateNotFound
	}
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "consume oauth state")
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "corrupt oauth state value")
	}
	return userID, nil
}
