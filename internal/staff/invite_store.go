package staff

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const inviteKeyPrefix = "staff:invite:"

// ErrInviteNotFound is returned when a token is unknown, expired or already used.
var ErrInviteNotFound = errors.New("invite token not found")

func InviteKey(token string) string {
	return inviteKeyPrefix + token
}

//go:generate mockgen -source=invite_store.go -destination=mock/invite_store_mock.go -package=mock
type InviteStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}

type redisInviteStore struct {
	rdb *redis.Client
}

func NewInviteStore(rdb *redis.Client) InviteStore {
	return &redisInviteStore{rdb: rdb}
}

func (s *redisInviteStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, InviteKey(token), userID, ttl).Err()
}

// Consume returns the user id bound to token and removes it so a token works once.
func (s *redisInviteStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.rdb.GetDel(ctx, InviteKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInviteNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func NewInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
