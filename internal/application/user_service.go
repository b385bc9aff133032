package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/meetup-api/internal/domain/entity"
	repo "github.com/oksasatya/meetup-api/internal/domain/repository"
	"github.com/oksasatya/meetup-api/pkg/helpers"
)

// UserService serves read-only profile lookups for authenticated callers.
type UserService struct {
	Repo     repo.UserRepository
	Redis    redis.Cmdable
	CacheTTL time.Duration
	Index    *UserIndex
	Logger   *logrus.Logger
}

func NewUserService(repo repo.UserRepository, rdb redis.Cmdable, cacheTTL time.Duration, index *UserIndex, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:     repo,
		Redis:    rdb,
		CacheTTL: cacheTTL,
		Index:    index,
		Logger:   logger,
	}
}

func profileKey(userID string) string {
	return "user:profile:" + userID
}

// GetProfile returns the public profile of userID, reading through the Redis cache.
func (s *UserService) GetProfile(ctx context.Context, userID string) (entity.PublicUser, error) {
	key := profileKey(userID)
	if s.Redis != nil {
		var cached entity.PublicUser
		ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, &cached)
		if err != nil {
			helpers.LogError(s.Logger, "profile cache read failed", err, logrus.Fields{"key": key})
		}
		if ok {
			return cached, nil
		}
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return entity.PublicUser{}, ErrUserNotFound
		}
		return entity.PublicUser{}, fmt.Errorf("load user: %w", err)
	}
	pub := u.Public()

	if s.Redis != nil && s.CacheTTL > 0 {
		if err := helpers.RedisSetJSON(ctx, s.Redis, key, pub, s.CacheTTL); err != nil {
			helpers.LogError(s.Logger, "profile cache write failed", err, logrus.Fields{"key": key})
		}
	}
	return pub, nil
}

// SearchUsers performs a simple multi_match search. Without an index it returns nothing.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]entity.PublicUser, error) {
	return s.Index.Search(ctx, q, size)
}
