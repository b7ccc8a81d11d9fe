package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vportela/leadcrm/internal/entity"
)

// RoleResolver looks up a caller's role once per session. Successful lookups
// are cached in redis under a TTL; the cache is optional and a nil client
// falls through to the role store on every call.
//
// A failed lookup degrades to the least-privileged role, never to admin.
type RoleResolver struct {
	Repo   entity.RoleRepositoryInterface
	Redis  *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

func NewRoleResolver(repo entity.RoleRepositoryInterface, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RoleResolver {
	return &RoleResolver{Repo: repo, Redis: rdb, TTL: ttl, Logger: logger}
}

func (r *RoleResolver) Resolve(ctx context.Context, userID string) entity.Role {
	if userID == "" {
		return entity.RoleNone
	}

	key := roleKey(userID)
	if r.Redis != nil {
		if cached, err := r.Redis.Get(ctx, key).Result(); err == nil {
			role := entity.Role(cached)
			if role == entity.RoleAdmin || role == entity.RoleManager || role == entity.RoleUser {
				return role
			}
		}
	}

	role, err := r.Repo.GetRole(ctx, userID)
	if err != nil {
		if r.Logger != nil {
			r.Logger.Warn("role lookup failed, defaulting to user", zap.String("user_id", userID), zap.Error(err))
		}
		return entity.RoleUser
	}
	if role == entity.RoleNone {
		role = entity.RoleUser
	}

	if r.Redis != nil {
		if err := r.Redis.Set(ctx, key, string(role), r.TTL).Err(); err != nil && r.Logger != nil {
			r.Logger.Warn("role cache write failed", zap.Error(err))
		}
	}

	return role
}

// Invalidate drops the cached role, e.g. after an identity change.
func (r *RoleResolver) Invalidate(ctx context.Context, userID string) {
	if r.Redis != nil {
		r.Redis.Del(ctx, roleKey(userID))
	}
}

func roleKey(userID string) string {
	return "role:" + userID
}
