package properties

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/attribute-engine/internal/domain/property"
	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

// redisRepo stores each snapshot as a JSON blob plus a per-scope index set
type redisRepo struct {
	client redis.UniversalClient
}

// NewRedisRepository creates a new Redis-backed property repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}

	return &redisRepo{client: cfg.Client}
}

// key generates the Redis key for a property snapshot
func (r *redisRepo) key(scope, id string) string {
	return fmt.Sprintf("property:%s:%s", scope, id)
}

// scopeKey generates the Redis key for a scope's property id set
func (r *redisRepo) scopeKey(scope string) string {
	return fmt.Sprintf("scope:%s:properties", scope)
}

// Save creates or replaces a snapshot
func (r *redisRepo) Save(ctx context.Context, scope string, data *property.Data) error {
	if err := validateData(scope, data); err != nil {
		return err
	}

	jsonData, err := json.Marshal(cloneData(data))
	if err != nil {
		return apperr.Wrapf(err, "failed to marshal property %q", data.ID)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(scope, data.ID), jsonData, 0)
	pipe.SAdd(ctx, r.scopeKey(scope), data.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save property: %w", err)
	}
	return nil
}

// Get retrieves a snapshot and validates its shape
func (r *redisRepo) Get(ctx context.Context, scope, id string) (*property.Data, error) {
	if err := validateKey(scope, id); err != nil {
		return nil, err
	}

	jsonData, err := r.client.Get(ctx, r.key(scope, id)).Bytes()
	if err == redis.Nil {
		return nil, notFound(scope, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	data, err := property.ParseData(jsonData)
	if err != nil {
		return nil, apperr.Wrapf(err, "stored property %q in scope %q", id, scope)
	}
	return data, nil
}

// Delete removes the snapshot and its index entry
func (r *redisRepo) Delete(ctx context.Context, scope, id string) error {
	if err := validateKey(scope, id); err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	del := pipe.Del(ctx, r.key(scope, id))
	pipe.SRem(ctx, r.scopeKey(scope), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if del.Val() == 0 {
		return notFound(scope, id)
	}
	return nil
}

// ListByScope fetches every indexed snapshot in parallel. Index entries
// whose snapshot is gone are skipped.
func (r *redisRepo) ListByScope(ctx context.Context, scope string) ([]*property.Data, error) {
	if scope == "" {
		return nil, apperr.InvalidArgument("scope is required")
	}

	ids, err := r.client.SMembers(ctx, r.scopeKey(scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list property IDs: %w", err)
	}
	slices.Sort(ids)

	results := make([]*property.Data, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			data, err := r.Get(gctx, scope, id)
			if apperr.IsNotFound(err) {
				log.Printf("PropertyRepository.ListByScope: skipping stale index entry %s/%s", scope, id)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get property %s: %w", id, err)
			}
			results[i] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return slices.DeleteFunc(results, func(d *property.Data) bool { return d == nil }), nil
}
