package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"erp-access/permissions"

	"github.com/redis/go-redis/v9"
)

// PermissionCache holds resolved permission objects per user.
//
// Every user has a generation that Invalidate bumps. Get reports the
// generation current at the time of a miss and Set only stores when it is
// unchanged, so an object loaded before a role change is never written
// back after that change's invalidation.
type PermissionCache interface {
	Get(ctx context.Context, userID uint) (perms permissions.Set, gen uint64, ok bool, err error)
	Set(ctx context.Context, userID uint, gen uint64, perms permissions.Set) error
	Invalidate(ctx context.Context, userIDs ...uint) error
}

type memoryEntry struct {
	perms   permissions.Set
	expires time.Time
}

type memoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uint]memoryEntry
	gens    map[uint]uint64
	now     func() time.Time
}

// NewMemoryCache keeps permission objects in process for ttl. A ttl of
// zero keeps entries until they are invalidated.
func NewMemoryCache(ttl time.Duration) PermissionCache {
	return &memoryCache{
		ttl:     ttl,
		entries: make(map[uint]memoryEntry),
		gens:    make(map[uint]uint64),
		now:     time.Now,
	}
}

func (c *memoryCache) Get(_ context.Context, userID uint) (permissions.Set, uint64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gens[userID]
	e, ok := c.entries[userID]
	if !ok || (!e.expires.IsZero() && c.now().After(e.expires)) {
		return nil, gen, false, nil
	}
	return e.perms, gen, true, nil
}

func (c *memoryCache) Set(_ context.Context, userID uint, gen uint64, perms permissions.Set) error {
	e := memoryEntry{perms: perms}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != gen {
		return nil
	}
	c.entries[userID] = e
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, userIDs ...uint) error {
	c.mu.Lock()
	for _, id := range userIDs {
		delete(c.entries, id)
		c.gens[id]++
	}
	c.mu.Unlock()
	return nil
}

const (
	redisKeyPrefix = "erp-access:perm:"
	redisGenPrefix = "erp-access:gen:"
)

// setIfGen writes KEYS[1] only while the generation at KEYS[2] equals
// ARGV[1]. ARGV[3] is the ttl in milliseconds, 0 for none.
var setIfGen = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`)

type redisCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisCache stores permission objects as JSON code lists in Redis,
// next to a per-user generation counter.
func NewRedisCache(rdb redis.UniversalClient, ttl time.Duration) PermissionCache {
	return &redisCache{rdb: rdb, ttl: ttl}
}

func redisKey(userID uint) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, userID)
}

func redisGenKey(userID uint) string {
	return fmt.Sprintf("%s%d", redisGenPrefix, userID)
}

func (c *redisCache) Get(ctx context.Context, userID uint) (permissions.Set, uint64, bool, error) {
	vals, err := c.rdb.MGet(ctx, redisKey(userID), redisGenKey(userID)).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis mget: %w", err)
	}
	var gen uint64
	if s, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseUint(s, 10, 64); err != nil {
			return nil, 0, false, fmt.Errorf("decoding cache generation: %w", err)
		}
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false, nil
	}
	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		return nil, gen, false, fmt.Errorf("decoding cached permissions: %w", err)
	}
	return permissions.SetOf(codes...), gen, true, nil
}

func (c *redisCache) Set(ctx context.Context, userID uint, gen uint64, perms permissions.Set) error {
	raw, err := json.Marshal(perms.Codes())
	if err != nil {
		return err
	}
	keys := []string{redisKey(userID), redisGenKey(userID)}
	err = setIfGen.Run(ctx, c.rdb, keys, strconv.FormatUint(gen, 10), string(raw), c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *redisCache) Invalidate(ctx context.Context, userIDs ...uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Del(ctx, redisKey(id))
			pipe.Incr(ctx, redisGenKey(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}
