package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const (
	keyAll         = "tickets:all"
	keyOwnerPrefix = "tickets:owner:"
)

// TicketCache caches dashboard listings in Redis. A cache failure is a
// miss, never an error surfaced to the caller.
type TicketCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTicketCache returns a new TicketCache.
func NewTicketCache(rdb *redis.Client, ttl time.Duration) *TicketCache {
	return &TicketCache{rdb: rdb, ttl: ttl}
}

// GetOwnerList returns the cached listing for one owner, or nil on miss.
func (c *TicketCache) GetOwnerList(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	return c.get(ctx, keyOwnerPrefix+ownerID)
}

// SetOwnerList stores an owner's listing.
func (c *TicketCache) SetOwnerList(ctx context.Context, ownerID string, list []domain.Ticket) error {
	return c.set(ctx, keyOwnerPrefix+ownerID, list)
}

// GetAllList returns the cached admin listing, or nil on miss.
func (c *TicketCache) GetAllList(ctx context.Context) ([]domain.Ticket, error) {
	return c.get(ctx, keyAll)
}

// SetAllList stores the admin listing.
func (c *TicketCache) SetAllList(ctx context.Context, list []domain.Ticket) error {
	return c.set(ctx, keyAll, list)
}

// Invalidate drops the owner's listing and the admin listing after any
// mutation touching one of the owner's tickets.
func (c *TicketCache) Invalidate(ctx context.Context, ownerID string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, keyOwnerPrefix+ownerID, keyAll).Err()
}

func (c *TicketCache) get(ctx context.Context, key string) ([]domain.Ticket, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []domain.Ticket
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *TicketCache) set(ctx context.Context, key string, list []domain.Ticket) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
