package assistance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache holds at most one briefing per (patient, task) pair. Entries
// never expire; a refresh overwrites in place, last writer wins.
type Cache struct {
	client *redis.Client
}

// NewCache creates a briefing cache over the given Redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func cacheKey(patientID uuid.UUID, taskCode string) string {
	return fmt.Sprintf("assist:%s:%s", patientID, taskCode)
}

// Lookup returns the cached entry for the pair, with found=false on miss.
func (c *Cache) Lookup(ctx context.Context, patientID uuid.UUID, taskCode string) (*Entry, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(patientID, taskCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached briefing: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("parsing cached briefing: %w", err)
	}
	return &entry, true, nil
}

// Store writes the entry, replacing any previous one for the pair, and
// returns the storage location.
func (c *Cache) Store(ctx context.Context, entry Entry) (string, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshaling briefing entry: %w", err)
	}

	key := cacheKey(entry.PatientID, entry.TodoID)
	if err := c.client.Set(ctx, key, data, 0).Err(); err != nil {
		return "", fmt.Errorf("storing briefing entry: %w", err)
	}
	return key, nil
}

// CachedTasks returns the subset of codes that have a cached briefing
// for the patient, preserving the input order.
func (c *Cache) CachedTasks(ctx context.Context, patientID uuid.UUID, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return []string{}, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = cacheKey(patientID, code)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("checking cached briefings: %w", err)
	}

	cached := []string{}
	for i, v := range values {
		if v != nil {
			cached = append(cached, codes[i])
		}
	}
	return cached, nil
}
