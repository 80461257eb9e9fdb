package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
)

// appendScript pushes only when the marker key exists, so a missing log
// stays missing.
var appendScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("RPUSH", KEYS[2], ARGV[1])
end
return 0
`)

// RedisRepository stores each log as a list "history:<id>" plus a marker
// key "history:<id>:exists" that survives Clear.
type RedisRepository struct {
	client redis.UniversalClient
}

func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client}
}

func listKey(userID int64) string {
	return "history:" + strconv.FormatInt(userID, 10)
}

func markerKey(userID int64) string {
	return listKey(userID) + ":exists"
}

func (r *RedisRepository) Create(ctx context.Context, userID int64) error {
	if err := r.client.SetNX(ctx, markerKey(userID), 1, 0).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}

func (r *RedisRepository) Append(ctx context.Context, e models.HistoryEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	keys := []string{markerKey(e.UserID), listKey(e.UserID)}
	if err := appendScript.Run(ctx, r.client, keys, data).Err(); err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

func (r *RedisRepository) List(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	n, err := r.client.Exists(ctx, markerKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis exists: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	raw, err := r.client.LRange(ctx, listKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(raw))
	for _, s := range raw {
		var e models.HistoryEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Clear sets the marker and drops the list in one MULTI block.
func (r *RedisRepository) Clear(ctx context.Context, userID int64) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, markerKey(userID), 1, 0)
		pipe.Del(ctx, listKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}
