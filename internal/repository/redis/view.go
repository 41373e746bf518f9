package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Guyuepp/travel-feed/domain"
)

const (
	// KeyViewAbuse 每个 feed 一个 zset，member 是 client，score 是过期时间(ms)
	KeyViewAbuse = "feed:views:abuse:%s"
	// KeyViewsPending 待回写的浏览量，field 是 feedID
	KeyViewsPending = "feed:views:pending"

	scanCount = 100
)

// drainScript 扣掉已回写的数量，扣到 0 就删掉 field，
// 避免 snapshot 之后新增的浏览量被一起删除
var drainScript = redis.NewScript(`
local left = redis.call("HINCRBY", KEYS[1], ARGV[1], -tonumber(ARGV[2]))
if left <= 0 then
	redis.call("HDEL", KEYS[1], ARGV[1])
end
return left
`)

type viewCache struct {
	client redis.UniversalClient
}

var _ domain.ViewCache = (*viewCache)(nil)

func NewViewCache(client redis.UniversalClient) *viewCache {
	return &viewCache{
		client,
	}
}

func abuseKey(feedID string) string {
	return fmt.Sprintf(KeyViewAbuse, feedID)
}

func (c *viewCache) PruneViewers(ctx context.Context, feedID string, until time.Time) error {
	upper := strconv.FormatInt(until.UnixMilli(), 10)
	return c.client.ZRemRangeByScore(ctx, abuseKey(feedID), "-inf", upper).Err()
}

func (c *viewCache) Viewers(ctx context.Context, feedID string) ([]string, error) {
	var (
		cursor  uint64
		viewers []string
	)
	key := abuseKey(feedID)
	for {
		// ZSCAN 返回 member, score 交替的列表
		page, next, err := c.client.ZScan(ctx, key, cursor, "", scanCount).Result()
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(page); i += 2 {
			viewers = append(viewers, page[i])
		}
		if next == 0 {
			return viewers, nil
		}
		cursor = next
	}
}

func (c *viewCache) AddViewer(ctx context.Context, feedID, clientID string, expireAt time.Time) error {
	return c.client.ZAdd(ctx, abuseKey(feedID), redis.Z{
		Score:  float64(expireAt.UnixMilli()),
		Member: clientID,
	}).Err()
}

func (c *viewCache) DeleteViewers(ctx context.Context, feedID string) error {
	return c.client.Del(ctx, abuseKey(feedID)).Err()
}

func (c *viewCache) IncrPendingViews(ctx context.Context, feedID string) error {
	return c.client.HIncrBy(ctx, KeyViewsPending, feedID, 1).Err()
}

func (c *viewCache) PendingViews(ctx context.Context) (map[string]int64, error) {
	var cursor uint64
	res := make(map[string]int64)
	for {
		page, next, err := c.client.HScan(ctx, KeyViewsPending, cursor, "", scanCount).Result()
		if err != nil {
			return nil, err
		}
		for i := 0; i+1 < len(page); i += 2 {
			views, err := strconv.ParseInt(page[i+1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("pending views of feed %s: %w", page[i], err)
			}
			if views > 0 {
				res[page[i]] = views
			}
		}
		if next == 0 {
			return res, nil
		}
		cursor = next
	}
}

func (c *viewCache) DrainPendingViews(ctx context.Context, feedID string, applied int64) error {
	if applied <= 0 {
		return nil
	}
	return drainScript.Run(ctx, c.client, []string{KeyViewsPending}, feedID, applied).Err()
}

func (c *viewCache) DeletePendingViews(ctx context.Context, feedID string) error {
	return c.client.HDel(ctx, KeyViewsPending, feedID).Err()
}
