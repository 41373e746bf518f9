package redis

import (
	"context"
	"hash/crc32"
	"hash/fnv"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/Guyuepp/travel-feed/domain"
)

const (
	// 全部 feed id 的布隆过滤器 (bitmap)
	KeyFeedBloom = "bloom:feed:ids"

	defaultBloomHashes = 3
	// ids per pipeline in BulkAdd
	bloomBulkChunk = 512
)

type redisBloomRepo struct {
	client redis.UniversalClient
	key    string
	bits   uint64
	hashes int
	// set by Invalidate, cleared by MarkReady
	stale atomic.Bool
}

var _ domain.BloomRepository = (*redisBloomRepo)(nil)

type BloomOption func(*redisBloomRepo)

// WithBloomKey stores the bitmap under key instead of KeyFeedBloom.
func WithBloomKey(key string) BloomOption {
	return func(r *redisBloomRepo) {
		r.key = key
	}
}

// WithBloomHashes sets the number of bits set per id.
func WithBloomHashes(k int) BloomOption {
	return func(r *redisBloomRepo) {
		if k > 0 {
			r.hashes = k
		}
	}
}

func NewRedisBloomRepo(client redis.UniversalClient, bitSize uint64, opts ...BloomOption) *redisBloomRepo {
	r := &redisBloomRepo{
		client: client,
		key:    KeyFeedBloom,
		bits:   max(bitSize, 1),
		hashes: defaultBloomHashes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *redisBloomRepo) Add(ctx context.Context, id string) error {
	return r.BulkAdd(ctx, []string{id})
}

func (r *redisBloomRepo) BulkAdd(ctx context.Context, ids []string) error {
	for start := 0; start < len(ids); start += bloomBulkChunk {
		end := min(start+bloomBulkChunk, len(ids))

		pipe := r.client.Pipeline()
		for _, id := range ids[start:end] {
			for _, offset := range r.offsets(id) {
				pipe.SetBit(ctx, r.key, offset, 1)
			}
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Exists reads the ready bit together with the bits of id. A filter that was
// never marked ready, was invalidated, or lost its key reports every id as
// possibly existing.
func (r *redisBloomRepo) Exists(ctx context.Context, id string) (bool, error) {
	if r.stale.Load() {
		return true, nil
	}

	pipe := r.client.Pipeline()
	ready := pipe.GetBit(ctx, r.key, r.readyOffset())
	bits := make([]*redis.IntCmd, 0, r.hashes)
	for _, offset := range r.offsets(id) {
		bits = append(bits, pipe.GetBit(ctx, r.key, offset))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if ready.Val() == 0 {
		return true, nil
	}
	for _, bit := range bits {
		if bit.Val() == 0 {
			return false, nil
		}
	}
	return true, nil
}

func (r *redisBloomRepo) MarkReady(ctx context.Context) error {
	if err := r.client.SetBit(ctx, r.key, r.readyOffset(), 1).Err(); err != nil {
		return err
	}
	r.stale.Store(false)
	return nil
}

// Invalidate stops trusting misses in this process right away, and in every
// other process once the ready bit is cleared.
func (r *redisBloomRepo) Invalidate(ctx context.Context) error {
	r.stale.Store(true)
	return r.client.SetBit(ctx, r.key, r.readyOffset(), 0).Err()
}

// 过滤器范围之外的最后一位, 标记已完整加载
func (r *redisBloomRepo) readyOffset() int64 {
	return int64(r.bits)
}

// offsets derives the k bit positions of id from two base hashes,
// g_i = h1 + i*h2 (mod m).
func (r *redisBloomRepo) offsets(id string) []int64 {
	data := []byte(id)
	h1 := uint64(crc32.ChecksumIEEE(data))
	h := fnv.New64a()
	_, _ = h.Write(data)
	h2 := h.Sum64() | 1 // 奇数，避免所有位置重合

	out := make([]int64, r.hashes)
	for i := range out {
		out[i] = int64((h1 + uint64(i)*h2) % r.bits)
	}
	return out
}
