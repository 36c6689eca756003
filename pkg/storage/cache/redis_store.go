package cache

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"minivcs/pkg/core"
	"minivcs/pkg/storage"
	"minivcs/pkg/types"

	"github.com/redis/go-redis/v9"
)

// CachedStore 是一个装饰器，它为底层的 storage.Store 添加 Redis 缓存层
// 存在性 (Has) 与 tree/commit 的内容都会被缓存；blob 只缓存存在性
// Key 带有后端的命名空间，多个仓库共用一个 Redis 时互不干扰
type CachedStore struct {
	backend storage.Store // 被装饰的底层存储 (如 S3)
	client  *redis.Client
	ttl     time.Duration
	ns      string
}

type Config struct {
	RedisURL  string        // 标准连接字符串: redis://<user>:<password>@<host>:<port>/<db>
	TTL       time.Duration // 过期时间
	Namespace string        // 为空时由后端的 Location 推导
}

func NewCachedStore(backend storage.Store, cfg Config) (*CachedStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Fail-fast 连接检查
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ns := cfg.Namespace
	if ns == "" {
		ns = namespaceOf(backend)
	}

	return &CachedStore{
		backend: backend,
		client:  client,
		ttl:     cfg.TTL,
		ns:      ns,
	}, nil
}

// namespaceOf 取后端位置的短摘要
func namespaceOf(backend storage.Store) string {
	loc, ok := backend.(storage.Locator)
	if !ok {
		return "default"
	}
	sum := sha1.Sum([]byte(loc.Location()))
	return hex.EncodeToString(sum[:6])
}

// Close 释放 Redis 连接
func (s *CachedStore) Close() error {
	return s.client.Close()
}

func (s *CachedStore) existsKey(hash types.Hash) string {
	return "mv:" + s.ns + ":obj:" + string(hash)
}

func (s *CachedStore) bodyKey(hash types.Hash) string {
	return "mv:" + s.ns + ":body:" + string(hash)
}

// Has 优先查 Redis
func (s *CachedStore) Has(ctx context.Context, hash types.Hash) (bool, error) {
	key := s.existsKey(hash)

	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		// 缓存故障降级：退化为无缓存模式，直接查底层
		slog.Warn("redis exists failed, falling back to backend", slog.String("hash", hash.String()), slog.Any("err", err))
	} else if val > 0 {
		return true, nil
	}

	found, err := s.backend.Has(ctx, hash)
	if err != nil {
		return false, err
	}

	// 缓存回填
	// 对象只写一次，所以"存在"永远不会过时
	if found {
		if err := s.client.Set(ctx, key, "1", s.ttl).Err(); err != nil {
			slog.Warn("redis fill failed", slog.String("hash", hash.String()), slog.Any("err", err))
		}
	}
	return found, nil
}

// Put 写入对象
// 是否跳过只看底层：仓库被删掉重建后，Redis 里的存在标记可能已经过时
func (s *CachedStore) Put(ctx context.Context, obj core.Object) error {
	exists, err := s.backend.Has(ctx, obj.ID())
	if err != nil {
		return err
	}
	if !exists {
		if err := s.backend.Put(ctx, obj); err != nil {
			return err
		}
	}

	// 只有底层确认有这个对象，才写 Redis
	if err := s.client.Set(ctx, s.existsKey(obj.ID()), "1", s.ttl).Err(); err != nil {
		slog.Warn("redis fill failed", slog.String("hash", obj.ID().String()), slog.Any("err", err))
	}
	s.fillBody(ctx, obj.ID(), obj.Type(), obj.Payload())
	return nil
}

// Get 对 tree/commit 走缓存，blob 透传
func (s *CachedStore) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	data, err := s.client.Get(ctx, s.bodyKey(hash)).Bytes()
	switch {
	case err == nil:
		rec, decErr := decodeRecord(data)
		if decErr == nil && core.HashObject(rec.Type, rec.Payload) == hash {
			return io.NopCloser(bytes.NewReader(core.Encode(rec.Type, rec.Payload))), nil
		}
		// 缓存内容与 ID 不符，丢弃并回源
		slog.Warn("discarding bad cache record", slog.String("hash", hash.String()), slog.Any("err", decErr))
		s.client.Del(ctx, s.bodyKey(hash))
	case errors.Is(err, redis.Nil):
	default:
		slog.Warn("redis get failed, falling back to backend", slog.String("hash", hash.String()), slog.Any("err", err))
	}

	rc, err := s.backend.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if kind, payload, err := core.DecodeEnvelope(raw); err == nil {
		s.fillBody(ctx, hash, kind, payload)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

// ExpandHash 透传
func (s *CachedStore) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	return s.backend.ExpandHash(ctx, short)
}

// fillBody 只缓存 tree 与 commit 的内容
// 历史遍历只读这两种对象，blob 可能很大，不值得占用 Redis 内存
func (s *CachedStore) fillBody(ctx context.Context, hash types.Hash, kind core.ObjectType, payload []byte) {
	if kind != core.TypeTree && kind != core.TypeCommit {
		return
	}
	if len(payload) > maxBodySize {
		return
	}
	data, err := encodeRecord(record{Type: kind, Payload: payload})
	if err != nil {
		slog.Warn("encode cache record failed", slog.String("hash", hash.String()), slog.Any("err", err))
		return
	}
	if err := s.client.Set(ctx, s.bodyKey(hash), data, s.ttl).Err(); err != nil {
		slog.Warn("redis fill failed", slog.String("hash", hash.String()), slog.Any("err", err))
	}
}
