package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// PosterCache 海报缓存，键为条目外链
// 值为空字符串表示"查过但没有海报"（负缓存）
type PosterCache interface {
	// Get 返回缓存的海报地址；found 为 false 表示从未查询过
	Get(permalink string) (posterURL string, found bool)
	// Set 记录查询到的海报
	Set(permalink, posterURL string)
	// SetMissing 记录负缓存
	SetMissing(permalink string)
	// Len 当前条目数
	Len() int
}

// MemoryPosterCache 进程内海报缓存，永不过期也不淘汰
// 条目数量与外链数量同级（几百到几千），进程重启即清空
type MemoryPosterCache struct {
	store *cache.Cache
}

// NewMemoryPosterCache 创建进程内海报缓存
func NewMemoryPosterCache() *MemoryPosterCache {
	return &MemoryPosterCache{
		store: cache.New(cache.NoExpiration, 0),
	}
}

// Get 查询缓存
func (c *MemoryPosterCache) Get(permalink string) (string, bool) {
	v, ok := c.store.Get(permalink)
	if !ok {
		return "", false
	}
	url, _ := v.(string)
	return url, true
}

// Set 写入海报地址
func (c *MemoryPosterCache) Set(permalink, posterURL string) {
	c.store.Set(permalink, posterURL, cache.NoExpiration)
}

// SetMissing 写入负缓存
func (c *MemoryPosterCache) SetMissing(permalink string) {
	c.store.Set(permalink, "", cache.NoExpiration)
}

// Len 当前条目数
func (c *MemoryPosterCache) Len() int {
	return c.store.ItemCount()
}

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// TTLCache 带过期时间的 LRU 缓存（用于订阅源最近一次结果）
type TTLCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
	now     func() time.Time
}

// NewTTLCache size 是最大缓存条数，ttl 是数据有效期
func NewTTLCache[T any](size int, ttl time.Duration) *TTLCache[T] {
	if size <= 0 {
		size = 1
	}
	// lru.New 只在 size <= 0 时报错
	c, _ := lru.New[string, CacheItem[T]](size)
	return &TTLCache[T]{
		storage: c,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set 写入（LRU 中 Add 会自动处理更新）
func (c *TTLCache[T]) Set(key string, value T) {
	c.storage.Add(key, CacheItem[T]{
		Value:     value,
		ExpiredAt: c.now().Add(c.ttl),
	})
}

// Get 读取，过期条目会被删除
func (c *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}

	if c.now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}

	return item.Value, true
}

// Delete 删除
func (c *TTLCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

// Len 当前长度
func (c *TTLCache[T]) Len() int {
	return c.storage.Len()
}
