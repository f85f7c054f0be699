// Package noop provides a cache that stores nothing.
package noop

import (
	"context"
	"time"
)

// Cache implements cache.Cache without storing anything. Every Get misses.
type Cache struct{}

// NewCache returns a disabled cache.
func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) Get(context.Context, string) ([]byte, error) { return nil, nil }

func (c *Cache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (c *Cache) Delete(context.Context, string) (bool, error) { return false, nil }

func (c *Cache) DeletePattern(context.Context, string) (int64, error) { return 0, nil }

func (c *Cache) Ping(context.Context) error { return nil }

func (c *Cache) Close() error { return nil }
