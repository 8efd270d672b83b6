package jobboard

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/azenia/website/internal/db"
)

const (
	jobsKey  = "jobs"
	logosKey = "logos"
)

// DefaultTTL bounds how stale a public listing can get when a write bypasses
// the cache.
const DefaultTTL = 5 * time.Minute

// Listings is the store read by public pages.
type Listings interface {
	ListJobs(ctx context.Context) ([]db.Job, error)
	ListActiveLogos(ctx context.Context) ([]db.ClientLogo, error)
}

// Cache is a read-through cache of the public listings. Admin writes call
// the matching Invalidate method.
type Cache struct {
	src   Listings
	cache *gocache.Cache
}

// NewCache wraps src. A non-positive ttl uses DefaultTTL.
func NewCache(src Listings, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{src: src, cache: gocache.New(ttl, 2*ttl)}
}

// Jobs returns every job, newest first.
func (c *Cache) Jobs(ctx context.Context) ([]db.Job, error) {
	if value, found := c.cache.Get(jobsKey); found {
		return value.([]db.Job), nil
	}

	jobs, err := c.src.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(jobsKey, jobs)
	return jobs, nil
}

// ActiveLogos returns the logos shown in the homepage carousel.
func (c *Cache) ActiveLogos(ctx context.Context) ([]db.ClientLogo, error) {
	if value, found := c.cache.Get(logosKey); found {
		return value.([]db.ClientLogo), nil
	}

	logos, err := c.src.ListActiveLogos(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(logosKey, logos)
	return logos, nil
}

// InvalidateJobs drops the cached job list.
func (c *Cache) InvalidateJobs() {
	c.cache.Delete(jobsKey)
}

// InvalidateLogos drops the cached logo list.
func (c *Cache) InvalidateLogos() {
	c.cache.Delete(logosKey)
}
