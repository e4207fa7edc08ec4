package services

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pricescout/pricescout/internal/client/api"
	"github.com/pricescout/pricescout/internal/client/models"
	"github.com/pricescout/pricescout/internal/logging"
)

const trendingCacheKey = "trending"

// TrendingService serves the public trending-searches list, caching it for a
// TTL so the home view does not hit the backend on every render.
type TrendingService struct {
	client api.Client
	cache  *gocache.Cache
	log    logging.Logger
}

func NewTrendingService(client api.Client, ttl time.Duration, log logging.Logger) *TrendingService {
	return &TrendingService{
		client: client,
		cache:  gocache.New(ttl, 2*ttl),
		log:    log,
	}
}

// List returns the trending products, from cache when fresh.
func (s *TrendingService) List(ctx context.Context) ([]models.TrendingProduct, error) {
	if v, ok := s.cache.Get(trendingCacheKey); ok {
		return v.([]models.TrendingProduct), nil
	}

	items, err := s.client.Trending(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(trendingCacheKey, items, gocache.DefaultExpiration)
	return items, nil
}

// Invalidate drops the cached list so the next List refetches.
func (s *TrendingService) Invalidate() {
	s.cache.Delete(trendingCacheKey)
}
