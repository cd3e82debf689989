package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"supplement-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches catalog content from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// CatalogRepository caches the catalog JSON in Redis and falls back to a
// loader on cache miss. Stored as: SET catalog:{catalogID}:data {json}
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	key := r.dataKey(catalogID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
		var catalog domain.Catalog
		if err := json.Unmarshal(raw, &catalog); err == nil {
			return catalog, nil
		}
		// Corrupt cache entry; drop it and reload below.
		_ = r.client.Del(ctx, key).Err()
	}

	result, err, _ := r.sf.Do(catalogID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
			var catalog domain.Catalog
			if err := json.Unmarshal(raw, &catalog); err == nil {
				return catalog, nil
			}
		}

		catalog, err := r.loader.LoadCatalog(ctx, catalogID)
		if err != nil {
			return domain.Catalog{}, err
		}
		if err := catalog.Validate(); err != nil {
			return domain.Catalog{}, err
		}

		raw, err := json.Marshal(catalog)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("marshal catalog: %w", err)
		}
		_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()

		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

func (r *CatalogRepository) dataKey(catalogID string) string {
	return "catalog:" + catalogID + ":data"
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
