package db

import (
	"context"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/concentric-layout/layout"
	"golang.org/x/exp/slices"
)

// CachedSource keeps the results of the most recent queries of source in
// memory. Cached datasets are shared between callers and must not be
// modified.
type CachedSource struct {
	source DataSource
	cache  *lru.Cache[string, *layout.Dataset]
}

func NewCachedSource(source DataSource, size int) (*CachedSource, error) {
	cache, err := lru.New[string, *layout.Dataset](size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create cache of size %d", size)
	}
	return &CachedSource{source: source, cache: cache}, nil
}

func (c *CachedSource) Dataset(ctx context.Context, q Query) (*layout.Dataset, error) {
	key := q.key()
	if ds, ok := c.cache.Get(key); ok {
		log.Ctx(ctx).Debug().Msgf("dataset cache hit for %s", key)
		return ds, nil
	}
	ds, err := c.source.Dataset(ctx, q)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, ds)
	return ds, nil
}

// key identifies q independent of the order of its entities.
func (q Query) key() string {
	entities := slices.Clone(q.Entities)
	slices.Sort(entities)
	// encoding/json sorts map keys
	key, _ := json.Marshal(Query{Entities: entities, CategoryCount: q.CategoryCount})
	return string(key)
}
