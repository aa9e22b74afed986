package exercises

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	oneMinute         = 60
	catalogCacheTTL   = 5 * oneMinute // seconds
	catalogCacheSizeB = 10 * 1024 * 1024
)

// CachedRepo is a read-through cache in front of the exercise catalog repo.
// The catalog is small and read-heavy, so any write simply clears the cache.
type CachedRepo struct {
	repo  *Repo
	cache *freecache.Cache
}

func NewCachedRepo(repo *Repo) *CachedRepo {
	return &CachedRepo{
		repo:  repo,
		cache: freecache.NewCache(catalogCacheSizeB),
	}
}

func (c *CachedRepo) Add(ctx context.Context, exercise Exercise) (*Exercise, error) {
	added, err := c.repo.Add(ctx, exercise)
	if err != nil {
		return nil, err
	}
	c.cache.Clear()
	return added, nil
}

func (c *CachedRepo) Get(ctx context.Context, id string) (*Exercise, error) {
	cacheKey := []byte("exercise::" + id)
	if exerciseBytes, err := c.cache.Get(cacheKey); err == nil {
		var exercise Exercise
		if err := json.Unmarshal(exerciseBytes, &exercise); err == nil {
			log.Tracef("exercise %s found in cache", id)
			return &exercise, nil
		}
		log.Errorf("failed to unmarshal cached exercise %s: %s", id, err)
	}

	exercise, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if exerciseBytes, err := json.Marshal(exercise); err == nil {
		if err := c.cache.Set(cacheKey, exerciseBytes, catalogCacheTTL); err != nil {
			log.Errorf("failed to cache exercise %s: %s", id, err)
		}
	}

	return exercise, nil
}

func (c *CachedRepo) List(ctx context.Context, params ListParams) ([]Exercise, error) {
	cacheKey := []byte(fmt.Sprintf("exercises::%s::%s", params.MuscleGroup, params.Type))
	if listBytes, err := c.cache.Get(cacheKey); err == nil {
		var exercisesList []Exercise
		if err := json.Unmarshal(listBytes, &exercisesList); err == nil {
			log.Tracef("exercises list %s found in cache", cacheKey)
			return exercisesList, nil
		}
		log.Errorf("failed to unmarshal cached exercises list: %s", err)
	}

	exercisesList, err := c.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	if listBytes, err := json.Marshal(exercisesList); err == nil {
		if err := c.cache.Set(cacheKey, listBytes, catalogCacheTTL); err != nil {
			log.Errorf("failed to cache exercises list: %s", err)
		}
	}

	return exercisesList, nil
}

func (c *CachedRepo) Update(ctx context.Context, exercise Exercise) error {
	if err := c.repo.Update(ctx, exercise); err != nil {
		return err
	}
	c.cache.Clear()
	return nil
}

func (c *CachedRepo) Delete(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	c.cache.Clear()
	return nil
}
