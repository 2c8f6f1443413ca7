package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/citypulse/citypulse/internal/platform/constants"
)

// CachedRepository decorates a [Repository] with redis cache-aside reads.
//
// # Staleness
//
// The event table is also written by the out-of-process scraper, which this
// cache cannot see. Entries therefore carry a short TTL
// ([constants.EventCacheTTL]) instead of relying on invalidation alone.
type CachedRepository struct {
	inner  Repository
	client *redis.Client
	logger *slog.Logger
}

// NewCachedRepository wraps inner with redis caching for list reads.
func NewCachedRepository(inner Repository, client *redis.Client, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{
		inner:  inner,
		client: client,
		logger: logger,
	}
}

// cachedPage is the serialized form of a ListByCity result.
type cachedPage struct {
	Events []*Event `json:"events"`
	Total  int      `json:"total"`
}

/*
ListByCity serves a city's event page from redis when possible.

Description: Cache misses and redis failures both fall through to the inner
repository; a broken cache degrades to slower reads, never to errors.
*/
func (repository *CachedRepository) ListByCity(context context.Context, cityID, limit, offset int) ([]*Event, int, error) {
	key := fmt.Sprintf("%s%d:%d:%d", constants.RedisPrefixCityEvents, cityID, limit, offset)

	if raw, err := repository.client.Get(context, key).Bytes(); err == nil {
		var page cachedPage
		if err := json.Unmarshal(raw, &page); err == nil {
			return page.Events, page.Total, nil
		}
	}

	events, total, err := repository.inner.ListByCity(context, cityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	repository.cacheSet(context, key, cachedPage{Events: events, Total: total})

	return events, total, nil
}

/*
Featured serves the featured-events strip from redis when possible.
*/
func (repository *CachedRepository) Featured(context context.Context, limit int) ([]*Event, error) {
	key := fmt.Sprintf("%s:%d", constants.RedisPrefixFeaturedEvents, limit)

	if raw, err := repository.client.Get(context, key).Bytes(); err == nil {
		var events []*Event
		if err := json.Unmarshal(raw, &events); err == nil {
			return events, nil
		}
	}

	events, err := repository.inner.Featured(context, limit)
	if err != nil {
		return nil, err
	}

	repository.cacheSet(context, key, events)

	return events, nil
}

// FindByID is a passthrough; single-event reads are cheap primary key lookups.
func (repository *CachedRepository) FindByID(context context.Context, id int) (*Event, error) {
	return repository.inner.FindByID(context, id)
}

/*
Create persists through the inner repository and invalidates the affected
city's cached pages plus the featured strip.
*/
func (repository *CachedRepository) Create(context context.Context, event *Event) error {
	if err := repository.inner.Create(context, event); err != nil {
		return err
	}

	repository.invalidateCity(context, event.CityID)

	return nil
}

// cacheSet marshals and stores a cache entry, logging (not returning) failures.
func (repository *CachedRepository) cacheSet(context context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		repository.logger.Warn("event_cache_marshal_failed", slog.String("key", key), slog.Any("error", err))
		return
	}

	if err := repository.client.Set(context, key, raw, constants.EventCacheTTL).Err(); err != nil {
		repository.logger.Warn("event_cache_set_failed", slog.String("key", key), slog.Any("error", err))
	}
}

// invalidateCity drops every cached page for a city and the featured strip.
func (repository *CachedRepository) invalidateCity(context context.Context, cityID int) {
	pattern := fmt.Sprintf("%s%d:*", constants.RedisPrefixCityEvents, cityID)

	iter := repository.client.Scan(context, 0, pattern, 0).Iterator()
	for iter.Next(context) {
		if err := repository.client.Del(context, iter.Val()).Err(); err != nil {
			repository.logger.Warn("event_cache_del_failed", slog.String("key", iter.Val()), slog.Any("error", err))
		}
	}
	if err := iter.Err(); err != nil {
		repository.logger.Warn("event_cache_scan_failed", slog.Any("error", err))
	}

	featuredPattern := constants.RedisPrefixFeaturedEvents + ":*"
	iter = repository.client.Scan(context, 0, featuredPattern, 0).Iterator()
	for iter.Next(context) {
		if err := repository.client.Del(context, iter.Val()).Err(); err != nil {
			repository.logger.Warn("event_cache_del_failed", slog.String("key", iter.Val()), slog.Any("error", err))
		}
	}
	if err := iter.Err(); err != nil {
		repository.logger.Warn("event_cache_scan_failed", slog.Any("error", err))
	}
}
