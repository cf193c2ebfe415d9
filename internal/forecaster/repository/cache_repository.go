package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/pkg/common"
	"golang-stock-forecaster/pkg/logger"
	"golang-stock-forecaster/pkg/utils"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// SeriesKey identifies one cached price series.
type SeriesKey struct {
	Symbol entity.TickerSymbol
	Start  time.Time
	End    time.Time
}

func (k SeriesKey) String() string {
	return fmt.Sprintf(common.CacheKeySeries,
		strings.ToUpper(k.Symbol.String()), utils.FormatDate(k.Start), utils.FormatDate(k.End))
}

// CacheStore memoizes the symbol catalog and loaded price series.
// Its lifetime belongs to the hosting process, not to the pipeline.
type CacheStore interface {
	GetCatalog(ctx context.Context) (entity.SymbolCatalog, bool, error)
	SetCatalog(ctx context.Context, catalog entity.SymbolCatalog) error
	GetSeries(ctx context.Context, key SeriesKey) (entity.PriceSeries, bool, error)
	SetSeries(ctx context.Context, key SeriesKey, series entity.PriceSeries) error
}

type memoryCacheStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemoryCacheStore keeps entries in process memory. A zero ttl never expires them.
func NewMemoryCacheStore(ttl time.Duration) CacheStore {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 2 * ttl
	}
	return &memoryCacheStore{
		cache: cache.New(expiration, cleanup),
		ttl:   expiration,
	}
}

func (s *memoryCacheStore) GetCatalog(_ context.Context) (entity.SymbolCatalog, bool, error) {
	v, ok := s.cache.Get(common.CacheKeyCatalog)
	if !ok {
		return nil, false, nil
	}
	catalog, ok := v.(entity.SymbolCatalog)
	return slices.Clone(catalog), ok, nil
}

func (s *memoryCacheStore) SetCatalog(_ context.Context, catalog entity.SymbolCatalog) error {
	s.cache.Set(common.CacheKeyCatalog, slices.Clone(catalog), s.ttl)
	return nil
}

func (s *memoryCacheStore) GetSeries(_ context.Context, key SeriesKey) (entity.PriceSeries, bool, error) {
	v, ok := s.cache.Get(key.String())
	if !ok {
		return entity.PriceSeries{}, false, nil
	}
	series, ok := v.(entity.PriceSeries)
	series.Bars = slices.Clone(series.Bars)
	return series, ok, nil
}

// SetSeries stores a private copy of the bars so callers cannot reach the
// cached backing array.
func (s *memoryCacheStore) SetSeries(_ context.Context, key SeriesKey, series entity.PriceSeries) error {
	series.Bars = slices.Clone(series.Bars)
	s.cache.Set(key.String(), series, s.ttl)
	return nil
}

type redisCacheStore struct {
	client *redis.Client
	log    *logger.Logger
	prefix string
	ttl    time.Duration
}

// NewRedisCacheStore keeps msgpack-encoded entries in Redis under prefix.
// A zero ttl stores keys without expiry.
func NewRedisCacheStore(client *redis.Client, log *logger.Logger, prefix string, ttl time.Duration) CacheStore {
	return &redisCacheStore{
		client: client,
		log:    log,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *redisCacheStore) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *redisCacheStore) GetCatalog(ctx context.Context) (entity.SymbolCatalog, bool, error) {
	var symbols []string
	ok, err := s.get(ctx, s.key(common.CacheKeyCatalog), &symbols)
	if err != nil || !ok {
		return nil, ok, err
	}
	catalog := make(entity.SymbolCatalog, len(symbols))
	for i, v := range symbols {
		catalog[i] = entity.TickerSymbol(v)
	}
	return catalog, true, nil
}

func (s *redisCacheStore) SetCatalog(ctx context.Context, catalog entity.SymbolCatalog) error {
	return s.set(ctx, s.key(common.CacheKeyCatalog), catalog.Strings())
}

func (s *redisCacheStore) GetSeries(ctx context.Context, key SeriesKey) (entity.PriceSeries, bool, error) {
	var series entity.PriceSeries
	ok, err := s.get(ctx, s.key(key.String()), &series)
	if err != nil || !ok {
		return entity.PriceSeries{}, ok, err
	}
	// msgpack decodes timestamps in the local zone; bar dates are UTC calendar days.
	series.Start, series.End = series.Start.UTC(), series.End.UTC()
	for i := range series.Bars {
		series.Bars[i].Date = series.Bars[i].Date.UTC()
	}
	return series, true, nil
}

func (s *redisCacheStore) SetSeries(ctx context.Context, key SeriesKey, series entity.PriceSeries) error {
	return s.set(ctx, s.key(key.String()), series)
}

func (s *redisCacheStore) get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to read cache entry", logger.ErrorField(err), logger.StringField("key", key))
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		s.log.ErrorContext(ctx, "Failed to decode cache entry", logger.ErrorField(err), logger.StringField("key", key))
		return false, err
	}
	return true, nil
}

func (s *redisCacheStore) set(ctx context.Context, key string, value interface{}) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.ErrorContext(ctx, "Failed to write cache entry", logger.ErrorField(err), logger.StringField("key", key))
		return err
	}
	return nil
}
