package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dtnitsch/brew-crawler/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisPagePrefix = "brew-crawler:page:"
	redisIndexKey   = "brew-crawler:pages"
)

// RedisStore keeps each record as a JSON document under a per-URL key, plus a set of known URLs.
type RedisStore struct {
	client *redis.Client
}

// OpenRedis connects using a redis:// URL.
func OpenRedis(ctx context.Context, addr string) (*RedisStore, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis address: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func redisKey(url string) string {
	return redisPagePrefix + url
}

func (s *RedisStore) CreatePage(ctx context.Context, rec *models.PageRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}

	ok, err := s.client.SetNX(ctx, redisKey(rec.URL), doc, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.URL)
	}
	if err := s.client.SAdd(ctx, redisIndexKey, rec.URL).Err(); err != nil {
		return fmt.Errorf("failed to index page: %w", err)
	}
	return nil
}

func (s *RedisStore) UpdatePage(ctx context.Context, rec *models.PageRecord) error {
	if len(rec.RawContent) == 0 {
		if old, err := s.RetrievePage(ctx, rec.URL); err == nil && len(old.RawContent) > 0 {
			kept := *rec
			kept.RawContent = old.RawContent
			rec = &kept
		}
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}

	ok, err := s.client.SetXX(ctx, redisKey(rec.URL), doc, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, rec.URL)
	}
	return nil
}

func (s *RedisStore) RetrievePage(ctx context.Context, url string) (*models.PageRecord, error) {
	data, err := s.client.Get(ctx, redisKey(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	var rec models.PageRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode page %s: %w", url, err)
	}
	return &rec, nil
}

func (s *RedisStore) RetrieveAllPages(ctx context.Context) ([]*models.PageRecord, error) {
	urls, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	if len(urls) == 0 {
		return nil, nil
	}

	keys := make([]string, len(urls))
	for i, u := range urls {
		keys[i] = redisKey(u)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}

	pages := make([]*models.PageRecord, 0, len(values))
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		var rec models.PageRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode page %s: %w", urls[i], err)
		}
		pages = append(pages, &rec)
	}
	return pages, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
