package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "foodspots"

// RedisDatabase stores each collection as a redis list of JSON encoded entries.
type RedisDatabase struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDatabase accepts either a redis:// URL or a plain host:port address.
func NewRedisDatabase(connectionString string) (DatabaseService, error) {
	var options *redis.Options
	if strings.Contains(connectionString, "://") {
		parsed, err := redis.ParseURL(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid redis connection string: %w", err)
		}
		options = parsed
	} else {
		options = &redis.Options{Addr: connectionString}
	}

	return &RedisDatabase{
		client:    redis.NewClient(options),
		keyPrefix: redisKeyPrefix,
	}, nil
}

func (s *RedisDatabase) CreateDatabase() error {
	if err := s.client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

func (s *RedisDatabase) DoesDatabaseExist() bool {
	return s.client.Ping(context.Background()).Err() == nil
}

func (s *RedisDatabase) Close() error {
	return s.client.Close()
}

func (s *RedisDatabase) GetEntries(ctx context.Context, collection string) ([]json.RawMessage, error) {
	values, err := s.client.LRange(ctx, s.key(collection), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}

	records := make([]json.RawMessage, 0, len(values))
	for i, value := range values {
		if !json.Valid([]byte(value)) {
			slog.Error("skipping list item that is not valid JSON", "collection", collection, "index", i)
			continue
		}
		records = append(records, json.RawMessage(value))
	}
	return records, nil
}

func (s *RedisDatabase) AppendEntry(ctx context.Context, collection string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	if err := s.client.RPush(ctx, s.key(collection), data).Err(); err != nil {
		return fmt.Errorf("failed to append to collection %s: %w", collection, err)
	}
	return nil
}

func (s *RedisDatabase) key(collection string) string {
	return s.keyPrefix + ":" + collection
}
