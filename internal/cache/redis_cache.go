package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/value-bet-service/internal/models"
)

// ErrNotFound is returned when a key is absent or expired
var ErrNotFound = errors.New("not found in cache")

const (
	leagueKeyPrefix      = "opportunities:"
	opportunityKeyPrefix = "opportunity:"
)

// RedisCache caches the latest opportunity set per league in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // e.g., 15 * time.Minute
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

func leagueKey(league models.League) string {
	return leagueKeyPrefix + string(league)
}

func opportunityKey(id uuid.UUID) string {
	return opportunityKeyPrefix + id.String()
}

// SetLeague replaces a league's opportunity set and indexes each opportunity by id.
// An empty set is still written so readers can tell "evaluated, nothing found" from "never evaluated".
func (c *RedisCache) SetLeague(ctx context.Context, set *models.LeagueOpportunities) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal league opportunities: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, leagueKey(set.League), data, c.ttl)

	for _, opp := range set.Opportunities {
		oppData, err := json.Marshal(opp)
		if err != nil {
			c.logger.Error().Err(err).Str("id", opp.ID.String()).Msg("failed to marshal opportunity")
			continue
		}
		pipe.Set(ctx, opportunityKey(opp.ID), oppData, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}

	c.logger.Debug().
		Str("league", string(set.League)).
		Int("count", len(set.Opportunities)).
		Dur("ttl", c.ttl).
		Msg("cached league opportunities")

	return nil
}

// GetLeague retrieves the cached opportunity set of a league
func (c *RedisCache) GetLeague(ctx context.Context, league models.League) (*models.LeagueOpportunities, error) {
	data, err := c.client.Get(ctx, leagueKey(league)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var set models.LeagueOpportunities
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to unmarshal league opportunities: %w", err)
	}
	return &set, nil
}

// Get retrieves one cached opportunity by id
func (c *RedisCache) Get(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	data, err := c.client.Get(ctx, opportunityKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get from Redis: %w", err)
	}

	var opp models.Opportunity
	if err := json.Unmarshal(data, &opp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal opportunity: %w", err)
	}
	return &opp, nil
}

// Leagues lists the leagues that currently have a cached set
func (c *RedisCache) Leagues(ctx context.Context) ([]models.League, error) {
	var cursor uint64
	var leagues []models.League

	for {
		keys, next, err := c.client.Scan(ctx, cursor, leagueKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}
		for _, key := range keys {
			leagues = append(leagues, models.League(strings.TrimPrefix(key, leagueKeyPrefix)))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return leagues, nil
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
