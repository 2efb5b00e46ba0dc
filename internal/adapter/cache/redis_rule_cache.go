package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

const ruleSetKeyPrefix = "fleetworks:ruleset:"

// RedisRuleCache caches rule sets by version ID in Redis. ACTIVE rule
// sets are immutable, so entries carry a TTL only to bound memory, not
// for correctness. Cache failures are logged and treated as misses so
// evaluation always falls back to the repository.
type RedisRuleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisRuleCache connects to Redis and returns a rule cache
func NewRedisRuleCache(redisURL string, ttl time.Duration, logger *logrus.Logger) (*RedisRuleCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"ttl": ttl,
	}).Info("Rule cache initialized")

	return &RedisRuleCache{client: client, ttl: ttl, logger: logger}, nil
}

// GetRules returns the cached rule set for a version, or (nil, nil) on a miss
func (c *RedisRuleCache) GetRules(ctx context.Context, versionID string) ([]*domain.Rule, error) {
	payload, err := c.client.Get(ctx, ruleSetKeyPrefix+versionID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		c.logger.WithError(err).WithField("version_id", versionID).Warn("Rule cache read failed")
		return nil, nil
	}

	var rules []*domain.Rule
	if err := json.Unmarshal(payload, &rules); err != nil {
		c.logger.WithError(err).WithField("version_id", versionID).Warn("Rule cache entry corrupt, ignoring")
		return nil, nil
	}

	return rules, nil
}

// PutRules stores a version's rule set
func (c *RedisRuleCache) PutRules(ctx context.Context, versionID string, rules []*domain.Rule) error {
	payload, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	if err := c.client.Set(ctx, ruleSetKeyPrefix+versionID, payload, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("version_id", versionID).Warn("Rule cache write failed")
		return err
	}
	return nil
}

// NoopRuleCache is used when Redis is not configured
type NoopRuleCache struct{}

// GetRules always misses
func (NoopRuleCache) GetRules(context.Context, string) ([]*domain.Rule, error) { return nil, nil }

// PutRules discards the rule set
func (NoopRuleCache) PutRules(context.Context, string, []*domain.Rule) error { return nil }

var (
	_ ports.RuleCache = (*RedisRuleCache)(nil)
	_ ports.RuleCache = NoopRuleCache{}
)
