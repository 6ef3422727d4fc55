package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	boardKeyPrefix = "leaderboard:"
	scoresSuffix   = ":scores"
	reachedSuffix  = ":reached"
	sequenceKey    = "leaderboard:seq"
)

// awardScript increments a score and stamps the reach sequence atomically.
// KEYS: scores hash, reached hash, sequence counter. ARGV: identity, amount.
var awardScript = redis.NewScript(`
local existed = redis.call('HEXISTS', KEYS[1], ARGV[1])
local total = redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
if existed == 0 or tonumber(ARGV[2]) > 0 then
  local seq = redis.call('INCR', KEYS[3])
  redis.call('HSET', KEYS[2], ARGV[1], seq)
end
return total
`)

// Config holds configuration for the Redis leaderboard repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed leaderboard repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

func scoresKey(board string) string {
	return boardKeyPrefix + board + scoresSuffix
}

func reachedKey(board string) string {
	return boardKeyPrefix + board + reachedSuffix
}

// Award adds to an identity's score
func (r *redisRepository) Award(ctx context.Context, input *AwardInput) (*AwardOutput, error) {
	if err := validateAward(input); err != nil {
		return nil, err
	}

	keys := []string{scoresKey(input.Board), reachedKey(input.Board), sequenceKey}
	total, err := awardScript.Run(ctx, r.client, keys, input.Identity, input.Amount).Int()
	if err != nil {
		return nil, fmt.Errorf("failed to award score: %w", err)
	}

	return &AwardOutput{Score: total}, nil
}

// GetScore retrieves one identity's score
func (r *redisRepository) GetScore(ctx context.Context, input *GetScoreInput) (*GetScoreOutput, error) {
	if input == nil || input.Board == "" {
		return nil, ErrEmptyBoard
	}

	score, err := r.client.HGet(ctx, scoresKey(input.Board), input.Identity).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &GetScoreOutput{}, nil
		}
		return nil, fmt.Errorf("failed to get score: %w", err)
	}

	return &GetScoreOutput{Score: score, Found: true}, nil
}

// GetTop returns ranked entries
func (r *redisRepository) GetTop(ctx context.Context, input *GetTopInput) (*GetTopOutput, error) {
	if input == nil || input.Board == "" {
		return nil, ErrEmptyBoard
	}

	pipe := r.client.Pipeline()
	scoresCmd := pipe.HGetAll(ctx, scoresKey(input.Board))
	reachedCmd := pipe.HGetAll(ctx, reachedKey(input.Board))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	reached := reachedCmd.Val()
	entries := make([]*models.LeaderboardEntry, 0, len(scoresCmd.Val()))
	for identity, raw := range scoresCmd.Val() {
		score, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse score for %s: %w", identity, err)
		}
		seq, _ := strconv.ParseInt(reached[identity], 10, 64)
		entries = append(entries, &models.LeaderboardEntry{
			Identity: identity,
			Score:    score,
			Reached:  seq,
		})
	}

	return &GetTopOutput{Entries: rank(entries, input.Limit)}, nil
}

// Reset removes a board
func (r *redisRepository) Reset(ctx context.Context, input *ResetInput) error {
	if input == nil || input.Board == "" {
		return ErrEmptyBoard
	}

	if err := r.client.Del(ctx, scoresKey(input.Board), reachedKey(input.Board)).Err(); err != nil {
		return fmt.Errorf("failed to reset leaderboard: %w", err)
	}
	return nil
}
