package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"quiz-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// defaultTTL bounds how long a quiz whose eviction failed can still be served.
const defaultTTL = 5 * time.Minute

var ErrCacheMiss = errors.New("cache miss")

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(opts Options) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func quizKey(id uint) string {
	return "quiz:" + strconv.FormatUint(uint64(id), 10)
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) SetQuiz(ctx context.Context, quiz *models.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("cache.SetQuiz: %w", err)
	}
	return c.client.Set(ctx, quizKey(quiz.ID), data, c.ttl).Err()
}

func (c *RedisCache) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	data, err := c.client.Get(ctx, quizKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache.GetQuiz: %w", err)
	}

	var quiz models.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, fmt.Errorf("cache.GetQuiz: %w", err)
	}
	return &quiz, nil
}

func (c *RedisCache) DeleteQuiz(ctx context.Context, id uint) error {
	return c.client.Del(ctx, quizKey(id)).Err()
}
