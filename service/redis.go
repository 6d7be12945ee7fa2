package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jameshpark/meowkitty/config"
	"github.com/jameshpark/meowkitty/model"
	"github.com/jameshpark/meowkitty/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisService 按视频MD5缓存运行摘要
type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func summaryKey(md5 string) string {
	return "run:" + md5
}

// GetRunSummary 获取该视频上一次的运行摘要，未命中时返回 nil, nil
func (s *RedisService) GetRunSummary(ctx context.Context, md5 string) (*model.RunSummary, error) {
	data, err := s.client.Get(ctx, summaryKey(md5)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var summary model.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		utils.Logger.Error("failed to unmarshal run summary",
			zap.String("md5", md5), zap.Error(err))
		return nil, err
	}

	return &summary, nil
}

// SetRunSummary 保存运行摘要
func (s *RedisService) SetRunSummary(ctx context.Context, md5 string, summary *model.RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, summaryKey(md5), data, s.ttl).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
