package app_service

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"whisper-wall/redis"
)

// reactionMineTTL "我的回应"键的保留时长。不带TTL的话键空间会随
// 帖子数×客户端数无限增长。过期后换表情不再回减旧计数，可接受的漂移
const reactionMineTTL = 30 * 24 * time.Hour

// ReactionService 表情回应，计数放Redis。
// "我的回应"按调用方显式传入的客户端令牌查，不依赖任何隐式全局身份。
type ReactionService struct{}

var ReactionSvc = &ReactionService{}

func reactionCountKey(confessionID uint) string {
	return fmt.Sprintf("reaction:confession:%d", confessionID)
}

func reactionMineKey(confessionID uint, clientToken string) string {
	return fmt.Sprintf("reaction:mine:%d:%s", confessionID, clientToken)
}

// SetReaction 设置回应。同一客户端换表情时先撤销旧的再记新的。
func (s *ReactionService) SetReaction(ctx context.Context, confessionID uint, clientToken, emoji string) error {
	rdb := redis.GetClient()
	mineKey := reactionMineKey(confessionID, clientToken)

	old, err := rdb.Get(ctx, mineKey).Result()
	if err != nil && err != goredis.Nil {
		return err
	}
	if old == emoji {
		return nil
	}

	pipe := rdb.TxPipeline()
	if old != "" {
		pipe.HIncrBy(ctx, reactionCountKey(confessionID), old, -1)
	}
	pipe.HIncrBy(ctx, reactionCountKey(confessionID), emoji, 1)
	pipe.Set(ctx, mineKey, emoji, reactionMineTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// RemoveReaction 撤销回应
func (s *ReactionService) RemoveReaction(ctx context.Context, confessionID uint, clientToken string) error {
	rdb := redis.GetClient()
	mineKey := reactionMineKey(confessionID, clientToken)

	old, err := rdb.Get(ctx, mineKey).Result()
	if err == goredis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := rdb.TxPipeline()
	pipe.HIncrBy(ctx, reactionCountKey(confessionID), old, -1)
	pipe.Del(ctx, mineKey)
	_, err = pipe.Exec(ctx)
	return err
}

// GetReactions 查询某帖的表情计数和当前客户端自己的回应
func (s *ReactionService) GetReactions(ctx context.Context, confessionID uint, clientToken string) (map[string]int64, string, error) {
	rdb := redis.GetClient()

	raw, err := rdb.HGetAll(ctx, reactionCountKey(confessionID)).Result()
	if err != nil {
		return nil, "", err
	}

	counts := make(map[string]int64, len(raw))
	for emoji, v := range raw {
		var n int64
		fmt.Sscanf(v, "%d", &n)
		if n > 0 {
			counts[emoji] = n
		}
	}

	mine := ""
	if clientToken != "" {
		if v, err := rdb.Get(ctx, reactionMineKey(confessionID, clientToken)).Result(); err == nil {
			mine = v
		}
	}
	return counts, mine, nil
}
