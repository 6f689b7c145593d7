package app_service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"whisper-wall/db"
	"whisper-wall/model/admin_model"
	"whisper-wall/model/app_model"
	"whisper-wall/services/admin_service"
)

// GormContentStore ContentStore的MySQL实现
type GormContentStore struct{}

func (s *GormContentStore) CreateConfession(ctx context.Context, c *app_model.Confession) error {
	return db.Dao.WithContext(ctx).Create(c).Error
}

func (s *GormContentStore) CreateReply(ctx context.Context, r *app_model.Reply) error {
	return db.Dao.WithContext(ctx).Create(r).Error
}

func (s *GormContentStore) DeleteConfession(ctx context.Context, id uint) error {
	return db.Dao.WithContext(ctx).Delete(&app_model.Confession{}, id).Error
}

func (s *GormContentStore) DeleteReply(ctx context.Context, id uint) error {
	return db.Dao.WithContext(ctx).Delete(&app_model.Reply{}, id).Error
}

func (s *GormContentStore) CountReplies(ctx context.Context, confessionID uint) (int64, error) {
	var count int64
	err := db.Dao.WithContext(ctx).
		Model(&app_model.Reply{}).
		Where("confession_id = ?", confessionID).
		Count(&count).Error
	return count, err
}

func (s *GormContentStore) SetReplyCount(ctx context.Context, confessionID uint, count int64) error {
	return db.Dao.WithContext(ctx).
		Model(&app_model.Confession{}).
		Where("id = ?", confessionID).
		Update("reply_count", count).Error
}

func (s *GormContentStore) UpdateConfessionModeration(ctx context.Context, id uint, verdict *app_model.ModerationResult) error {
	now := time.Now()
	return db.Dao.WithContext(ctx).
		Model(&app_model.Confession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"moderated":         true,
			"is_nsfw":           verdict.IsNSFW,
			"moderation_issues": verdict.Issues,
			"category_scores":   verdict.Categories,
			"moderated_at":      &now,
		}).Error
}

func (s *GormContentStore) UpdateReplyModeration(ctx context.Context, id uint, verdict *app_model.ModerationResult) error {
	now := time.Now()
	return db.Dao.WithContext(ctx).
		Model(&app_model.Reply{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"moderated":         true,
			"is_nsfw":           verdict.IsNSFW,
			"moderation_issues": verdict.Issues,
			"category_scores":   verdict.Categories,
			"moderated_at":      &now,
		}).Error
}

// HideConfession fail-closed降级隐藏。条件里带moderated=false：
// 晚到的正式审核结论优先，不被降级标记覆盖
func (s *GormContentStore) HideConfession(ctx context.Context, id uint, issue app_model.ModerationIssue) error {
	return db.Dao.WithContext(ctx).
		Model(&app_model.Confession{}).
		Where("id = ? AND moderated = ?", id, false).
		Updates(map[string]interface{}{
			"is_nsfw":           true,
			"moderation_issues": app_model.IssueList{issue},
		}).Error
}

func (s *GormContentStore) HideReply(ctx context.Context, id uint, issue app_model.ModerationIssue) error {
	return db.Dao.WithContext(ctx).
		Model(&app_model.Reply{}).
		Where("id = ? AND moderated = ?", id, false).
		Updates(map[string]interface{}{
			"is_nsfw":           true,
			"moderation_issues": app_model.IssueList{issue},
		}).Error
}

func (s *GormContentStore) FindConfessionBySubmissionID(ctx context.Context, submissionID string) (*app_model.Confession, error) {
	var confession app_model.Confession
	err := db.Dao.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&confession).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &confession, nil
}

func (s *GormContentStore) FindReplyBySubmissionID(ctx context.Context, submissionID string) (*app_model.Reply, error) {
	var reply app_model.Reply
	err := db.Dao.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&reply).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// RegistryBanChecker 把封禁登记处适配成管道的BanChecker接口
type RegistryBanChecker struct {
	Registry *admin_service.BanRegistryService
}

func (c *RegistryBanChecker) IsBanned(ctx context.Context, identity string, action admin_model.BanAction) (*BanCheckResult, error) {
	status, err := c.Registry.IsBanned(ctx, identity, action)
	if err != nil {
		return nil, err
	}
	return &BanCheckResult{Banned: status.Banned, Record: status.Record}, nil
}
