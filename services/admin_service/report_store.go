package admin_service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"whisper-wall/db"
	"whisper-wall/model/admin_model"
	"whisper-wall/model/app_model"
)

// ReportStore 举报持久化接口。状态迁移的原子性由实现保证：
// ClaimResolution必须是条件更新，pending以外的状态抢不到
type ReportStore interface {
	CreateReport(ctx context.Context, report *admin_model.Report) error
	FindReport(ctx context.Context, id uint) (*admin_model.Report, error)
	// ClaimResolution 仅当举报仍为pending时迁移到终态，返回是否抢到
	ClaimResolution(ctx context.Context, id uint, status admin_model.ReportStatus, action, notes, reviewerID string, resolvedAt time.Time) (bool, error)
	LinkBanRecord(ctx context.Context, reportID, banRecordID uint) error
	ListReports(ctx context.Context, status admin_model.ReportStatus, page, pageSize int) ([]admin_model.Report, int64, error)
	ContentIP(ctx context.Context, contentType admin_model.ReportContentType, contentID uint) (string, error)
	FindContent(ctx context.Context, contentType admin_model.ReportContentType, contentID uint) (interface{}, error)
	DeleteConfession(ctx context.Context, id uint) error
	DeleteReply(ctx context.Context, id uint) error
	CountReplies(ctx context.Context, confessionID uint) (int64, error)
	SetReplyCount(ctx context.Context, confessionID uint, count int64) error
}

// GormReportStore 生产环境的举报存储
type GormReportStore struct{}

func (s *GormReportStore) CreateReport(ctx context.Context, report *admin_model.Report) error {
	return db.Dao.WithContext(ctx).Create(report).Error
}

func (s *GormReportStore) FindReport(ctx context.Context, id uint) (*admin_model.Report, error) {
	var report admin_model.Report
	if err := db.Dao.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *GormReportStore) ClaimResolution(ctx context.Context, id uint, status admin_model.ReportStatus, action, notes, reviewerID string, resolvedAt time.Time) (bool, error) {
	result := db.Dao.WithContext(ctx).
		Model(&admin_model.Report{}).
		Where("id = ? AND status = ?", id, admin_model.ReportPending).
		Updates(map[string]interface{}{
			"status":           status,
			"moderator_action": action,
			"notes":            notes,
			"resolved_by":      reviewerID,
			"resolved_at":      &resolvedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormReportStore) LinkBanRecord(ctx context.Context, reportID, banRecordID uint) error {
	return db.Dao.WithContext(ctx).
		Model(&admin_model.Report{}).
		Where("id = ?", reportID).
		Update("ban_record_id", banRecordID).Error
}

// ListReports 分页查询，高优先级在前
func (s *GormReportStore) ListReports(ctx context.Context, status admin_model.ReportStatus, page, pageSize int) ([]admin_model.Report, int64, error) {
	query := db.Dao.WithContext(ctx).Model(&admin_model.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []admin_model.Report
	offset := (page - 1) * pageSize
	if err := query.Order("priority = 'high' DESC, created_at DESC").
		Offset(offset).Limit(pageSize).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (s *GormReportStore) ContentIP(ctx context.Context, contentType admin_model.ReportContentType, contentID uint) (string, error) {
	var ip string
	var err error
	switch contentType {
	case admin_model.ContentConfession:
		err = db.Dao.WithContext(ctx).Model(&app_model.Confession{}).
			Where("id = ?", contentID).Pluck("author_ip", &ip).Error
	case admin_model.ContentReply:
		err = db.Dao.WithContext(ctx).Model(&app_model.Reply{}).
			Where("id = ?", contentID).Pluck("author_ip", &ip).Error
	}
	return ip, err
}

// FindContent 查询被举报内容本体，不存在时返回nil不报错
func (s *GormReportStore) FindContent(ctx context.Context, contentType admin_model.ReportContentType, contentID uint) (interface{}, error) {
	switch contentType {
	case admin_model.ContentConfession:
		var confession app_model.Confession
		err := db.Dao.WithContext(ctx).First(&confession, contentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return confession, nil
	case admin_model.ContentReply:
		var reply app_model.Reply
		err := db.Dao.WithContext(ctx).First(&reply, contentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return reply, nil
	}
	return nil, nil
}

func (s *GormReportStore) DeleteConfession(ctx context.Context, id uint) error {
	return db.Dao.WithContext(ctx).Delete(&app_model.Confession{}, id).Error
}

func (s *GormReportStore) DeleteReply(ctx context.Context, id uint) error {
	return db.Dao.WithContext(ctx).Delete(&app_model.Reply{}, id).Error
}

func (s *GormReportStore) CountReplies(ctx context.Context, confessionID uint) (int64, error) {
	var count int64
	err := db.Dao.WithContext(ctx).Model(&app_model.Reply{}).
		Where("confession_id = ?", confessionID).
		Count(&count).Error
	return count, err
}

func (s *GormReportStore) SetReplyCount(ctx context.Context, confessionID uint, count int64) error {
	return db.Dao.WithContext(ctx).
		Model(&app_model.Confession{}).
		Where("id = ?", confessionID).
		Update("reply_count", count).Error
}
