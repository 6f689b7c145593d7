package admin_service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"whisper-wall/db"
	"whisper-wall/model/admin_model"
)

// ErrInvalidIdentity 创建封禁时IP格式非法
var ErrInvalidIdentity = errors.New("invalid network identity")

// ErrBanLookupFailure 封禁查询本身失败（存储不可达）。
// 管道按配置fail-open放行，但必须记录降级事件。
var ErrBanLookupFailure = errors.New("ban lookup failure")

// BanStatus 封禁查询结果
type BanStatus struct {
	Banned bool                    `json:"banned"`
	Record *admin_model.BanRecord  `json:"record,omitempty"`
}

// BanRegistryService IP封禁登记处
type BanRegistryService struct{}

var BanRegistry = &BanRegistryService{}

// NormalizeIdentity 归一化网络身份：去掉IPv4映射IPv6前缀，转小写。
// 写入（封禁）和读取（检查）必须走同一个归一化，否则查询会静默失配。
// 幂等：normalize(normalize(x)) == normalize(x)。
func NormalizeIdentity(raw string) string {
	identity := strings.ToLower(strings.TrimSpace(raw))
	identity = strings.TrimPrefix(identity, "::ffff:")
	return identity
}

// scopeCovers 封禁范围是否覆盖被检查的动作
func scopeCovers(scope admin_model.BanScope, action admin_model.BanAction) bool {
	switch scope {
	case admin_model.ScopeEntireSite:
		return true
	case admin_model.ScopeBoth:
		return action == admin_model.ActionPostConfession || action == admin_model.ActionPostReply
	case admin_model.ScopePostConfession:
		return action == admin_model.ActionPostConfession
	case admin_model.ScopePostReply:
		return action == admin_model.ActionPostReply
	default:
		return false
	}
}

// recordMatches 单条记录是否命中：启用、未过期、范围覆盖
func recordMatches(rec *admin_model.BanRecord, action admin_model.BanAction, now time.Time) bool {
	if !rec.IsActive {
		return false
	}
	if !rec.ExpiresAt.After(now) {
		return false
	}
	return scopeCovers(rec.Scope, action)
}

// pickMostRestrictive 多条命中时取过期最晚的一条，给用户展示最严的封禁信息
func pickMostRestrictive(records []*admin_model.BanRecord) *admin_model.BanRecord {
	var picked *admin_model.BanRecord
	for _, rec := range records {
		if picked == nil || rec.ExpiresAt.After(picked.ExpiresAt) {
			picked = rec
		}
	}
	return picked
}

// IsBanned 查询某个身份当前是否被禁止执行某动作。
// 同一身份可能同时存在多条不同范围的记录，命中状态是所有有效记录的并集。
func (s *BanRegistryService) IsBanned(ctx context.Context, identity string, action admin_model.BanAction) (*BanStatus, error) {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return &BanStatus{Banned: false}, nil
	}

	var records []*admin_model.BanRecord
	err := db.Dao.WithContext(ctx).
		Where("ip = ? AND is_active = ?", identity, true).
		Find(&records).Error
	if err != nil {
		log.Printf("[封禁] 查询失败: ip=%s err=%v", identity, err)
		return nil, fmt.Errorf("%w: %v", ErrBanLookupFailure, err)
	}

	now := time.Now()
	var matched []*admin_model.BanRecord
	for _, rec := range records {
		if recordMatches(rec, action, now) {
			matched = append(matched, rec)
		}
	}
	if len(matched) == 0 {
		return &BanStatus{Banned: false}, nil
	}
	return &BanStatus{Banned: true, Record: pickMostRestrictive(matched)}, nil
}

// Create 新建封禁记录。durationSeconds为0表示永久，统一存成远期时间点。
// 非法IP在这里直接拒绝，不往库里存垃圾数据。
func (s *BanRegistryService) Create(ctx context.Context, identity, reason string, scope admin_model.BanScope, durationSeconds int64, createdBy string) (*admin_model.BanRecord, error) {
	identity = NormalizeIdentity(identity)
	if net.ParseIP(identity) == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentity, identity)
	}

	switch scope {
	case admin_model.ScopePostConfession, admin_model.ScopePostReply, admin_model.ScopeBoth, admin_model.ScopeEntireSite:
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", ErrInvalidIdentity, scope)
	}

	expiresAt := admin_model.PermanentExpiry
	if durationSeconds > 0 {
		expiresAt = time.Now().Add(time.Duration(durationSeconds) * time.Second)
	}

	record := &admin_model.BanRecord{
		IP:        identity,
		Reason:    reason,
		Scope:     scope,
		IsActive:  true,
		ExpiresAt: expiresAt,
		CreatedBy: createdBy,
	}
	if err := db.Dao.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	log.Printf("[封禁] 新建封禁: ip=%s scope=%s expires=%s by=%s", identity, scope, expiresAt.Format(time.RFC3339), createdBy)
	NotifyReviewers("ban_created", identity, "normal", "新建封禁: "+reason, 0)
	return record, nil
}

// Deactivate 手动解封：置IsActive=false并记录解封时间，不做物理删除
func (s *BanRegistryService) Deactivate(ctx context.Context, recordID uint) error {
	now := time.Now()
	result := db.Dao.WithContext(ctx).
		Model(&admin_model.BanRecord{}).
		Where("id = ? AND is_active = ?", recordID, true).
		Updates(map[string]interface{}{
			"is_active":   false,
			"unbanned_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("封禁记录不存在或已解封")
	}
	return nil
}

// List 分页查询封禁记录（管理端）
func (s *BanRegistryService) List(ctx context.Context, page, pageSize int, onlyActive bool) ([]admin_model.BanRecord, int64, error) {
	query := db.Dao.WithContext(ctx).Model(&admin_model.BanRecord{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []admin_model.BanRecord
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
