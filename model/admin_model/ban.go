package admin_model

import "time"

// BanScope 封禁范围
type BanScope string

const (
	ScopePostConfession BanScope = "post_confession" // 禁止发帖
	ScopePostReply      BanScope = "post_reply"      // 禁止回复
	ScopeBoth           BanScope = "both"            // 禁止发帖和回复
	ScopeEntireSite     BanScope = "entire_site"     // 全站封禁
)

// BanAction 被检查的动作类型
type BanAction string

const (
	ActionPostConfession BanAction = "post_confession"
	ActionPostReply      BanAction = "post_reply"
	ActionSiteAccess     BanAction = "site_access"
)

// PermanentExpiry 永久封禁统一存成的远期时间点，读路径只做一次时间比较
var PermanentExpiry = time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC)

// BanRecord IP封禁记录，软删除（IsActive=false）保留审计痕迹
type BanRecord struct {
	ID         uint       `json:"id" gorm:"primarykey"`
	IP         string     `json:"ip" gorm:"size:64;index;not null"` // 归一化后的IP
	Reason     string     `json:"reason" gorm:"size:500;not null"`  // 封禁原因
	Scope      BanScope   `json:"scope" gorm:"size:32;not null"`    // 封禁范围
	IsActive   bool       `json:"is_active" gorm:"default:true"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null;index"` // 永久封禁存 PermanentExpiry
	UnbannedAt *time.Time `json:"unbanned_at"`                      // 手动解封时间
	CreatedBy  string     `json:"created_by" gorm:"size:64"`        // 操作审核员
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (BanRecord) TableName() string {
	return "ban_records"
}

// IsPermanent 是否为永久封禁
func (b *BanRecord) IsPermanent() bool {
	return !b.ExpiresAt.Before(PermanentExpiry)
}
