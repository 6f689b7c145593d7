package app_model

import (
	"time"
)

// Confession 匿名表白/吐槽帖，核心内容单元
type Confession struct {
	ID           uint    `json:"id" gorm:"primarykey"`
	SubmissionID string  `json:"submission_id" gorm:"size:64;uniqueIndex;not null"` // 客户端生成的提交ID，用于去重
	ClientToken  string  `json:"-" gorm:"size:64;index;not null"`                   // 匿名客户端令牌
	AuthorIP     string  `json:"-" gorm:"size:64;index"`                            // 归一化后的提交者IP，只写一次，仅审核员可见
	Content      string  `json:"content" gorm:"type:text;not null"`                 // 正文
	ReplyCount   int64   `json:"reply_count" gorm:"default:0"`                      // 回复数，按真实子记录数重算

	// 审核元数据：发布后由后台任务回填
	Moderated        bool           `json:"moderated" gorm:"default:false"`
	IsNSFW           bool           `json:"is_nsfw" gorm:"default:false"`
	ModerationIssues IssueList      `json:"moderation_issues" gorm:"type:json"`
	CategoryScores   CategoryScores `json:"-" gorm:"type:json"`
	ModeratedAt      *time.Time     `json:"moderated_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Confession) TableName() string {
	return "confessions"
}

// Reply 表白帖下的楼中楼回复
type Reply struct {
	ID           uint   `json:"id" gorm:"primarykey"`
	ConfessionID uint   `json:"confession_id" gorm:"index;not null"`
	SubmissionID string `json:"submission_id" gorm:"size:64;uniqueIndex;not null"`
	ClientToken  string `json:"-" gorm:"size:64;index;not null"`
	AuthorIP     string `json:"-" gorm:"size:64;index"`
	Content      string `json:"content" gorm:"type:text;not null"`

	Moderated        bool           `json:"moderated" gorm:"default:false"`
	IsNSFW           bool           `json:"is_nsfw" gorm:"default:false"`
	ModerationIssues IssueList      `json:"moderation_issues" gorm:"type:json"`
	CategoryScores   CategoryScores `json:"-" gorm:"type:json"`
	ModeratedAt      *time.Time     `json:"moderated_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Reply) TableName() string {
	return "confession_replies"
}
