package admin_model

import "time"

// ReportReason 举报原因
type ReportReason string

const (
	ReasonInappropriate ReportReason = "inappropriate"
	ReasonHarassment    ReportReason = "harassment"
	ReasonSexual        ReportReason = "sexual"
	ReasonThreat        ReportReason = "threat"
	ReasonPersonal      ReportReason = "personal"
	ReasonSpam          ReportReason = "spam"
	ReasonOther         ReportReason = "other"
)

// ValidReportReasons 可接受的举报原因集合
var ValidReportReasons = map[ReportReason]bool{
	ReasonInappropriate: true,
	ReasonHarassment:    true,
	ReasonSexual:        true,
	ReasonThreat:        true,
	ReasonPersonal:      true,
	ReasonSpam:          true,
	ReasonOther:         true,
}

// ReportStatus 举报状态
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// ReportPriority 举报优先级，威胁类自动提级
type ReportPriority string

const (
	PriorityNormal ReportPriority = "normal"
	PriorityHigh   ReportPriority = "high"
)

// ReportContentType 被举报内容类型
type ReportContentType string

const (
	ContentConfession ReportContentType = "confession"
	ContentReply      ReportContentType = "reply"
)

// Report 用户对某条内容的举报
type Report struct {
	ID          uint              `json:"id" gorm:"primarykey"`
	ContentID   uint              `json:"content_id" gorm:"index;not null"`
	ContentType ReportContentType `json:"content_type" gorm:"size:16;not null"`
	ParentID    *uint             `json:"parent_id"`                       // 回复所属帖子ID，content_type=reply 时必填
	Reason      ReportReason      `json:"reason" gorm:"size:32;not null"`  // 举报原因
	OtherText   string            `json:"other_text" gorm:"size:500"`      // reason=other 时的补充说明
	Status      ReportStatus      `json:"status" gorm:"size:16;default:pending;index"`
	Priority    ReportPriority    `json:"priority" gorm:"size:16;default:normal"`

	ReporterToken string `json:"-" gorm:"size:64"`          // 举报者客户端令牌
	ContentIP     string `json:"content_ip" gorm:"size:64"` // 被举报内容提交时记录的IP，仅审核员可见

	ModeratorAction string     `json:"moderator_action" gorm:"size:32"` // dismiss / remove
	Notes           string     `json:"notes" gorm:"size:500"`
	BanRecordID     *uint      `json:"ban_record_id"` // 升级封禁时关联的封禁记录
	ResolvedBy      string     `json:"resolved_by" gorm:"size:64"`
	ResolvedAt      *time.Time `json:"resolved_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Report) TableName() string {
	return "reports"
}
