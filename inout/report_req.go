package inout

// FileReportReq 提交举报请求
type FileReportReq struct {
	ContentID   uint   `json:"content_id" binding:"required"`
	ContentType string `json:"content_type" binding:"required,oneof=confession reply"`
	ParentID    *uint  `json:"parent_id"`                                 // content_type=reply 时必填
	Reason      string `json:"reason" binding:"required"`                 // 原因枚举由服务层校验
	OtherText   string `json:"other_text" binding:"omitempty,max=500"`    // reason=other 时的补充说明
}

// ResolveReportReq 审核员处理举报请求
type ResolveReportReq struct {
	Action string         `json:"action" binding:"required,oneof=dismiss remove"`
	Notes  string         `json:"notes" binding:"omitempty,max=500"`
	Ban    *ReportBanOpts `json:"ban"` // 可选的升级封禁
}

// ReportBanOpts 处理举报时附带的封禁参数
type ReportBanOpts struct {
	Scope           string `json:"scope" binding:"required,oneof=post_confession post_reply both entire_site"`
	DurationSeconds int64  `json:"duration_seconds" binding:"min=0"` // 0=永久
	Reason          string `json:"reason" binding:"required,max=500"`
}

// ReportListReq 举报列表请求
type ReportListReq struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending resolved dismissed"`
	Page     int    `form:"page" binding:"required,min=1"`
	PageSize int    `form:"page_size" binding:"required,min=1,max=100"`
}
