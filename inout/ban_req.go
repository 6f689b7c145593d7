package inout

// CreateBanReq 新建封禁请求（管理端）
type CreateBanReq struct {
	IP              string `json:"ip" binding:"required,max=64"`
	Reason          string `json:"reason" binding:"required,max=500"`
	Scope           string `json:"scope" binding:"required,oneof=post_confession post_reply both entire_site"`
	DurationSeconds int64  `json:"duration_seconds" binding:"min=0"` // 0=永久
}

// BanListReq 封禁列表请求
type BanListReq struct {
	Page       int  `form:"page" binding:"required,min=1"`
	PageSize   int  `form:"page_size" binding:"required,min=1,max=100"`
	OnlyActive bool `form:"only_active"`
}

// BanStatusResp 自助封禁状态查询响应
type BanStatusResp struct {
	IsBanned  bool   `json:"is_banned"`
	Reason    string `json:"reason,omitempty"`
	Scope     string `json:"scope,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"` // RFC3339；永久封禁为 "permanent"
}
