package inout

// CreateConfessionReq 发布表白帖请求
type CreateConfessionReq struct {
	SubmissionID string `json:"submission_id" binding:"required,uuid"`      // 客户端生成的提交ID，重试去重用
	Content      string `json:"content" binding:"required,max=2000"`        // 正文
}

// CreateReplyReq 发布回复请求
type CreateReplyReq struct {
	SubmissionID string `json:"submission_id" binding:"required,uuid"`
	Content      string `json:"content" binding:"required,max=1000"`
}

// ConfessionListReq 帖子列表请求
type ConfessionListReq struct {
	Page     int  `form:"page" binding:"required,min=1"`
	PageSize int  `form:"page_size" binding:"required,min=1,max=50"`
	ShowNSFW bool `form:"show_nsfw"` // 客户端NSFW开关，默认隐藏
}

// ReplyListReq 回复列表请求
type ReplyListReq struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReactionReq 表情回应请求
type ReactionReq struct {
	Emoji string `json:"emoji" binding:"required,max=16"`
}

// ClassifyReq 直接调用审核的请求
type ClassifyReq struct {
	Text        string `json:"text"`
	ContentType string `json:"contentType"`
}
