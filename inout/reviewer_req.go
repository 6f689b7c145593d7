package inout

// AddReviewerReq 新增审核员
type AddReviewerReq struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8"`
}

// SetReviewerEnableReq 启用/禁用审核员
type SetReviewerEnableReq struct {
	Enable *bool `json:"enable" binding:"required"`
}

// ResetReviewerPasswordReq 重置审核员密码
type ResetReviewerPasswordReq struct {
	Password string `json:"password" binding:"required,min=8"`
}
