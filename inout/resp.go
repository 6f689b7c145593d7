package inout

import (
	"time"
)

type LoginRes struct {
	AccessToken string `json:"accessToken"`
}

// ReviewerDetailRes 审核员信息
type ReviewerDetailRes struct {
	ID         int       `json:"id"`
	Username   string    `json:"username"`
	Enable     bool      `json:"enable"`
	CreateTime time.Time `json:"createTime"`
}
