package model

import (
	"time"
)

// User 审核员账号
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	PasswordBcrypt string    `json:"-" gorm:"column:password_bcrypt"`
	Enable         bool      `json:"enable"`
	CreateTime     time.Time `json:"createTime" gorm:"column:createTime"`
	UpdateTime     time.Time `json:"updateTime" gorm:"column:updateTime"`
}

func (User) TableName() string {
	return "reviewers"
}
