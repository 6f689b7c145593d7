package app_model

import "time"

// SensitiveWord 本地敏感词，命中的投稿直接预标NSFW，不等外部审核
type SensitiveWord struct {
	ID   uint   `json:"id" gorm:"primarykey"`
	Word string `json:"word" gorm:"size:100;not null;uniqueIndex"`
	// Level 严重程度：1一般 2中等 3严重，目前只影响后台展示排序
	Level     int       `json:"level" gorm:"type:tinyint;default:1"`
	IsEnabled bool      `json:"is_enabled" gorm:"default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SensitiveWord) TableName() string {
	return "sensitive_words"
}
