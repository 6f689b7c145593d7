package app_model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// IssueSeverity 问题严重程度
type IssueSeverity string

const (
	SeverityLow    IssueSeverity = "low"
	SeverityMedium IssueSeverity = "medium"
	SeverityHigh   IssueSeverity = "high"
)

// ModerationIssue 审核发现的单个违规点
type ModerationIssue struct {
	Type     string        `json:"type"`     // 违规类型
	Severity IssueSeverity `json:"severity"` // 严重程度：low/medium/high
	Text     string        `json:"text"`     // 违规文本片段
}

// IssueList 违规列表，存储为JSON列
type IssueList []ModerationIssue

// Value 实现 driver.Valuer 接口
func (l IssueList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(IssueList{})
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *IssueList) Scan(value interface{}) error {
	if value == nil {
		*l = IssueList{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("IssueList: 不支持的列类型")
	}
	return json.Unmarshal(b, l)
}

// CategoryScores 各违规类别的评分，存储为JSON列
type CategoryScores map[string]float64

// Value 实现 driver.Valuer 接口
func (s CategoryScores) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(CategoryScores{})
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *CategoryScores) Scan(value interface{}) error {
	if value == nil {
		*s = CategoryScores{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("CategoryScores: 不支持的列类型")
	}
	return json.Unmarshal(b, s)
}

// ModerationCategories 固定的违规类别集合
var ModerationCategories = []string{
	"hate_speech",
	"harassment",
	"bullying",
	"self_harm",
	"sexual_content",
	"violence",
	"profanity",
	"personal_attack",
	"personal_data",
	"spam",
	"illegal",
	"other",
}

// ModerationResult 一段文本的审核结论
type ModerationResult struct {
	IsNSFW     bool           `json:"is_nsfw"`    // 是否默认隐藏/模糊展示
	Issues     IssueList      `json:"issues"`     // 具体违规点
	Categories CategoryScores `json:"categories"` // 各类别评分 [0,1]
}
