package app_service

import (
	"strings"

	"whisper-wall/model/app_model"
)

// NSFWScoreThreshold 类别评分达到该值（含）且存在违规点时判定为NSFW
const NSFWScoreThreshold = 0.6

// NormalizeVerdict 把分类模型返回的松散JSON收敛成规范的审核结论。
// 输入可以缺字段、类型错乱甚至为nil，一律降级为安全默认值，绝不panic。
// 所有宽容转换规则集中在这一个文件里，方便审计。
func NormalizeVerdict(raw map[string]interface{}) *app_model.ModerationResult {
	result := &app_model.ModerationResult{
		Issues:     app_model.IssueList{},
		Categories: app_model.CategoryScores{},
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	// 类别评分：非数值降级为0，固定类别缺失时补0
	if categories, ok := raw["categories"].(map[string]interface{}); ok {
		for name, value := range categories {
			result.Categories[name] = coerceScore(value)
		}
	}
	for _, name := range app_model.ModerationCategories {
		if _, ok := result.Categories[name]; !ok {
			result.Categories[name] = 0
		}
	}

	// 违规点：逐条宽容转换
	if issues, ok := raw["issues"].([]interface{}); ok {
		for _, item := range issues {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			result.Issues = append(result.Issues, app_model.ModerationIssue{
				Type:     coerceIssueType(entry["type"]),
				Severity: coerceSeverity(entry["severity"]),
				Text:     coerceText(entry["text"]),
			})
		}
	}

	// NSFW判定：上游断言 或 （存在违规点 且 有类别评分达到阈值）
	upstreamNSFW, _ := raw["isNSFW"].(bool)
	result.IsNSFW = upstreamNSFW || (len(result.Issues) > 0 && maxScore(result.Categories) >= NSFWScoreThreshold)

	return result
}

// coerceScore 评分转换，无法识别时取0，夹到[0,1]区间
func coerceScore(value interface{}) float64 {
	score, ok := value.(float64)
	if !ok {
		return 0
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// coerceSeverity 严重程度转换，不认识的值一律按low处理
func coerceSeverity(value interface{}) app_model.IssueSeverity {
	s, ok := value.(string)
	if !ok {
		return app_model.SeverityLow
	}
	switch app_model.IssueSeverity(strings.ToLower(strings.TrimSpace(s))) {
	case app_model.SeverityHigh:
		return app_model.SeverityHigh
	case app_model.SeverityMedium:
		return app_model.SeverityMedium
	case app_model.SeverityLow:
		return app_model.SeverityLow
	default:
		return app_model.SeverityLow
	}
}

// coerceIssueType 违规类型转换，非字符串或空值归为other
func coerceIssueType(value interface{}) string {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "other"
	}
	return s
}

func coerceText(value interface{}) string {
	s, _ := value.(string)
	return s
}

func maxScore(categories app_model.CategoryScores) float64 {
	var max float64
	for _, score := range categories {
		if score > max {
			max = score
		}
	}
	return max
}
