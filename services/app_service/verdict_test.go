package app_service

import (
	"encoding/json"
	"testing"

	"whisper-wall/model/app_model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVerdictNilInput(t *testing.T) {
	result := NormalizeVerdict(nil)

	require.NotNil(t, result)
	assert.False(t, result.IsNSFW)
	assert.Empty(t, result.Issues)
	// 固定类别全部存在且为0
	assert.Len(t, result.Categories, len(app_model.ModerationCategories))
	for _, name := range app_model.ModerationCategories {
		assert.Equal(t, 0.0, result.Categories[name])
	}
}

func TestNormalizeVerdictMalformedInputNeverPanics(t *testing.T) {
	inputs := []map[string]interface{}{
		{},
		{"isNSFW": "yes"},                      // 非bool
		{"issues": "not-a-list"},               // 非数组
		{"issues": []interface{}{42, "str"}},   // 元素不是对象
		{"categories": []interface{}{1, 2, 3}}, // 非对象
		{"categories": map[string]interface{}{"hate_speech": "high"}}, // 评分不是数值
		{"issues": []interface{}{map[string]interface{}{"type": 7, "severity": 3.14, "text": nil}}},
	}

	for _, raw := range inputs {
		result := NormalizeVerdict(raw)
		require.NotNil(t, result)
		assert.Len(t, result.Categories, len(app_model.ModerationCategories))
	}
}

func TestNormalizeVerdictUpstreamNSFWPassthrough(t *testing.T) {
	result := NormalizeVerdict(map[string]interface{}{
		"isNSFW": true,
	})
	assert.True(t, result.IsNSFW, "上游断言NSFW时无条件采信")
}

func TestNormalizeVerdictThresholdInclusive(t *testing.T) {
	issue := []interface{}{
		map[string]interface{}{"type": "hate", "severity": "high", "text": "x"},
	}

	// 0.6 恰好命中阈值（含）
	result := NormalizeVerdict(map[string]interface{}{
		"isNSFW":     false,
		"issues":     issue,
		"categories": map[string]interface{}{"hate_speech": 0.6},
	})
	assert.True(t, result.IsNSFW)

	// 0.599 不命中
	result = NormalizeVerdict(map[string]interface{}{
		"isNSFW":     false,
		"issues":     issue,
		"categories": map[string]interface{}{"hate_speech": 0.599},
	})
	assert.False(t, result.IsNSFW)
}

func TestNormalizeVerdictHighScoreWithoutIssuesIsClean(t *testing.T) {
	// 评分高但没有违规点：两个条件都要满足才算NSFW
	result := NormalizeVerdict(map[string]interface{}{
		"isNSFW":     false,
		"categories": map[string]interface{}{"violence": 0.95},
	})
	assert.False(t, result.IsNSFW)
}

func TestNormalizeVerdictScoreClamping(t *testing.T) {
	result := NormalizeVerdict(map[string]interface{}{
		"categories": map[string]interface{}{
			"spam":     1.7,
			"violence": -0.3,
		},
	})
	assert.Equal(t, 1.0, result.Categories["spam"])
	assert.Equal(t, 0.0, result.Categories["violence"])
}

func TestNormalizeVerdictSeverityCoercion(t *testing.T) {
	result := NormalizeVerdict(map[string]interface{}{
		"issues": []interface{}{
			map[string]interface{}{"type": "hate", "severity": "HIGH", "text": "a"},
			map[string]interface{}{"type": "spam", "severity": "whatever", "text": "b"},
			map[string]interface{}{"type": "", "severity": 12, "text": "c"},
		},
	})

	require.Len(t, result.Issues, 3)
	assert.Equal(t, app_model.SeverityHigh, result.Issues[0].Severity)
	assert.Equal(t, app_model.SeverityLow, result.Issues[1].Severity)
	assert.Equal(t, app_model.SeverityLow, result.Issues[2].Severity)
	assert.Equal(t, "other", result.Issues[2].Type)
}

func TestNormalizeVerdictIdempotentShape(t *testing.T) {
	// 规范化结果经过JSON往返后再归一化，结论不变
	first := NormalizeVerdict(map[string]interface{}{
		"isNSFW": false,
		"issues": []interface{}{
			map[string]interface{}{"type": "harassment", "severity": "medium", "text": "x"},
		},
		"categories": map[string]interface{}{"harassment": 0.8},
	})
	require.True(t, first.IsNSFW)

	data, err := json.Marshal(map[string]interface{}{
		"isNSFW":     first.IsNSFW,
		"categories": first.Categories,
	})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	second := NormalizeVerdict(raw)
	assert.True(t, second.IsNSFW)
}
