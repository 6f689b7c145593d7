package app_service

import (
	"strings"
	"sync"

	"whisper-wall/db"
	"whisper-wall/model/app_model"
)

var (
	sensitiveWordsCache []string
	cacheMutex          sync.RWMutex
	cacheInitialized    bool
)

// initSensitiveWordsCache 初始化敏感词缓存
func initSensitiveWordsCache() error {
	cacheMutex.RLock()
	if cacheInitialized {
		cacheMutex.RUnlock()
		return nil
	}
	cacheMutex.RUnlock()

	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if cacheInitialized {
		return nil
	}

	var words []app_model.SensitiveWord
	if err := db.Dao.Where("is_enabled = ?", true).Find(&words).Error; err != nil {
		return err
	}

	sensitiveWordsCache = make([]string, len(words))
	for i, word := range words {
		sensitiveWordsCache[i] = word.Word
	}

	cacheInitialized = true
	return nil
}

// RefreshSensitiveWordsCache 刷新敏感词缓存（管理端修改词表后调用）
func RefreshSensitiveWordsCache() error {
	cacheMutex.Lock()
	cacheInitialized = false
	cacheMutex.Unlock()
	return initSensitiveWordsCache()
}

// ContentFilter 敏感词过滤器。
// 这是审核的本地快速通道：不依赖外部分类模型，命中就先标NSFW。
type ContentFilter struct {
	// Words 非空时只用这份词表（测试注入用），为空走数据库缓存
	Words []string
}

// FilterResult 过滤结果
type FilterResult struct {
	HasSensitiveWords bool
	MatchedWords      []string
	RejectReason      string
}

// Check 检查一段文本是否命中敏感词
func (cf *ContentFilter) Check(content string) (*FilterResult, error) {
	words := cf.Words
	if words == nil {
		if err := initSensitiveWordsCache(); err != nil {
			return nil, err
		}
		cacheMutex.RLock()
		words = sensitiveWordsCache
		defer cacheMutex.RUnlock()
	}

	result := &FilterResult{
		HasSensitiveWords: false,
		MatchedWords:      make([]string, 0),
	}

	lowered := strings.ToLower(content)
	for _, word := range words {
		if word == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(word)) {
			result.HasSensitiveWords = true
			result.MatchedWords = append(result.MatchedWords, word)
		}
	}

	if result.HasSensitiveWords {
		result.RejectReason = "内容包含敏感词：" + strings.Join(result.MatchedWords, "、")
	}

	return result, nil
}
