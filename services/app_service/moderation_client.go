package app_service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"whisper-wall/model/app_model"
	"whisper-wall/pkg/monitoring"
)

// ErrModerationUnavailable 审核服务不可用（超时/非2xx/响应不可解析）。
// 调用方必须按"审核暂不可用"处理：既不当作内容干净，也不当作违规。
// 这是为可用性做的有意的fail-open取舍，人工举报通道兜底。
var ErrModerationUnavailable = errors.New("moderation service unavailable")

// ParseError 模型返回了响应但无法解析成约定的JSON结构
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("moderation response parse failed: %v", e.Err)
}

// Unwrap 解析失败也归入"审核不可用"
func (e *ParseError) Unwrap() error {
	return ErrModerationUnavailable
}

// systemPrompt 固定的审核指令，约束模型只输出约定形状的JSON
const systemPrompt = `你是一个内容审核系统。对用户提交的文本做违规检测，只输出JSON，不要输出任何其他内容。输出格式：
{"isNSFW": bool, "issues": [{"type": string, "severity": "low"|"medium"|"high", "text": string}], "categories": {"hate_speech": 0-1, "harassment": 0-1, "bullying": 0-1, "self_harm": 0-1, "sexual_content": 0-1, "violence": 0-1, "profanity": 0-1, "personal_attack": 0-1, "personal_data": 0-1, "spam": 0-1, "illegal": 0-1, "other": 0-1}}
issues 只列出确实存在的违规点，没有违规时为空数组。`

// ModerationClient 文本审核客户端，封装对托管分类模型的调用。
// 单次请求、有界超时、不自动重试：上游慢不能拖慢发布路径。
type ModerationClient struct {
	APIURL     string
	APIKey     string
	Model      string
	httpClient *http.Client
}

// NewModerationClient 创建审核客户端
func NewModerationClient(apiURL, apiKey, model string, timeout time.Duration) *ModerationClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ModerationClient{
		APIURL: apiURL,
		APIKey: apiKey,
		Model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// chatCompletionResponse 上游返回结构（OpenAI兼容）
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify 对一段文本做违规分类，返回规范化后的审核结论。
// 任何可用性问题都包装成 ErrModerationUnavailable 返回。
func (m *ModerationClient) Classify(ctx context.Context, text, contentType string) (*app_model.ModerationResult, error) {
	start := time.Now()
	result, err := m.classify(ctx, text, contentType)
	monitoring.RecordModerationRequest(time.Since(start), err == nil)
	return result, err
}

func (m *ModerationClient) classify(ctx context.Context, text, contentType string) (*app_model.ModerationResult, error) {
	if contentType == "" {
		contentType = "confession"
	}

	body := map[string]interface{}{
		"model": m.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": fmt.Sprintf("内容类型：%s\n待审核文本：\n%s", contentType, text)},
		},
		"temperature":     0,
		"response_format": map[string]string{"type": "json_object"},
	}

	jsonStr, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModerationUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", m.APIURL, bytes.NewBuffer(jsonStr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModerationUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if m.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+m.APIKey)
	}

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("[审核] 请求失败: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrModerationUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModerationUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[审核] 上游返回非2xx状态: %d", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrModerationUnavailable, resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, &ParseError{Raw: string(respBody), Err: err}
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, &ParseError{Raw: string(respBody), Err: errors.New("响应中没有文本内容")}
	}

	raw, err := parseVerdictJSON(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return NormalizeVerdict(raw), nil
}

// parseVerdictJSON 解析模型输出的JSON，兼容代码围栏包裹的情况
func parseVerdictJSON(content string) (map[string]interface{}, error) {
	trimmed := stripCodeFence(content)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, &ParseError{Raw: content, Err: err}
	}
	return raw, nil
}

// stripCodeFence 去掉模型常见的 ```json ... ``` 包裹
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// 第一行可能是语言标记，如 "json"
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "json" || firstLine == "" {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
