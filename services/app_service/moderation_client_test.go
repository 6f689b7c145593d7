package app_service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func TestClassifySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		verdict := `{"isNSFW": true, "issues": [{"type": "hate_speech", "severity": "high", "text": "xx"}], "categories": {"hate_speech": 0.9}}`
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatResponse(verdict)))
	}))
	defer server.Close()

	client := NewModerationClient(server.URL, "test-key", "gpt-4o-mini", 5*time.Second)
	result, err := client.Classify(context.Background(), "测试文本", "confession")

	require.NoError(t, err)
	assert.True(t, result.IsNSFW)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "hate_speech", result.Issues[0].Type)
	assert.Equal(t, 0.9, result.Categories["hate_speech"])
}

func TestClassifyCodeFencedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verdict := "```json\n{\"isNSFW\": false, \"issues\": [], \"categories\": {}}\n```"
		w.Write([]byte(chatResponse(verdict)))
	}))
	defer server.Close()

	client := NewModerationClient(server.URL, "", "gpt-4o-mini", 5*time.Second)
	result, err := client.Classify(context.Background(), "干净文本", "reply")

	require.NoError(t, err)
	assert.False(t, result.IsNSFW)
	assert.Empty(t, result.Issues)
}

func TestClassifyUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewModerationClient(server.URL, "", "gpt-4o-mini", 5*time.Second)
	_, err := client.Classify(context.Background(), "文本", "confession")

	assert.ErrorIs(t, err, ErrModerationUnavailable)
}

func TestClassifyTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewModerationClient(server.URL, "", "gpt-4o-mini", 50*time.Millisecond)
	_, err := client.Classify(context.Background(), "文本", "confession")

	assert.ErrorIs(t, err, ErrModerationUnavailable)
}

func TestClassifyUnparseableVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatResponse("抱歉，我无法处理这个请求。")))
	}))
	defer server.Close()

	client := NewModerationClient(server.URL, "", "gpt-4o-mini", 5*time.Second)
	_, err := client.Classify(context.Background(), "文本", "confession")

	require.Error(t, err)
	// 解析失败归入"审核不可用"
	assert.ErrorIs(t, err, ErrModerationUnavailable)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestClassifyEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewModerationClient(server.URL, "", "gpt-4o-mini", 5*time.Second)
	_, err := client.Classify(context.Background(), "文本", "confession")

	assert.ErrorIs(t, err, ErrModerationUnavailable)
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"无围栏", `{"a":1}`, `{"a":1}`},
		{"json围栏", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"裸围栏", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"前后空白", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripCodeFence(tc.in))
		})
	}
}
