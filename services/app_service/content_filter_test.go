package app_service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentFilterMatch(t *testing.T) {
	filter := &ContentFilter{Words: []string{"赌博", "badword"}}

	result, err := filter.Check("这是一条包含赌博信息的内容")
	require.NoError(t, err)
	assert.True(t, result.HasSensitiveWords)
	assert.Contains(t, result.MatchedWords, "赌博")
	assert.NotEmpty(t, result.RejectReason)
}

func TestContentFilterCaseInsensitive(t *testing.T) {
	filter := &ContentFilter{Words: []string{"BadWord"}}

	result, err := filter.Check("this contains a BADWORD here")
	require.NoError(t, err)
	assert.True(t, result.HasSensitiveWords)
}

func TestContentFilterNoMatch(t *testing.T) {
	filter := &ContentFilter{Words: []string{"赌博"}}

	result, err := filter.Check("今天天气不错")
	require.NoError(t, err)
	assert.False(t, result.HasSensitiveWords)
	assert.Empty(t, result.MatchedWords)
	assert.Empty(t, result.RejectReason)
}

func TestContentFilterEmptyWordSkipped(t *testing.T) {
	filter := &ContentFilter{Words: []string{""}}

	result, err := filter.Check("任意内容")
	require.NoError(t, err)
	assert.False(t, result.HasSensitiveWords)
}
