package app_service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 键格式改了会丢掉线上已有的计数和"我的回应"状态，固定在这里

func TestReactionKeyFormats(t *testing.T) {
	assert.Equal(t, "reaction:confession:42", reactionCountKey(42))
	assert.Equal(t, "reaction:mine:42:tok-abc", reactionMineKey(42, "tok-abc"))
}

func TestReactionMineKeyHasTTL(t *testing.T) {
	// mine键必须过期，否则键空间随帖子数×客户端数无限增长
	assert.Positive(t, reactionMineTTL)
}
