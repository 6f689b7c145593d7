package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestRecentAuditFindOptions(t *testing.T) {
	opts := recentAuditFindOptions(50)

	// 不排序不限量会整表捞回来，还截出最旧的N条
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(50), *opts.Limit)

	sort, ok := opts.Sort.(bson.D)
	require.True(t, ok)
	require.Len(t, sort, 1)
	assert.Equal(t, "timestamp", sort[0].Key)
	assert.Equal(t, -1, sort[0].Value)
}
