package admin_service

import (
	"testing"
	"time"

	"whisper-wall/model/admin_model"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdentity(t *testing.T) {
	// IPv4映射IPv6前缀必须剥掉，否则代理后面的同一个IP会产生两种写法
	assert.Equal(t, "1.2.3.4", NormalizeIdentity("::ffff:1.2.3.4"))
	assert.Equal(t, "1.2.3.4", NormalizeIdentity("1.2.3.4"))
	assert.Equal(t, "2001:db8::1", NormalizeIdentity("2001:DB8::1"))
	assert.Equal(t, "1.2.3.4", NormalizeIdentity("  1.2.3.4  "))
}

func TestNormalizeIdentityIdempotent(t *testing.T) {
	inputs := []string{"::ffff:1.2.3.4", "2001:DB8::1", "1.2.3.4", "  ::FFFF:5.6.7.8 "}
	for _, raw := range inputs {
		once := NormalizeIdentity(raw)
		assert.Equal(t, once, NormalizeIdentity(once), "归一化必须幂等: %q", raw)
	}
}

func TestScopeCovers(t *testing.T) {
	tests := []struct {
		scope  admin_model.BanScope
		action admin_model.BanAction
		want   bool
	}{
		{admin_model.ScopeEntireSite, admin_model.ActionPostConfession, true},
		{admin_model.ScopeEntireSite, admin_model.ActionPostReply, true},
		{admin_model.ScopeEntireSite, admin_model.ActionSiteAccess, true},
		{admin_model.ScopeBoth, admin_model.ActionPostConfession, true},
		{admin_model.ScopeBoth, admin_model.ActionPostReply, true},
		{admin_model.ScopeBoth, admin_model.ActionSiteAccess, false},
		{admin_model.ScopePostConfession, admin_model.ActionPostConfession, true},
		{admin_model.ScopePostConfession, admin_model.ActionPostReply, false},
		{admin_model.ScopePostReply, admin_model.ActionPostReply, true},
		{admin_model.ScopePostReply, admin_model.ActionPostConfession, false},
		{admin_model.BanScope("unknown"), admin_model.ActionPostConfession, false},
	}
	for _, tt := range tests {
		got := scopeCovers(tt.scope, tt.action)
		assert.Equal(t, tt.want, got, "scope=%s action=%s", tt.scope, tt.action)
	}
}

func TestRecordMatches(t *testing.T) {
	now := time.Now()

	active := &admin_model.BanRecord{
		Scope:     admin_model.ScopePostConfession,
		IsActive:  true,
		ExpiresAt: now.Add(time.Hour),
	}
	assert.True(t, recordMatches(active, admin_model.ActionPostConfession, now))

	// 已解封的记录永远不命中
	inactive := &admin_model.BanRecord{
		Scope:     admin_model.ScopePostConfession,
		IsActive:  false,
		ExpiresAt: now.Add(time.Hour),
	}
	assert.False(t, recordMatches(inactive, admin_model.ActionPostConfession, now))

	// 已过期的记录永远不命中
	expired := &admin_model.BanRecord{
		Scope:     admin_model.ScopePostConfession,
		IsActive:  true,
		ExpiresAt: now.Add(-time.Minute),
	}
	assert.False(t, recordMatches(expired, admin_model.ActionPostConfession, now))

	// 刚好到期的临界点按已过期处理
	onBoundary := &admin_model.BanRecord{
		Scope:     admin_model.ScopePostConfession,
		IsActive:  true,
		ExpiresAt: now,
	}
	assert.False(t, recordMatches(onBoundary, admin_model.ActionPostConfession, now))
}

func TestPickMostRestrictive(t *testing.T) {
	now := time.Now()
	short := &admin_model.BanRecord{ID: 1, ExpiresAt: now.Add(time.Hour)}
	long := &admin_model.BanRecord{ID: 2, ExpiresAt: now.Add(24 * time.Hour)}
	permanent := &admin_model.BanRecord{ID: 3, ExpiresAt: admin_model.PermanentExpiry}

	assert.Equal(t, uint(2), pickMostRestrictive([]*admin_model.BanRecord{short, long}).ID)
	assert.Equal(t, uint(3), pickMostRestrictive([]*admin_model.BanRecord{short, permanent, long}).ID)
	assert.Nil(t, pickMostRestrictive(nil))
}

func TestIsPermanent(t *testing.T) {
	permanent := &admin_model.BanRecord{ExpiresAt: admin_model.PermanentExpiry}
	assert.True(t, permanent.IsPermanent())

	temporary := &admin_model.BanRecord{ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, temporary.IsPermanent())
}
