package app_service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"whisper-wall/model/admin_model"
	"whisper-wall/model/app_model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memContentStore 内存存储，模拟文档级原子写入
type memContentStore struct {
	mu          sync.Mutex
	nextID      uint
	confessions map[uint]*app_model.Confession
	replies     map[uint]*app_model.Reply

	createConfessionErr error
	createReplyErr      error
}

func newMemContentStore() *memContentStore {
	return &memContentStore{
		nextID:      1,
		confessions: make(map[uint]*app_model.Confession),
		replies:     make(map[uint]*app_model.Reply),
	}
}

func (s *memContentStore) CreateConfession(ctx context.Context, c *app_model.Confession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createConfessionErr != nil {
		return s.createConfessionErr
	}
	c.ID = s.nextID
	s.nextID++
	copied := *c
	s.confessions[c.ID] = &copied
	return nil
}

func (s *memContentStore) CreateReply(ctx context.Context, r *app_model.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createReplyErr != nil {
		return s.createReplyErr
	}
	r.ID = s.nextID
	s.nextID++
	copied := *r
	s.replies[r.ID] = &copied
	return nil
}

func (s *memContentStore) DeleteConfession(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.confessions, id)
	return nil
}

func (s *memContentStore) DeleteReply(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.replies, id)
	return nil
}

func (s *memContentStore) CountReplies(ctx context.Context, confessionID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, r := range s.replies {
		if r.ConfessionID == confessionID {
			count++
		}
	}
	return count, nil
}

func (s *memContentStore) SetReplyCount(ctx context.Context, confessionID uint, count int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.confessions[confessionID]; ok {
		c.ReplyCount = count
	}
	return nil
}

func (s *memContentStore) UpdateConfessionModeration(ctx context.Context, id uint, verdict *app_model.ModerationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.confessions[id]
	if !ok {
		return errors.New("not found")
	}
	now := time.Now()
	c.Moderated = true
	c.IsNSFW = verdict.IsNSFW
	c.ModerationIssues = verdict.Issues
	c.CategoryScores = verdict.Categories
	c.ModeratedAt = &now
	return nil
}

func (s *memContentStore) UpdateReplyModeration(ctx context.Context, id uint, verdict *app_model.ModerationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.replies[id]
	if !ok {
		return errors.New("not found")
	}
	now := time.Now()
	r.Moderated = true
	r.IsNSFW = verdict.IsNSFW
	r.ModerationIssues = verdict.Issues
	r.CategoryScores = verdict.Categories
	r.ModeratedAt = &now
	return nil
}

func (s *memContentStore) HideConfession(ctx context.Context, id uint, issue app_model.ModerationIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.confessions[id]
	if !ok {
		return errors.New("not found")
	}
	if c.Moderated {
		return nil
	}
	c.IsNSFW = true
	c.ModerationIssues = app_model.IssueList{issue}
	return nil
}

func (s *memContentStore) HideReply(ctx context.Context, id uint, issue app_model.ModerationIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.replies[id]
	if !ok {
		return errors.New("not found")
	}
	if r.Moderated {
		return nil
	}
	r.IsNSFW = true
	r.ModerationIssues = app_model.IssueList{issue}
	return nil
}

func (s *memContentStore) FindConfessionBySubmissionID(ctx context.Context, submissionID string) (*app_model.Confession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.confessions {
		if c.SubmissionID == submissionID {
			return c, nil
		}
	}
	return nil, nil
}

func (s *memContentStore) FindReplyBySubmissionID(ctx context.Context, submissionID string) (*app_model.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.replies {
		if r.SubmissionID == submissionID {
			return r, nil
		}
	}
	return nil, nil
}

func (s *memContentStore) getConfession(id uint) *app_model.Confession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confessions[id]
}

func (s *memContentStore) getReply(id uint) *app_model.Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replies[id]
}

// stubBanChecker 固定返回的封禁查询
type stubBanChecker struct {
	banned bool
	record *admin_model.BanRecord
	err    error
}

func (b *stubBanChecker) IsBanned(ctx context.Context, identity string, action admin_model.BanAction) (*BanCheckResult, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &BanCheckResult{Banned: b.banned, Record: b.record}, nil
}

// stubClassifier 固定返回的分类器
type stubClassifier struct {
	verdict *app_model.ModerationResult
	err     error
}

func (c *stubClassifier) Classify(ctx context.Context, text, contentType string) (*app_model.ModerationResult, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.verdict, nil
}

// syncRunner 同步执行后台任务，让断言不需要等待
func syncRunner(fn func() error) error {
	return fn()
}

func newTestPipeline(store ContentStore, bans BanChecker, classifier TextClassifier) *SubmissionPipeline {
	return &SubmissionPipeline{
		Store:              store,
		Bans:               bans,
		Classifier:         classifier,
		RunTask:            syncRunner,
		FailOpen:           true,
		ModerationFailOpen: true,
		CheckTimeout:       time.Second,
	}
}

func cleanVerdict() *app_model.ModerationResult {
	return NormalizeVerdict(map[string]interface{}{"isNSFW": false})
}

func nsfwVerdict() *app_model.ModerationResult {
	return NormalizeVerdict(map[string]interface{}{
		"isNSFW": false,
		"issues": []interface{}{
			map[string]interface{}{"type": "hate_speech", "severity": "high", "text": "言论"},
		},
		"categories": map[string]interface{}{"hate_speech": 0.9},
	})
}

func TestSubmitConfessionFlaggedContentStaysPublished(t *testing.T) {
	store := newMemContentStore()
	pipeline := newTestPipeline(store, &stubBanChecker{}, &stubClassifier{verdict: nsfwVerdict()})

	confession, err := pipeline.SubmitConfession(context.Background(), "sub-1", "仇恨言论内容", "1.2.3.4", "tok-1")
	require.NoError(t, err)

	stored := store.getConfession(confession.ID)
	require.NotNil(t, stored, "违规内容只降权展示，不删除")
	assert.True(t, stored.Moderated)
	assert.True(t, stored.IsNSFW)
	assert.NotEmpty(t, stored.ModerationIssues)
}

func TestSubmitConfessionCleanContent(t *testing.T) {
	store := newMemContentStore()
	pipeline := newTestPipeline(store, &stubBanChecker{}, &stubClassifier{verdict: cleanVerdict()})

	confession, err := pipeline.SubmitConfession(context.Background(), "sub-2", "今天天气不错", "1.2.3.4", "tok-1")
	require.NoError(t, err)

	stored := store.getConfession(confession.ID)
	require.NotNil(t, stored)
	assert.True(t, stored.Moderated)
	assert.False(t, stored.IsNSFW)
}

func TestSubmitConfessionBannedUserRetracted(t *testing.T) {
	store := newMemContentStore()
	banned := &stubBanChecker{
		banned: true,
		record: &admin_model.BanRecord{IP: "1.2.3.4", Reason: "骚扰", Scope: admin_model.ScopePostConfession, IsActive: true, ExpiresAt: admin_model.PermanentExpiry},
	}
	pipeline := newTestPipeline(store, banned, &stubClassifier{verdict: cleanVerdict()})

	confession, err := pipeline.SubmitConfession(context.Background(), "sub-3", "内容", "1.2.3.4", "tok-1")
	// 乐观发布：提交本身必须成功
	require.NoError(t, err)
	require.NotZero(t, confession.ID)

	// 后台封禁检查同步完成后，内容应已被撤回
	assert.Nil(t, store.getConfession(confession.ID))
}

func TestSubmitConfessionModerationUnavailableLeavesContentUntouched(t *testing.T) {
	store := newMemContentStore()
	pipeline := newTestPipeline(store, &stubBanChecker{}, &stubClassifier{err: ErrModerationUnavailable})

	confession, err := pipeline.SubmitConfession(context.Background(), "sub-4", "内容", "1.2.3.4", "tok-1")
	require.NoError(t, err)

	stored := store.getConfession(confession.ID)
	require.NotNil(t, stored, "审核不可用时内容保持已发布")
	assert.False(t, stored.Moderated, "审核元数据不得被污染")
	assert.False(t, stored.IsNSFW)
}

func TestSubmitConfessionModerationFailClosedHidesContent(t *testing.T) {
	store := newMemContentStore()
	pipeline := newTestPipeline(store, &stubBanChecker{}, &stubClassifier{err: ErrModerationUnavailable})
	pipeline.ModerationFailOpen = false

	confession, err := pipeline.SubmitConfession(context.Background(), "sub-4b", "内容", "1.2.3.4", "tok-1")
	require.NoError(t, err)

	// fail-closed：降权隐藏但不删除，moderated保持false等人工复核
	stored := store.getConfession(confession.ID)
	require.NotNil(t, stored, "fail-closed只隐藏不删除")
	assert.True(t, stored.IsNSFW)
	assert.False(t, stored.Moderated)
	require.NotEmpty(t, stored.ModerationIssues)
	assert.Equal(t, "unreviewed", stored.ModerationIssues[0].Type)
}

func TestSubmitReplyModerationFailClosedHidesContent(t *testing.T) {
	store := newMemContentStore()
	okPipeline := newTestPipeline(store, &stubBanChecker{}, &stubClassifier{verdict: cleanVerdict()})
	parent, err := okPipeline.SubmitConfession(context.Background(), "sub-4c", "主帖", "1.2.3.4", "tok-1")
	require.NoError(t, err)

	pipeline := newTestPipeline(store, &stubBanChecker{}, &stubClassifier{err: ErrModerationUnavailable})
	pipeline.ModerationFailOpen = false

	reply, err := pipeline.SubmitReply(context.Background(), parent.ID, "sub-4d", "回复", "1.2.3.4", "tok-2")
	require.NoError(t, err)

	stored := store.getReply(reply.ID)
	require.NotNil(t, stored)
	assert.True(t, stored.IsNSFW)
	assert.False(t, stored.Moderated)
}

func TestSubmitConfessionDuplicateSubmissionID(t *testing.T) {
	store := newMemContentStore()
	pipeline := newTestPipeline(store, &stubBanChecker{}, &stubClassifier{verdict: cleanVerdict()})

	first, err := pipeline.SubmitConfession(context.Background(), "sub-5", "内容", "1.2.3.4", "tok-1")
	require.NoError(t, err)

	// 模拟唯一索引冲突（客户端断网重试）
	store.createConfessionErr = errors.New("Duplicate entry 'sub-5' for key 'submission_id'")
	second, err := pipeline.SubmitConfession(context.Background(), "sub-5", "内容", "1.2.3.4", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "重试返回已有记录，不产生重复")
}

func TestSubmitConfessionBanLookupFailOpen(t *testing.T) {
	store := newMemContentStore()
	failing := &stubBanChecker{err: errors.New("storage down")}
	pipeline := newTestPipeline(store, failing, &stubClassifier{verdict: cleanVerdict()})
	pipeline.FailOpen = true

	confession, err := pipeline.SubmitConfession(context.Background(), "sub-6", "内容", "1.2.3.4", "tok-1")
	require.NoError(t, err)
	assert.NotNil(t, store.getConfession(confession.ID), "fail-open时内容放行")
}

func TestSubmitConfessionBanLookupFailClosed(t *testing.T) {
	store := newMemContentStore()
	failing := &stubBanChecker{err: errors.New("storage down")}
	pipeline := newTestPipeline(store, failing, &stubClassifier{verdict: cleanVerdict()})
	pipeline.FailOpen = false

	confession, err := pipeline.SubmitConfession(context.Background(), "sub-7", "内容", "1.2.3.4", "tok-1")
	require.NoError(t, err)
	assert.Nil(t, store.getConfession(confession.ID), "fail-closed时查不到封禁状态宁可撤回")
}

func TestSubmitConfessionWordFilterFastPath(t *testing.T) {
	store := newMemContentStore()
	pipeline := newTestPipeline(store, &stubBanChecker{}, &stubClassifier{err: ErrModerationUnavailable})
	pipeline.Filter = &ContentFilter{Words: []string{"赌博"}}

	confession, err := pipeline.SubmitConfession(context.Background(), "sub-8", "参与赌博活动", "1.2.3.4", "tok-1")
	require.NoError(t, err)

	// 分类模型不可用，但敏感词命中已经立即打了标记
	stored := store.getConfession(confession.ID)
	require.NotNil(t, stored)
	assert.True(t, stored.IsNSFW)
	require.NotEmpty(t, stored.ModerationIssues)
	assert.Equal(t, "profanity", stored.ModerationIssues[0].Type)
}

func TestSubmitReplyReconcilesParentCount(t *testing.T) {
	store := newMemContentStore()
	pipeline := newTestPipeline(store, &stubBanChecker{}, &stubClassifier{verdict: cleanVerdict()})

	confession, err := pipeline.SubmitConfession(context.Background(), "sub-9", "主帖", "1.2.3.4", "tok-1")
	require.NoError(t, err)

	_, err = pipeline.SubmitReply(context.Background(), confession.ID, "sub-10", "回复一", "5.6.7.8", "tok-2")
	require.NoError(t, err)
	_, err = pipeline.SubmitReply(context.Background(), confession.ID, "sub-11", "回复二", "5.6.7.8", "tok-2")
	require.NoError(t, err)

	assert.Equal(t, int64(2), store.getConfession(confession.ID).ReplyCount, "回复数按真实子记录数重算")
}

func TestSubmitReplyBannedUserRetractedAndRecounted(t *testing.T) {
	store := newMemContentStore()
	pipeline := newTestPipeline(store, &stubBanChecker{}, &stubClassifier{verdict: cleanVerdict()})

	confession, err := pipeline.SubmitConfession(context.Background(), "sub-12", "主帖", "1.2.3.4", "tok-1")
	require.NoError(t, err)

	// 切换到命中封禁的检查器再发回复
	pipeline.Bans = &stubBanChecker{
		banned: true,
		record: &admin_model.BanRecord{IP: "9.9.9.9", Reason: "刷屏", Scope: admin_model.ScopeBoth, IsActive: true, ExpiresAt: admin_model.PermanentExpiry},
	}
	reply, err := pipeline.SubmitReply(context.Background(), confession.ID, "sub-13", "垃圾回复", "9.9.9.9", "tok-3")
	require.NoError(t, err)

	assert.Nil(t, store.getReply(reply.ID), "被封禁用户的回复应被撤回")
	assert.Equal(t, int64(0), store.getConfession(confession.ID).ReplyCount, "撤回后父帖回复数回到真实值")
}
