package admin_service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"whisper-wall/model/admin_model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memReportStore 内存举报存储，ClaimResolution按与生产实现相同的
// "仅pending可迁移"语义实现
type memReportStore struct {
	mu      sync.Mutex
	nextID  uint
	reports map[uint]*admin_model.Report

	replyParents      map[uint]uint // replyID -> confessionID
	confessionDeletes map[uint]int
	replyDeletes      map[uint]int
	replyCounts       map[uint]int64 // 回写的父帖回复数
}

func newMemReportStore() *memReportStore {
	return &memReportStore{
		nextID:            1,
		reports:           make(map[uint]*admin_model.Report),
		replyParents:      make(map[uint]uint),
		confessionDeletes: make(map[uint]int),
		replyDeletes:      make(map[uint]int),
		replyCounts:       make(map[uint]int64),
	}
}

func (s *memReportStore) CreateReport(ctx context.Context, report *admin_model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report.ID = s.nextID
	s.nextID++
	copied := *report
	s.reports[report.ID] = &copied
	return nil
}

func (s *memReportStore) FindReport(ctx context.Context, id uint) (*admin_model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *report
	return &copied, nil
}

func (s *memReportStore) ClaimResolution(ctx context.Context, id uint, status admin_model.ReportStatus, action, notes, reviewerID string, resolvedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[id]
	if !ok || report.Status != admin_model.ReportPending {
		return false, nil
	}
	report.Status = status
	report.ModeratorAction = action
	report.Notes = notes
	report.ResolvedBy = reviewerID
	report.ResolvedAt = &resolvedAt
	return true, nil
}

func (s *memReportStore) LinkBanRecord(ctx context.Context, reportID, banRecordID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if report, ok := s.reports[reportID]; ok {
		report.BanRecordID = &banRecordID
	}
	return nil
}

func (s *memReportStore) ListReports(ctx context.Context, status admin_model.ReportStatus, page, pageSize int) ([]admin_model.Report, int64, error) {
	return nil, 0, nil
}

func (s *memReportStore) ContentIP(ctx context.Context, contentType admin_model.ReportContentType, contentID uint) (string, error) {
	return "", nil
}

func (s *memReportStore) FindContent(ctx context.Context, contentType admin_model.ReportContentType, contentID uint) (interface{}, error) {
	return nil, nil
}

func (s *memReportStore) DeleteConfession(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confessionDeletes[id]++
	return nil
}

func (s *memReportStore) DeleteReply(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replyDeletes[id]++
	delete(s.replyParents, id)
	return nil
}

func (s *memReportStore) CountReplies(ctx context.Context, confessionID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, parent := range s.replyParents {
		if parent == confessionID {
			count++
		}
	}
	return count, nil
}

func (s *memReportStore) SetReplyCount(ctx context.Context, confessionID uint, count int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replyCounts[confessionID] = count
	return nil
}

func (s *memReportStore) seedPending(report admin_model.Report) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	report.ID = s.nextID
	s.nextID++
	report.Status = admin_model.ReportPending
	s.reports[report.ID] = &report
	return report.ID
}

func (s *memReportStore) getReport(id uint) *admin_model.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports[id]
}

// 参数校验在任何写库之前完成，这些用例不需要数据库

func TestFileReportUnknownReason(t *testing.T) {
	_, err := ReportTriage.FileReport(context.Background(), FileReportInput{
		ContentID:   1,
		ContentType: admin_model.ContentConfession,
		Reason:      admin_model.ReportReason("bogus"),
	}, "tok-1")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "reason", vErr.Field)
}

func TestFileReportOtherReasonNeedsExplanation(t *testing.T) {
	_, err := ReportTriage.FileReport(context.Background(), FileReportInput{
		ContentID:   1,
		ContentType: admin_model.ContentConfession,
		Reason:      admin_model.ReasonOther,
		OtherText:   "太短了",
	}, "tok-1")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "other_text", vErr.Field)
}

func TestFileReportReplyRequiresParentID(t *testing.T) {
	_, err := ReportTriage.FileReport(context.Background(), FileReportInput{
		ContentID:   1,
		ContentType: admin_model.ContentReply,
		Reason:      admin_model.ReasonSpam,
	}, "tok-1")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "parent_id", vErr.Field)
}

func TestFileReportUnknownContentType(t *testing.T) {
	_, err := ReportTriage.FileReport(context.Background(), FileReportInput{
		ContentID:   1,
		ContentType: admin_model.ReportContentType("video"),
		Reason:      admin_model.ReasonSpam,
	}, "tok-1")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "content_type", vErr.Field)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "reason", Message: "未知的举报原因"}
	assert.Equal(t, "reason: 未知的举报原因", err.Error())
}

func TestResolveRemoveDeletesContent(t *testing.T) {
	store := newMemReportStore()
	triage := &ReportTriageService{Store: store}
	id := store.seedPending(admin_model.Report{
		ContentID:   42,
		ContentType: admin_model.ContentConfession,
		Reason:      admin_model.ReasonHarassment,
	})

	err := triage.Resolve(context.Background(), id, ActionRemove, "骚扰内容", nil, "rev-1")
	require.NoError(t, err)

	report := store.getReport(id)
	assert.Equal(t, admin_model.ReportResolved, report.Status)
	assert.Equal(t, "remove", report.ModeratorAction)
	assert.Equal(t, "rev-1", report.ResolvedBy)
	require.NotNil(t, report.ResolvedAt)
	assert.Equal(t, 1, store.confessionDeletes[42])
}

func TestResolveSecondAttemptRejected(t *testing.T) {
	store := newMemReportStore()
	triage := &ReportTriageService{Store: store}
	id := store.seedPending(admin_model.Report{
		ContentID:   42,
		ContentType: admin_model.ContentConfession,
		Reason:      admin_model.ReasonSpam,
	})

	require.NoError(t, triage.Resolve(context.Background(), id, ActionRemove, "首次处理", nil, "rev-1"))

	// 第二次处理必须被拒，且不产生任何新的副作用
	err := triage.Resolve(context.Background(), id, ActionDismiss, "并发审核员", nil, "rev-2")
	require.ErrorIs(t, err, ErrAlreadyResolved)

	report := store.getReport(id)
	assert.Equal(t, admin_model.ReportResolved, report.Status, "终态不被第二次处理改写")
	assert.Equal(t, "remove", report.ModeratorAction)
	assert.Equal(t, "rev-1", report.ResolvedBy)
	assert.Equal(t, 1, store.confessionDeletes[42], "内容只删一次")
}

func TestResolveDismissKeepsContent(t *testing.T) {
	store := newMemReportStore()
	triage := &ReportTriageService{Store: store}
	id := store.seedPending(admin_model.Report{
		ContentID:   7,
		ContentType: admin_model.ContentConfession,
		Reason:      admin_model.ReasonOther,
		OtherText:   "不构成违规的举报内容",
	})

	require.NoError(t, triage.Resolve(context.Background(), id, ActionDismiss, "无违规", nil, "rev-1"))

	report := store.getReport(id)
	assert.Equal(t, admin_model.ReportDismissed, report.Status)
	assert.Zero(t, store.confessionDeletes[7], "驳回不删内容")
}

func TestResolveRemoveReplyRecountsParent(t *testing.T) {
	store := newMemReportStore()
	triage := &ReportTriageService{Store: store}

	parentID := uint(10)
	store.replyParents[101] = parentID
	store.replyParents[102] = parentID
	store.replyParents[103] = parentID

	id := store.seedPending(admin_model.Report{
		ContentID:   102,
		ContentType: admin_model.ContentReply,
		ParentID:    &parentID,
		Reason:      admin_model.ReasonSexual,
	})

	require.NoError(t, triage.Resolve(context.Background(), id, ActionRemove, "", nil, "rev-1"))

	assert.Equal(t, 1, store.replyDeletes[102])
	// 回复数按删除后的真实子记录数回写，不做-1
	assert.Equal(t, int64(2), store.replyCounts[parentID])
}

func TestResolveUnknownReport(t *testing.T) {
	triage := &ReportTriageService{Store: newMemReportStore()}

	err := triage.Resolve(context.Background(), 999, ActionDismiss, "", nil, "rev-1")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "report_id", vErr.Field)
}

func TestResolveUnknownAction(t *testing.T) {
	store := newMemReportStore()
	triage := &ReportTriageService{Store: store}
	id := store.seedPending(admin_model.Report{
		ContentID:   1,
		ContentType: admin_model.ContentConfession,
		Reason:      admin_model.ReasonSpam,
	})

	err := triage.Resolve(context.Background(), id, ResolveAction("archive"), "", nil, "rev-1")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "action", vErr.Field)
	assert.Equal(t, admin_model.ReportPending, store.getReport(id).Status, "非法动作不迁移状态")
}
