package app_service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"whisper-wall/model/admin_model"
	"whisper-wall/model/app_model"
	"whisper-wall/pkg/monitoring"
	"whisper-wall/services/admin_service"
)

// ErrDuplicateSubmission 同一提交ID重复写入（客户端断网重试），不算失败
var ErrDuplicateSubmission = errors.New("duplicate submission")

// TextClassifier 文本审核接口
type TextClassifier interface {
	Classify(ctx context.Context, text, contentType string) (*app_model.ModerationResult, error)
}

// BanChecker 封禁查询接口
type BanChecker interface {
	IsBanned(ctx context.Context, identity string, action admin_model.BanAction) (*BanCheckResult, error)
}

// BanCheckResult 封禁查询结果（管道侧视图）
type BanCheckResult struct {
	Banned bool
	Record *admin_model.BanRecord
}

// ContentStore 内容存储接口。文档级写入是原子的，管道不需要分布式锁。
type ContentStore interface {
	CreateConfession(ctx context.Context, c *app_model.Confession) error
	CreateReply(ctx context.Context, r *app_model.Reply) error
	DeleteConfession(ctx context.Context, id uint) error
	DeleteReply(ctx context.Context, id uint) error
	// CountReplies/SetReplyCount：回复数永远按真实子记录数重算后落库，
	// 不做±1的相对增减，并发删除下才不会漂移
	CountReplies(ctx context.Context, confessionID uint) (int64, error)
	SetReplyCount(ctx context.Context, confessionID uint, count int64) error
	UpdateConfessionModeration(ctx context.Context, id uint, verdict *app_model.ModerationResult) error
	UpdateReplyModeration(ctx context.Context, id uint, verdict *app_model.ModerationResult) error
	// HideConfession/HideReply：审核fail-closed时先打NSFW降权，
	// moderated保持false，等审核恢复或人工复核
	HideConfession(ctx context.Context, id uint, issue app_model.ModerationIssue) error
	HideReply(ctx context.Context, id uint, issue app_model.ModerationIssue) error
	FindConfessionBySubmissionID(ctx context.Context, submissionID string) (*app_model.Confession, error)
	FindReplyBySubmissionID(ctx context.Context, submissionID string) (*app_model.Reply, error)
}

// TaskRunner 后台任务提交接口，生产环境接goroutinepool
type TaskRunner func(fn func() error) error

// SubmissionPipeline 投稿管道：乐观发布 -> 并发后台检查 -> 纠正动作。
// 发布总是先完成并立刻返回；封禁检查和内容审核互相独立、各自限时，
// 任何一个失败都不会让用户的提交失败。
type SubmissionPipeline struct {
	Store      ContentStore
	Bans       BanChecker
	Classifier TextClassifier
	Filter     *ContentFilter
	RunTask    TaskRunner

	// FailOpen 封禁查询不可用时是否放行（产品层面的取舍，按部署切换）
	FailOpen bool
	// ModerationFailOpen 审核不可用时内容是否保持可见；
	// fail-closed部署会先打NSFW隐藏，等人工复核
	ModerationFailOpen bool
	CheckTimeout       time.Duration
}

func (p *SubmissionPipeline) checkTimeout() time.Duration {
	if p.CheckTimeout > 0 {
		return p.CheckTimeout
	}
	return 15 * time.Second
}

func (p *SubmissionPipeline) runAsync(fn func() error) {
	run := p.RunTask
	if run == nil {
		run = func(f func() error) error { go f(); return nil }
	}
	if err := run(fn); err != nil {
		log.Printf("[投稿] 后台任务提交失败: %v", err)
	}
}

// SubmitConfession 发布表白帖。写库成功即返回，检查都在后台跑。
func (p *SubmissionPipeline) SubmitConfession(ctx context.Context, submissionID, content, identity, clientToken string) (*app_model.Confession, error) {
	confession := &app_model.Confession{
		SubmissionID:     submissionID,
		ClientToken:      clientToken,
		AuthorIP:         identity,
		Content:          content,
		Moderated:        false,
		IsNSFW:           false,
		ModerationIssues: app_model.IssueList{},
	}

	// 敏感词快速通道：命中直接标NSFW，不等分类模型
	p.applyWordFilter(confession.Content, &confession.IsNSFW, &confession.ModerationIssues)

	if err := p.Store.CreateConfession(ctx, confession); err != nil {
		// 提交ID撞唯一索引说明是客户端重试，返回已有记录，不重复计数
		if existing, findErr := p.Store.FindConfessionBySubmissionID(ctx, submissionID); findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}

	p.runAsync(func() error {
		p.banCheckConfession(confession.ID, identity)
		return nil
	})
	p.runAsync(func() error {
		p.moderateConfession(confession.ID, content)
		return nil
	})

	return confession, nil
}

// SubmitReply 在某个帖子下发布回复
func (p *SubmissionPipeline) SubmitReply(ctx context.Context, confessionID uint, submissionID, content, identity, clientToken string) (*app_model.Reply, error) {
	reply := &app_model.Reply{
		ConfessionID:     confessionID,
		SubmissionID:     submissionID,
		ClientToken:      clientToken,
		AuthorIP:         identity,
		Content:          content,
		Moderated:        false,
		IsNSFW:           false,
		ModerationIssues: app_model.IssueList{},
	}

	p.applyWordFilter(reply.Content, &reply.IsNSFW, &reply.ModerationIssues)

	if err := p.Store.CreateReply(ctx, reply); err != nil {
		if existing, findErr := p.Store.FindReplyBySubmissionID(ctx, submissionID); findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}

	// 回复数按真实子记录数重算
	p.reconcileReplyCount(ctx, confessionID)

	p.runAsync(func() error {
		p.banCheckReply(reply.ID, confessionID, identity)
		return nil
	})
	p.runAsync(func() error {
		p.moderateReply(reply.ID, content)
		return nil
	})

	return reply, nil
}

// applyWordFilter 本地敏感词预检，命中时立即打NSFW标记
func (p *SubmissionPipeline) applyWordFilter(content string, isNSFW *bool, issues *app_model.IssueList) {
	if p.Filter == nil {
		return
	}
	filterResult, err := p.Filter.Check(content)
	if err != nil {
		log.Printf("[投稿] 敏感词预检失败: %v", err)
		return
	}
	if filterResult.HasSensitiveWords {
		*isNSFW = true
		*issues = append(*issues, app_model.ModerationIssue{
			Type:     "profanity",
			Severity: app_model.SeverityMedium,
			Text:     filterResult.RejectReason,
		})
	}
}

// banCheckConfession 封禁检查：命中则撤回帖子
func (p *SubmissionPipeline) banCheckConfession(confessionID uint, identity string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.checkTimeout())
	defer cancel()

	status, err := p.Bans.IsBanned(ctx, identity, admin_model.ActionPostConfession)
	if err != nil {
		if p.handleBanLookupFailure(identity, err) {
			return
		}
		// fail-closed配置：查不到封禁状态时宁可撤回
		if err := p.Store.DeleteConfession(ctx, confessionID); err != nil {
			log.Printf("[投稿] fail-closed撤回失败: id=%d err=%v", confessionID, err)
		}
		return
	}
	if !status.Banned {
		return
	}

	if err := p.Store.DeleteConfession(ctx, confessionID); err != nil {
		log.Printf("[投稿] 撤回被封禁用户的帖子失败: id=%d err=%v", confessionID, err)
		return
	}
	monitoring.RecordContentRetracted("confession")
	log.Printf("[投稿] 已撤回被封禁用户的帖子: id=%d ip=%s reason=%s", confessionID, identity, status.Record.Reason)
}

// banCheckReply 封禁检查：命中则撤回回复并重算父帖回复数
func (p *SubmissionPipeline) banCheckReply(replyID, confessionID uint, identity string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.checkTimeout())
	defer cancel()

	status, err := p.Bans.IsBanned(ctx, identity, admin_model.ActionPostReply)
	if err != nil {
		if p.handleBanLookupFailure(identity, err) {
			return
		}
		if err := p.Store.DeleteReply(ctx, replyID); err != nil {
			log.Printf("[投稿] fail-closed撤回失败: reply_id=%d err=%v", replyID, err)
		} else {
			p.reconcileReplyCount(ctx, confessionID)
		}
		return
	}
	if !status.Banned {
		return
	}

	if err := p.Store.DeleteReply(ctx, replyID); err != nil {
		log.Printf("[投稿] 撤回被封禁用户的回复失败: id=%d err=%v", replyID, err)
		return
	}
	p.reconcileReplyCount(ctx, confessionID)
	monitoring.RecordContentRetracted("reply")
	log.Printf("[投稿] 已撤回被封禁用户的回复: id=%d ip=%s", replyID, identity)
}

// moderateConfession 后台审核：有明确结论就原地更新元数据，内容本身不删除。
// 审核只降权展示，不做默认删除，这是有意的产品取舍。
func (p *SubmissionPipeline) moderateConfession(confessionID uint, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.checkTimeout())
	defer cancel()

	verdict, err := p.Classifier.Classify(ctx, content, "confession")
	if err != nil {
		p.handleModerationUnavailable("confession", confessionID, err)
		return
	}
	if err := p.Store.UpdateConfessionModeration(ctx, confessionID, verdict); err != nil {
		log.Printf("[投稿] 回填审核元数据失败: id=%d err=%v", confessionID, err)
		return
	}
	monitoring.SaveModerationAudit(fmt.Sprintf("confession:%d", confessionID), verdictOutcome(verdict), "")
	if verdict.IsNSFW {
		admin_service.NotifyReviewers("content_flagged", fmt.Sprintf("confession:%d", confessionID), "normal", "内容被标记为不良内容", 0)
	}
}

// moderateReply 后台审核回复
func (p *SubmissionPipeline) moderateReply(replyID uint, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.checkTimeout())
	defer cancel()

	verdict, err := p.Classifier.Classify(ctx, content, "reply")
	if err != nil {
		p.handleModerationUnavailable("reply", replyID, err)
		return
	}
	if err := p.Store.UpdateReplyModeration(ctx, replyID, verdict); err != nil {
		log.Printf("[投稿] 回填审核元数据失败: reply_id=%d err=%v", replyID, err)
		return
	}
	monitoring.SaveModerationAudit(fmt.Sprintf("reply:%d", replyID), verdictOutcome(verdict), "")
	if verdict.IsNSFW {
		admin_service.NotifyReviewers("content_flagged", fmt.Sprintf("reply:%d", replyID), "normal", "回复被标记为不良内容", 0)
	}
}

func verdictOutcome(verdict *app_model.ModerationResult) string {
	if verdict.IsNSFW {
		return "nsfw"
	}
	return "clean"
}

// reconcileReplyCount 读真实子记录数再落库，不信任本地乐观计数
func (p *SubmissionPipeline) reconcileReplyCount(ctx context.Context, confessionID uint) {
	count, err := p.Store.CountReplies(ctx, confessionID)
	if err != nil {
		log.Printf("[投稿] 统计回复数失败: confession=%d err=%v", confessionID, err)
		return
	}
	if err := p.Store.SetReplyCount(ctx, confessionID, count); err != nil {
		log.Printf("[投稿] 回写回复数失败: confession=%d err=%v", confessionID, err)
	}
}

// handleBanLookupFailure 封禁查询失败的降级处理，返回true表示放行。
// fail-open放行有安全含义，必须显式记录
func (p *SubmissionPipeline) handleBanLookupFailure(identity string, err error) bool {
	monitoring.RecordDegradedMode("ban_check")
	if p.FailOpen {
		log.Printf("[投稿] 封禁检查不可用，按fail-open放行: ip=%s err=%v", identity, err)
		return true
	}
	log.Printf("[投稿] 封禁检查不可用（fail-closed配置），撤回内容: ip=%s err=%v", identity, err)
	return false
}

// handleModerationUnavailable 审核不可用时的降级处理。
// fail-open：内容保持已发布、moderated=false，等人工举报通道兜底。
// fail-closed：打NSFW降权隐藏（moderated仍为false），不删除，等人工复核。
func (p *SubmissionPipeline) handleModerationUnavailable(contentType string, id uint, err error) {
	monitoring.RecordDegradedMode("moderation")
	if p.ModerationFailOpen {
		log.Printf("[投稿] 审核不可用，内容保持未审核状态: type=%s id=%d err=%v", contentType, id, err)
		monitoring.SaveModerationAudit(fmt.Sprintf("%s:%d", contentType, id), "unavailable", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.checkTimeout())
	defer cancel()
	issue := app_model.ModerationIssue{
		Type:     "unreviewed",
		Severity: app_model.SeverityMedium,
		Text:     "审核服务不可用，待人工复核",
	}
	var hideErr error
	if contentType == "confession" {
		hideErr = p.Store.HideConfession(ctx, id, issue)
	} else {
		hideErr = p.Store.HideReply(ctx, id, issue)
	}
	if hideErr != nil {
		log.Printf("[投稿] fail-closed隐藏内容失败: type=%s id=%d err=%v", contentType, id, hideErr)
	} else {
		log.Printf("[投稿] 审核不可用（fail-closed配置），内容已降权隐藏: type=%s id=%d err=%v", contentType, id, err)
	}
	monitoring.SaveModerationAudit(fmt.Sprintf("%s:%d", contentType, id), "hidden_unreviewed", err.Error())
}
