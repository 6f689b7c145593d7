package admin_service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"whisper-wall/model/admin_model"
)

// ErrAlreadyResolved 举报已被处理过，拒绝重复处理（防双击/并发审核员）
var ErrAlreadyResolved = errors.New("report already resolved")

// ValidationError 举报参数不合法，直接同步返回给调用方
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// minOtherTextLen reason=other 时补充说明的最小长度
const minOtherTextLen = 10

// ResolveAction 审核员处理动作
type ResolveAction string

const (
	ActionDismiss ResolveAction = "dismiss"
	ActionRemove  ResolveAction = "remove"
)

// BanOptions 处理举报时的升级封禁选项
type BanOptions struct {
	Scope           admin_model.BanScope `json:"scope"`
	DurationSeconds int64                `json:"duration_seconds"` // 0=永久
	Reason          string               `json:"reason"`
}

// FileReportInput 提交举报的入参
type FileReportInput struct {
	ContentID   uint
	ContentType admin_model.ReportContentType
	ParentID    *uint
	Reason      admin_model.ReportReason
	OtherText   string
}

// ReportTriageService 举报分诊：接收用户举报，由审核员裁决
type ReportTriageService struct {
	Store ReportStore
}

var ReportTriage = &ReportTriageService{Store: &GormReportStore{}}

// FileReport 用户提交举报。
// 顺手读出被举报内容记录的IP存到举报上，给后续封禁升级用；读不到不算失败。
func (s *ReportTriageService) FileReport(ctx context.Context, input FileReportInput, reporterToken string) (*admin_model.Report, error) {
	if !admin_model.ValidReportReasons[input.Reason] {
		return nil, &ValidationError{Field: "reason", Message: "未知的举报原因"}
	}
	if input.Reason == admin_model.ReasonOther && len([]rune(input.OtherText)) < minOtherTextLen {
		return nil, &ValidationError{Field: "other_text", Message: fmt.Sprintf("其他原因需要至少%d个字的说明", minOtherTextLen)}
	}
	switch input.ContentType {
	case admin_model.ContentConfession:
	case admin_model.ContentReply:
		if input.ParentID == nil {
			return nil, &ValidationError{Field: "parent_id", Message: "举报回复时必须带上所属帖子ID"}
		}
	default:
		return nil, &ValidationError{Field: "content_type", Message: "未知的内容类型"}
	}

	priority := admin_model.PriorityNormal
	if input.Reason == admin_model.ReasonThreat {
		priority = admin_model.PriorityHigh
	}

	report := &admin_model.Report{
		ContentID:     input.ContentID,
		ContentType:   input.ContentType,
		ParentID:      input.ParentID,
		Reason:        input.Reason,
		OtherText:     input.OtherText,
		Status:        admin_model.ReportPending,
		Priority:      priority,
		ReporterToken: reporterToken,
		ContentIP:     s.lookupContentIP(ctx, input.ContentType, input.ContentID),
	}
	if err := s.Store.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	contentID := fmt.Sprintf("%s:%d", report.ContentType, report.ContentID)
	NotifyReviewers("report_filed", contentID, string(report.Priority), "收到新举报: "+string(report.Reason), report.ID)

	return report, nil
}

// lookupContentIP 只读查询内容上记录的IP，缺失时返回空串（非致命）
func (s *ReportTriageService) lookupContentIP(ctx context.Context, contentType admin_model.ReportContentType, contentID uint) string {
	ip, err := s.Store.ContentIP(ctx, contentType, contentID)
	if err != nil {
		log.Printf("[举报] 查询内容IP失败（忽略）: type=%s id=%d err=%v", contentType, contentID, err)
		return ""
	}
	return ip
}

// Resolve 审核员处理举报。pending -> resolved/dismissed 只允许发生一次：
// 先用条件更新抢到状态迁移，抢不到就返回ErrAlreadyResolved，
// 破坏性动作（删内容、封IP）都在抢到之后才执行。
func (s *ReportTriageService) Resolve(ctx context.Context, reportID uint, action ResolveAction, notes string, banOpts *BanOptions, reviewerID string) error {
	report, err := s.Store.FindReport(ctx, reportID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ValidationError{Field: "report_id", Message: "举报不存在"}
	}
	if err != nil {
		return err
	}

	var finalStatus admin_model.ReportStatus
	switch action {
	case ActionDismiss:
		finalStatus = admin_model.ReportDismissed
	case ActionRemove:
		finalStatus = admin_model.ReportResolved
	default:
		return &ValidationError{Field: "action", Message: "未知的处理动作"}
	}

	claimed, err := s.Store.ClaimResolution(ctx, reportID, finalStatus, string(action), notes, reviewerID, time.Now())
	if err != nil {
		return err
	}
	if !claimed {
		return ErrAlreadyResolved
	}

	if action == ActionRemove {
		if err := s.removeContent(ctx, report); err != nil {
			// 状态已迁移，删除失败只能记日志，留给下一条举报兜底
			log.Printf("[举报] 删除内容失败: report=%d err=%v", reportID, err)
		}
	}

	if banOpts != nil && report.ContentIP != "" {
		record, err := BanRegistry.Create(ctx, report.ContentIP, banOpts.Reason, banOpts.Scope, banOpts.DurationSeconds, reviewerID)
		if err != nil {
			log.Printf("[举报] 升级封禁失败: report=%d ip=%s err=%v", reportID, report.ContentIP, err)
		} else {
			// 把封禁记录回链到举报上，留审计线索
			if err := s.Store.LinkBanRecord(ctx, reportID, record.ID); err != nil {
				log.Printf("[举报] 回链封禁记录失败: report=%d err=%v", reportID, err)
			}
		}
	}

	return nil
}

// removeContent 删除被举报内容；删回复后按真实子记录数重算父帖回复数
func (s *ReportTriageService) removeContent(ctx context.Context, report *admin_model.Report) error {
	switch report.ContentType {
	case admin_model.ContentConfession:
		return s.Store.DeleteConfession(ctx, report.ContentID)
	case admin_model.ContentReply:
		if err := s.Store.DeleteReply(ctx, report.ContentID); err != nil {
			return err
		}
		if report.ParentID == nil {
			return nil
		}
		// 并发删除下不做-1，读权威计数再回写
		count, err := s.Store.CountReplies(ctx, *report.ParentID)
		if err != nil {
			return err
		}
		return s.Store.SetReplyCount(ctx, *report.ParentID, count)
	default:
		return fmt.Errorf("未知的内容类型: %s", report.ContentType)
	}
}

// List 分页查询举报（管理端），高优先级在前
func (s *ReportTriageService) List(ctx context.Context, status admin_model.ReportStatus, page, pageSize int) ([]admin_model.Report, int64, error) {
	return s.Store.ListReports(ctx, status, page, pageSize)
}

// Detail 举报详情，连同被举报内容一起返回（审核员视角，含IP）
func (s *ReportTriageService) Detail(ctx context.Context, reportID uint) (*admin_model.Report, interface{}, error) {
	report, err := s.Store.FindReport(ctx, reportID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, &ValidationError{Field: "report_id", Message: "举报不存在"}
	}
	if err != nil {
		return nil, nil, err
	}

	content, err := s.Store.FindContent(ctx, report.ContentType, report.ContentID)
	if err != nil {
		log.Printf("[举报] 查询被举报内容失败（忽略）: report=%d err=%v", reportID, err)
		content = nil
	}
	return report, content, nil
}
