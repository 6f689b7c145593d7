package admin

import (
	"errors"
	"strconv"

	"whisper-wall/inout"
	"whisper-wall/model/admin_model"
	"whisper-wall/pkg/response"
	"whisper-wall/services/admin_service"

	"github.com/gin-gonic/gin"
)

// GetReportList 举报列表，高优先级在前
func GetReportList(c *gin.Context) {
	var req inout.ReportListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	reports, total, err := admin_service.ReportTriage.List(
		c.Request.Context(),
		admin_model.ReportStatus(req.Status),
		req.Page, req.PageSize,
	)
	if err != nil {
		response.Error(c, response.ERROR, "获取举报列表失败")
		return
	}

	response.Success(c, gin.H{
		"total": total,
		"list":  reports,
	})
}

// GetReportDetail 举报详情，连同被举报内容（含记录的IP）
func GetReportDetail(c *gin.Context) {
	reportID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "无效的举报ID")
		return
	}

	report, content, err := admin_service.ReportTriage.Detail(c.Request.Context(), uint(reportID))
	if err != nil {
		var ve *admin_service.ValidationError
		if errors.As(err, &ve) {
			response.Error(c, response.NOT_FOUND, ve.Message)
			return
		}
		response.Error(c, response.ERROR, "获取举报详情失败")
		return
	}

	response.Success(c, gin.H{
		"report":  report,
		"content": content,
	})
}

// ResolveReport 处理举报：dismiss/remove，可附带升级封禁。
// 同一举报只允许处理一次，重复提交会收到明确报错。
func ResolveReport(c *gin.Context) {
	reportID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "无效的举报ID")
		return
	}

	var req inout.ResolveReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	var banOpts *admin_service.BanOptions
	if req.Ban != nil {
		banOpts = &admin_service.BanOptions{
			Scope:           admin_model.BanScope(req.Ban.Scope),
			DurationSeconds: req.Ban.DurationSeconds,
			Reason:          req.Ban.Reason,
		}
	}

	err = admin_service.ReportTriage.Resolve(
		c.Request.Context(),
		uint(reportID),
		admin_service.ResolveAction(req.Action),
		req.Notes,
		banOpts,
		reviewerID(c),
	)
	if err != nil {
		if errors.Is(err, admin_service.ErrAlreadyResolved) {
			response.Error(c, response.FORBIDDEN, "该举报已被处理过")
			return
		}
		var ve *admin_service.ValidationError
		if errors.As(err, &ve) {
			response.Error(c, response.INVALID_PARAMS, ve.Message)
			return
		}
		response.Error(c, response.ERROR, "处理举报失败")
		return
	}

	response.Success(c, nil)
}
