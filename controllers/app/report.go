package app

import (
	"errors"

	"whisper-wall/inout"
	"whisper-wall/model/admin_model"
	"whisper-wall/pkg/monitoring"
	"whisper-wall/pkg/response"
	"whisper-wall/services/admin_service"

	"github.com/gin-gonic/gin"
)

// FileReport 提交举报。参数问题同步返回行内错误，成功返回举报单号。
func FileReport(c *gin.Context) {
	var req inout.FileReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	report, err := admin_service.ReportTriage.FileReport(c.Request.Context(), admin_service.FileReportInput{
		ContentID:   req.ContentID,
		ContentType: admin_model.ReportContentType(req.ContentType),
		ParentID:    req.ParentID,
		Reason:      admin_model.ReportReason(req.Reason),
		OtherText:   req.OtherText,
	}, c.GetString("client_token"))
	if err != nil {
		var ve *admin_service.ValidationError
		if errors.As(err, &ve) {
			response.Error(c, response.INVALID_PARAMS, ve.Message)
			return
		}
		response.Error(c, response.ERROR, "提交举报失败")
		return
	}

	monitoring.RecordReportFiled(string(report.Reason))
	response.Success(c, gin.H{
		"report_id": report.ID,
		"status":    report.Status,
	})
}
