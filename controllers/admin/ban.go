package admin

import (
	"errors"
	"strconv"

	"whisper-wall/inout"
	"whisper-wall/model/admin_model"
	"whisper-wall/pkg/monitoring"
	"whisper-wall/pkg/response"
	"whisper-wall/services/admin_service"

	"github.com/gin-gonic/gin"
)

// reviewerID 从JWT上下文取当前审核员标识
func reviewerID(c *gin.Context) string {
	return strconv.Itoa(c.GetInt("uid"))
}

// CreateBan 手动新建封禁
func CreateBan(c *gin.Context) {
	var req inout.CreateBanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	record, err := admin_service.BanRegistry.Create(
		c.Request.Context(),
		req.IP,
		req.Reason,
		admin_model.BanScope(req.Scope),
		req.DurationSeconds,
		reviewerID(c),
	)
	if err != nil {
		if errors.Is(err, admin_service.ErrInvalidIdentity) {
			response.Error(c, response.INVALID_PARAMS, "IP格式不合法")
			return
		}
		response.Error(c, response.ERROR, "创建封禁失败")
		return
	}

	monitoring.RecordBanCreated(string(record.Scope))
	response.Success(c, record)
}

// DeactivateBan 手动解封（软删除，保留审计记录）
func DeactivateBan(c *gin.Context) {
	recordID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "无效的记录ID")
		return
	}

	if err := admin_service.BanRegistry.Deactivate(c.Request.Context(), uint(recordID)); err != nil {
		response.Error(c, response.ERROR, err.Error())
		return
	}
	response.Success(c, nil)
}

// GetBanList 封禁记录列表
func GetBanList(c *gin.Context) {
	var req inout.BanListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	records, total, err := admin_service.BanRegistry.List(c.Request.Context(), req.Page, req.PageSize, req.OnlyActive)
	if err != nil {
		response.Error(c, response.ERROR, "获取封禁列表失败")
		return
	}

	response.Success(c, gin.H{
		"total": total,
		"list":  records,
	})
}
