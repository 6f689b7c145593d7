package app

import (
	"strconv"

	"whisper-wall/inout"
	"whisper-wall/pkg/response"
	"whisper-wall/services/app_service"

	"github.com/gin-gonic/gin"
)

// SetReaction 给帖子点表情回应
func SetReaction(c *gin.Context) {
	confessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "无效的帖子ID")
		return
	}

	var req inout.ReactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	err = app_service.ReactionSvc.SetReaction(c.Request.Context(), uint(confessionID), c.GetString("client_token"), req.Emoji)
	if err != nil {
		response.Error(c, response.ERROR, "回应失败")
		return
	}
	response.Success(c, nil)
}

// RemoveReaction 撤销表情回应
func RemoveReaction(c *gin.Context) {
	confessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "无效的帖子ID")
		return
	}

	err = app_service.ReactionSvc.RemoveReaction(c.Request.Context(), uint(confessionID), c.GetString("client_token"))
	if err != nil {
		response.Error(c, response.ERROR, "撤销失败")
		return
	}
	response.Success(c, nil)
}

// GetReactions 查询帖子的表情计数和自己的回应
func GetReactions(c *gin.Context) {
	confessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "无效的帖子ID")
		return
	}

	counts, mine, err := app_service.ReactionSvc.GetReactions(c.Request.Context(), uint(confessionID), c.GetString("client_token"))
	if err != nil {
		response.Error(c, response.ERROR, "查询失败")
		return
	}
	response.Success(c, gin.H{
		"counts": counts,
		"mine":   mine,
	})
}
