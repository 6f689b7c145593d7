package admin

import (
	"strconv"

	"whisper-wall/db"
	"whisper-wall/model/app_model"
	"whisper-wall/pkg/response"
	"whisper-wall/services/app_service"

	"github.com/gin-gonic/gin"
)

// GetSensitiveWordList 敏感词列表
func GetSensitiveWordList(c *gin.Context) {
	var words []app_model.SensitiveWord
	if err := db.Dao.WithContext(c.Request.Context()).Order("id DESC").Find(&words).Error; err != nil {
		response.Error(c, response.ERROR, "获取敏感词列表失败")
		return
	}
	response.Success(c, words)
}

// AddSensitiveWord 新增敏感词并刷新缓存
func AddSensitiveWord(c *gin.Context) {
	var req struct {
		Word  string `json:"word" binding:"required,max=100"`
		Level int    `json:"level" binding:"omitempty,min=1,max=3"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}
	if req.Level == 0 {
		req.Level = 1
	}

	word := app_model.SensitiveWord{
		Word:      req.Word,
		Level:     req.Level,
		IsEnabled: true,
	}
	if err := db.Dao.WithContext(c.Request.Context()).Create(&word).Error; err != nil {
		response.Error(c, response.ERROR, "新增敏感词失败")
		return
	}

	if err := app_service.RefreshSensitiveWordsCache(); err != nil {
		response.Error(c, response.ERROR, "刷新缓存失败")
		return
	}
	response.Success(c, word)
}

// DeleteSensitiveWord 删除敏感词并刷新缓存
func DeleteSensitiveWord(c *gin.Context) {
	wordID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "无效的ID")
		return
	}

	result := db.Dao.WithContext(c.Request.Context()).Delete(&app_model.SensitiveWord{}, wordID)
	if result.Error != nil {
		response.Error(c, response.ERROR, "删除敏感词失败")
		return
	}
	if result.RowsAffected == 0 {
		response.Error(c, response.NOT_FOUND, "敏感词不存在")
		return
	}

	if err := app_service.RefreshSensitiveWordsCache(); err != nil {
		response.Error(c, response.ERROR, "刷新缓存失败")
		return
	}
	response.Success(c, nil)
}

// RefreshSensitiveWordCache 手动刷新敏感词缓存，直接改库后调用
func RefreshSensitiveWordCache(c *gin.Context) {
	if err := app_service.RefreshSensitiveWordsCache(); err != nil {
		response.Error(c, response.ERROR, "刷新缓存失败")
		return
	}
	response.Success(c, true)
}
