package app

import (
	"strconv"
	"time"

	"whisper-wall/db"
	"whisper-wall/inout"
	"whisper-wall/model/app_model"
	"whisper-wall/pkg/cache"
	"whisper-wall/pkg/response"
	"whisper-wall/services/app_service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const firstPageCacheKey = "confession:list:first_page"

// CreateConfession 发布表白帖。写库成功立即返回（乐观发布），
// 封禁检查和内容审核在后台跑，不阻塞提交路径。
func CreateConfession(c *gin.Context) {
	var req inout.CreateConfessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	confession, err := app_service.Pipeline.SubmitConfession(
		c.Request.Context(),
		req.SubmissionID,
		req.Content,
		c.GetString("client_ip"),
		c.GetString("client_token"),
	)
	if err != nil {
		response.Error(c, response.ERROR, "发布失败")
		return
	}

	// 新帖发布后让首页缓存失效
	if cache.GlobalCache != nil {
		cache.GlobalCache.Delete(c.Request.Context(), firstPageCacheKey)
	}

	response.Success(c, confession)
}

// GetConfessionList 帖子列表。NSFW内容默认过滤，客户端开关打开时带标记返回，
// 由客户端决定模糊展示——审核只降权，不删除。
func GetConfessionList(c *gin.Context) {
	var req inout.ConfessionListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	// 首页是热点路径，短TTL缓存
	cacheable := req.Page == 1 && !req.ShowNSFW
	if cacheable && cache.GlobalCache != nil {
		var cached gin.H
		if err := cache.GlobalCache.Get(c.Request.Context(), firstPageCacheKey, &cached); err == nil {
			response.Success(c, cached)
			return
		}
	}

	query := db.Dao.WithContext(c.Request.Context()).Model(&app_model.Confession{})
	if !req.ShowNSFW {
		query = query.Where("is_nsfw = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, response.ERROR, "获取帖子总数失败")
		return
	}

	var confessions []app_model.Confession
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&confessions).Error; err != nil {
		response.Error(c, response.ERROR, "获取帖子列表失败")
		return
	}

	result := gin.H{
		"total": total,
		"list":  confessions,
	}
	if cacheable && cache.GlobalCache != nil {
		cache.GlobalCache.Set(c.Request.Context(), firstPageCacheKey, result, 10*time.Second)
	}

	response.Success(c, result)
}

// GetConfessionDetail 帖子详情
func GetConfessionDetail(c *gin.Context) {
	confessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "无效的帖子ID")
		return
	}

	var confession app_model.Confession
	if err := db.Dao.WithContext(c.Request.Context()).First(&confession, confessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Error(c, response.NOT_FOUND, "帖子不存在")
		} else {
			response.Error(c, response.ERROR, "获取帖子详情失败")
		}
		return
	}

	response.Success(c, confession)
}

// CreateReply 在某个帖子下发布回复
func CreateReply(c *gin.Context) {
	confessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "无效的帖子ID")
		return
	}

	var req inout.CreateReplyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}

	// 父帖必须存在
	var confession app_model.Confession
	if err := db.Dao.WithContext(c.Request.Context()).First(&confession, confessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Error(c, response.NOT_FOUND, "帖子不存在")
		} else {
			response.Error(c, response.ERROR, "查询帖子失败")
		}
		return
	}

	reply, err := app_service.Pipeline.SubmitReply(
		c.Request.Context(),
		uint(confessionID),
		req.SubmissionID,
		req.Content,
		c.GetString("client_ip"),
		c.GetString("client_token"),
	)
	if err != nil {
		response.Error(c, response.ERROR, "回复失败")
		return
	}

	response.Success(c, reply)
}

// GetReplyList 某帖的回复列表
func GetReplyList(c *gin.Context) {
	confessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, response.INVALID_PARAMS, "无效的帖子ID")
		return
	}

	var req inout.ReplyListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, response.INVALID_PARAMS, err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 50
	}

	query := db.Dao.WithContext(c.Request.Context()).
		Model(&app_model.Reply{}).
		Where("confession_id = ?", confessionID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Error(c, response.ERROR, "获取回复总数失败")
		return
	}

	var replies []app_model.Reply
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at ASC").Offset(offset).Limit(req.PageSize).Find(&replies).Error; err != nil {
		response.Error(c, response.ERROR, "获取回复列表失败")
		return
	}

	response.Success(c, gin.H{
		"total": total,
		"list":  replies,
	})
}
