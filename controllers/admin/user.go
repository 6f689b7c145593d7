package admin

import (
	"strconv"

	"whisper-wall/db"
	"whisper-wall/inout"
	"whisper-wall/model"
	"whisper-wall/pkg/security"

	"github.com/gin-gonic/gin"
)

// GetReviewerList 审核员列表
func GetReviewerList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var items []model.User
	var total int64
	query := db.Dao.Model(&model.User{})
	if err := query.Count(&total).Error; err != nil {
		Resp.Err(c, 20001, "查询失败")
		return
	}
	if err := query.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error; err != nil {
		Resp.Err(c, 20001, "查询失败")
		return
	}

	Resp.Succ(c, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// AddReviewer 新增审核员账号
func AddReviewer(c *gin.Context) {
	var params inout.AddReviewerReq
	if err := c.ShouldBind(&params); err != nil {
		Resp.Err(c, 20001, "参数错误: "+err.Error())
		return
	}

	if err := security.ValidateInput(params.Username); err != nil {
		Resp.Err(c, 20001, "用户名包含非法字符")
		return
	}

	var count int64
	db.Dao.Model(&model.User{}).Where("username = ?", params.Username).Count(&count)
	if count > 0 {
		Resp.Err(c, 20002, "用户名已存在")
		return
	}

	hash, err := security.HashPassword(params.Password)
	if err != nil {
		Resp.Err(c, 20001, "密码加密失败")
		return
	}

	reviewer := model.User{
		Username:       params.Username,
		PasswordBcrypt: hash,
		Enable:         true,
	}
	if err := db.Dao.Create(&reviewer).Error; err != nil {
		Resp.Err(c, 20001, "创建失败")
		return
	}

	Resp.Succ(c, gin.H{"id": reviewer.ID})
}

// SetReviewerEnable 启用/禁用审核员账号
func SetReviewerEnable(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		Resp.Err(c, 20001, "无效的账号ID")
		return
	}

	var params inout.SetReviewerEnableReq
	if err := c.ShouldBind(&params); err != nil {
		Resp.Err(c, 20001, "参数错误: "+err.Error())
		return
	}

	result := db.Dao.Model(&model.User{}).Where("id = ?", id).Update("enable", *params.Enable)
	if result.Error != nil {
		Resp.Err(c, 20001, "更新失败")
		return
	}
	if result.RowsAffected == 0 {
		Resp.Err(c, 20001, "账号不存在")
		return
	}

	Resp.Succ(c, true)
}

// ResetReviewerPassword 重置审核员密码
func ResetReviewerPassword(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		Resp.Err(c, 20001, "无效的账号ID")
		return
	}

	var params inout.ResetReviewerPasswordReq
	if err := c.ShouldBind(&params); err != nil {
		Resp.Err(c, 20001, "参数错误: "+err.Error())
		return
	}

	hash, err := security.HashPassword(params.Password)
	if err != nil {
		Resp.Err(c, 20001, "密码加密失败")
		return
	}

	result := db.Dao.Model(&model.User{}).Where("id = ?", id).Update("password_bcrypt", hash)
	if result.Error != nil {
		Resp.Err(c, 20001, "更新失败")
		return
	}
	if result.RowsAffected == 0 {
		Resp.Err(c, 20001, "账号不存在")
		return
	}

	Resp.Succ(c, true)
}
