package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"whisper-wall/db"
	"whisper-wall/inout"
	"whisper-wall/model"
	"whisper-wall/pkg/jwt"
	"whisper-wall/pkg/response"
	"whisper-wall/pkg/security"
	"whisper-wall/redis"
	"whisper-wall/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

var Auth = &auth{}

type auth struct {
}

func (auth) Captcha(c *gin.Context) {
	svg, code := utils.GenerateSVG(80, 40)
	session := sessions.Default(c)
	session.Set("captch", code)
	session.Save()
	// 设置 Content-Type 为 "image/svg+xml"
	c.Header("Content-Type", "image/svg+xml; charset=utf-8")
	// 返回验证码
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

func (auth) Login(c *gin.Context) {
	var params inout.LoginReq
	err := c.Bind(&params)
	if err != nil {
		response.Error(c, 20001, err.Error())
		return
	}

	// 验证输入安全性
	if err := security.ValidateInput(params.Username); err != nil {
		response.Error(c, 20001, "用户名包含非法字符")
		return
	}

	session := sessions.Default(c)
	if params.Captcha != session.Get("captch") {
		response.Error(c, 20001, "验证码不正确")
		return
	}

	var info *model.User
	// 首先查询审核员信息
	db.Dao.Model(model.User{}).Where("username = ?", params.Username).Find(&info)
	if info.ID == 0 {
		response.Error(c, 20001, "账号或密码不正确")
		return
	}

	if !info.Enable {
		response.Error(c, 20001, "账号已被禁用")
		return
	}

	if !security.CheckPasswordHash(params.Password, info.PasswordBcrypt) {
		response.Error(c, 20001, "账号或密码不正确")
		return
	}

	// 使用安全的JWT管理器
	jwtManager := jwt.NewSecureJWTManager()
	token, err := jwtManager.GenerateToken(info.ID)
	if err != nil {
		response.Error(c, 20001, "生成令牌失败")
		return
	}

	// 缓存审核员会话，失败不影响登录
	if err := redis.StoreReviewerSession(strconv.Itoa(info.ID), map[string]interface{}{
		"username": info.Username,
	}, 24*time.Hour); err != nil {
		log.Printf("缓存审核员会话失败: %v", err)
	}

	response.Success(c, inout.LoginRes{
		AccessToken: token,
	})
}

func (auth) Password(c *gin.Context) {
	var params inout.AuthPwReq
	err := c.Bind(&params)
	if err != nil {
		response.Error(c, 20001, err.Error())
		return
	}
	uid := c.GetInt("uid")

	var info *model.User
	db.Dao.Model(model.User{}).Where("id = ?", uid).Find(&info)
	if info.ID == 0 {
		response.Error(c, 20001, "账号不存在")
		return
	}

	if !security.CheckPasswordHash(params.OldPassword, info.PasswordBcrypt) {
		response.Error(c, 20001, "原密码不正确")
		return
	}

	newHash, err := security.HashPassword(params.NewPassword)
	if err != nil {
		response.Error(c, 20001, "密码加密失败")
		return
	}
	db.Dao.Model(model.User{}).Where("id = ?", uid).Update("password_bcrypt", newHash)

	response.Success(c, true)
}

// Profile 当前登录审核员信息，优先读会话缓存，未命中回源数据库并回填
func (auth) Profile(c *gin.Context) {
	uid := c.GetInt("uid")
	if uid <= 0 {
		response.Error(c, 20001, "未登录")
		return
	}

	if cached, err := redis.GetReviewerSession(strconv.Itoa(uid)); err == nil {
		response.Success(c, gin.H{
			"id":       uid,
			"username": cached["username"],
		})
		return
	}

	var info *model.User
	db.Dao.Model(model.User{}).Where("id = ?", uid).Find(&info)
	if info.ID == 0 {
		response.Error(c, 20001, "账号不存在")
		return
	}

	if err := redis.StoreReviewerSession(strconv.Itoa(info.ID), map[string]interface{}{
		"username": info.Username,
	}, 24*time.Hour); err != nil {
		log.Printf("缓存审核员会话失败: %v", err)
	}

	response.Success(c, gin.H{
		"id":       info.ID,
		"username": info.Username,
		"enable":   info.Enable,
	})
}

func (auth) Logout(c *gin.Context) {
	token := c.Request.Header.Get("Authorization")
	if len(token) > 7 && token[:7] == "Bearer " {
		token = token[7:]
	}
	if token != "" {
		// 撤销当前token（加入黑名单）
		if err := jwt.NewSecureJWTManager().RevokeToken(token); err != nil {
			log.Printf("撤销token失败: %v", err)
		}
	}
	if uid := c.GetInt("uid"); uid > 0 {
		if err := redis.DeleteReviewerSession(strconv.Itoa(uid)); err != nil {
			log.Printf("清除审核员会话失败: %v", err)
		}
	}
	response.Success(c, true)
}
