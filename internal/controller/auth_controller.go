package controller

import (
	"team_collab_backend/internal/model"
	"team_collab_backend/internal/service"
	"team_collab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required" example:"王小明"`
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"secret123"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// Register godoc
// @Summary 用户注册
// @Description 使用邮箱注册新账号
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   request body RegisterRequest true "注册请求"
// @Success 201 {object} util.Response{data=model.User} "成功"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 409 {object} util.Response "邮箱已注册"
// @Router /api/auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Member,
	}
	if err := ctrl.AuthService.Register(user); err != nil {
		util.FromError(c, err)
		return
	}

	util.Created(c, user)
}

// Login godoc
// @Summary 用户登录
// @Description 邮箱密码登录，返回JWT
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   request body LoginRequest true "登录请求"
// @Success 200 {object} util.Response "成功"
// @Failure 401 {object} util.Response "凭证无效"
// @Router /api/auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	token, err := ctrl.AuthService.Login(req.Email, req.Password)
	if err != nil {
		util.Unauthorized(c)
		return
	}

	util.Success(c, gin.H{"token": token})
}

// Me godoc
// @Summary 当前用户
// @Description 返回当前登录用户信息
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 401 {object} util.Response "未登录"
// @Router /api/auth/me [get]
func (ctrl *AuthController) Me(c *gin.Context) {
	user := ctrl.AuthService.GetCurrentUser(c)
	if user == nil {
		util.Unauthorized(c)
		return
	}
	util.Success(c, user)
}
