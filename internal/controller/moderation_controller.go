package controller

import (
	"team_collab_backend/internal/model"
	"team_collab_backend/internal/service"
	"team_collab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ModerationController 消息治理日志
type ModerationController struct {
	ModService *service.ModerationService
}

func NewModerationController(modService *service.ModerationService) *ModerationController {
	return &ModerationController{ModService: modService}
}

// ModerationRequest 治理操作请求
type ModerationRequest struct {
	ActionType string `json:"actionType" binding:"required" example:"hide"`
	Reason     string `json:"reason" example:"违反社区规范"`
}

// Record godoc
// @Summary 记录治理操作
// @Description 针对消息追加一条治理记录，日志只增不改；flag任意成员可用，其余操作需owner或管理员
// @Tags 治理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "消息ID"
// @Param   request body ModerationRequest true "治理请求"
// @Success 201 {object} util.Response{data=model.ModerationAction} "成功"
// @Failure 422 {object} util.Response "未知操作类型"
// @Router /api/messages/{id}/moderation [post]
func (ctrl *ModerationController) Record(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req ModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	action, err := ctrl.ModService.Record(c.Param("id"), claims.UserID, model.ModerationActionType(req.ActionType), req.Reason, claims.Role == model.Admin)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Created(c, action)
}

// ListForMessage godoc
// @Summary 消息治理历史
// @Description 按时间倒序返回该消息的全部治理记录
// @Tags 治理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "消息ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/messages/{id}/moderation [get]
func (ctrl *ModerationController) ListForMessage(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	actions, err := ctrl.ModService.ListForMessage(c.Param("id"), claims.UserID, claims.Role == model.Admin)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, actions)
}
