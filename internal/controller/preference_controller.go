package controller

import (
	"team_collab_backend/internal/service"
	"team_collab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// PreferenceController 用户在会话上的偏好、置顶与标签
type PreferenceController struct {
	PrefService *service.PreferenceService
}

func NewPreferenceController(prefService *service.PreferenceService) *PreferenceController {
	return &PreferenceController{PrefService: prefService}
}

// UpdatePreferenceRequest 偏好更新请求
type UpdatePreferenceRequest struct {
	Muted              *bool `json:"muted" example:"true"`
	EmailNotifications *bool `json:"emailNotifications" example:"false"`
}

// PinRequest 置顶请求
type PinRequest struct {
	DisplayOrder int `json:"displayOrder" example:"1"`
}

// LabelRequest 标签请求
type LabelRequest struct {
	Label string `json:"label" binding:"required,max=50" example:"重要"`
}

// GetPreference godoc
// @Summary 查询会话偏好
// @Description 无记录时返回默认偏好
// @Tags 偏好
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response{data=model.ConversationPreference} "成功"
// @Router /api/conversations/{id}/preferences [get]
func (ctrl *PreferenceController) GetPreference(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	pref, err := ctrl.PrefService.GetPreference(claims.UserID, c.Param("id"))
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, pref)
}

// UpdatePreference godoc
// @Summary 更新会话偏好
// @Description 只更新请求中携带的字段
// @Tags 偏好
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   request body UpdatePreferenceRequest true "偏好请求"
// @Success 200 {object} util.Response{data=model.ConversationPreference} "成功"
// @Router /api/conversations/{id}/preferences [put]
func (ctrl *PreferenceController) UpdatePreference(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	// 缺省字段沿用当前值
	current, err := ctrl.PrefService.GetPreference(claims.UserID, c.Param("id"))
	if err != nil {
		util.FromError(c, err)
		return
	}
	muted := current.Muted
	emailNotifications := current.EmailNotifications
	if req.Muted != nil {
		muted = *req.Muted
	}
	if req.EmailNotifications != nil {
		emailNotifications = *req.EmailNotifications
	}

	pref, err := ctrl.PrefService.UpdatePreference(claims.UserID, c.Param("id"), muted, emailNotifications)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, pref)
}

// Pin godoc
// @Summary 置顶会话
// @Description 重复置顶只更新展示顺序
// @Tags 偏好
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   request body PinRequest true "置顶请求"
// @Success 200 {object} util.Response "成功"
// @Router /api/conversations/{id}/pin [post]
func (ctrl *PreferenceController) Pin(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req PinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := ctrl.PrefService.Pin(claims.UserID, c.Param("id"), req.DisplayOrder); err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, gin.H{"pinned": true})
}

// Unpin godoc
// @Summary 取消置顶
// @Description 幂等：取消未置顶的会话也返回成功
// @Tags 偏好
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 204 "成功"
// @Router /api/conversations/{id}/pin [delete]
func (ctrl *PreferenceController) Unpin(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	if err := ctrl.PrefService.Unpin(claims.UserID, c.Param("id")); err != nil {
		util.FromError(c, err)
		return
	}
	util.NoContent(c)
}

// ListPins godoc
// @Summary 置顶列表
// @Tags 偏好
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "成功"
// @Router /api/pins [get]
func (ctrl *PreferenceController) ListPins(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	pins, err := ctrl.PrefService.ListPins(claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, pins)
}

// AddLabel godoc
// @Summary 添加标签
// @Description 用户私有标签，重复添加幂等
// @Tags 偏好
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   request body LabelRequest true "标签请求"
// @Success 201 {object} util.Response "成功"
// @Router /api/conversations/{id}/labels [post]
func (ctrl *PreferenceController) AddLabel(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := ctrl.PrefService.AddLabel(claims.UserID, c.Param("id"), req.Label); err != nil {
		util.FromError(c, err)
		return
	}
	util.Created(c, gin.H{"label": req.Label})
}

// RemoveLabel godoc
// @Summary 移除标签
// @Tags 偏好
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   label path string true "标签"
// @Success 204 "成功"
// @Router /api/conversations/{id}/labels/{label} [delete]
func (ctrl *PreferenceController) RemoveLabel(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	if err := ctrl.PrefService.RemoveLabel(claims.UserID, c.Param("id"), c.Param("label")); err != nil {
		util.FromError(c, err)
		return
	}
	util.NoContent(c)
}

// ListLabels godoc
// @Summary 标签列表
// @Description 只返回当前用户自己打的标签
// @Tags 偏好
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/conversations/{id}/labels [get]
func (ctrl *PreferenceController) ListLabels(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	labels, err := ctrl.PrefService.ListLabels(claims.UserID, c.Param("id"))
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, labels)
}
