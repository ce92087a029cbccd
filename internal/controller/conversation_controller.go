package controller

import (
	"strconv"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/service"
	"team_collab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ConversationController 会话与成员管理
type ConversationController struct {
	ConvService *service.ConversationService
}

func NewConversationController(convService *service.ConversationService) *ConversationController {
	return &ConversationController{ConvService: convService}
}

// CreateConversationRequest 创建会话请求
type CreateConversationRequest struct {
	Title             string   `json:"title" binding:"required" example:"项目讨论组"`
	Type              string   `json:"type" example:"group"`
	MemberIDs         []uint   `json:"memberIds" swaggertype:"array,number" example:"2,3"`
	RelatedEntityType string   `json:"relatedEntityType" example:"project"`
	RelatedEntityID   string   `json:"relatedEntityId" example:"proj-42"`
}

// UpdateConversationRequest 更新会话请求，仅标题与实体关联可改
type UpdateConversationRequest struct {
	Title             *string `json:"title" example:"新标题"`
	RelatedEntityType *string `json:"relatedEntityType" example:"project"`
	RelatedEntityID   *string `json:"relatedEntityId" example:"proj-42"`
}

// AddParticipantRequest 添加成员请求
type AddParticipantRequest struct {
	UserID uint `json:"userId" binding:"required" example:"5"`
}

// Create godoc
// @Summary 创建会话
// @Description 创建会话并加入首批成员，创建者自动成为owner
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   request body CreateConversationRequest true "创建会话请求"
// @Success 201 {object} util.Response{data=model.Conversation} "成功"
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/conversations [post]
func (ctrl *ConversationController) Create(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	convType := model.ConversationType(req.Type)
	if convType == "" {
		convType = model.ConversationGroup
	}
	switch convType {
	case model.ConversationDirect, model.ConversationGroup, model.ConversationEntity:
	default:
		util.BadRequest(c, "invalid conversation type")
		return
	}

	conv := &model.Conversation{
		Title:             req.Title,
		Type:              convType,
		RelatedEntityType: req.RelatedEntityType,
		RelatedEntityID:   req.RelatedEntityID,
		CreatedBy:         claims.UserID,
	}
	created, err := ctrl.ConvService.Create(conv, req.MemberIDs)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Created(c, created)
}

// List godoc
// @Summary 会话列表
// @Description 当前用户参与的会话，按最近消息倒序
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   query query string false "标题搜索"
// @Param   archived query bool false "归档过滤"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/conversations [get]
func (ctrl *ConversationController) List(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var archived *bool
	if v := c.Query("archived"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			archived = &b
		}
	}

	convs, total, err := ctrl.ConvService.List(claims.UserID, c.Query("query"), archived, limit, (page-1)*limit)
	if err != nil {
		util.FromError(c, err)
		return
	}

	util.Success(c, util.PageResponse{
		List:  convs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Get godoc
// @Summary 会话详情
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response{data=model.Conversation} "成功"
// @Failure 403 {object} util.Response "非成员"
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/conversations/{id} [get]
func (ctrl *ConversationController) Get(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	conv, err := ctrl.ConvService.Get(c.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, conv)
}

// ByRelatedEntity godoc
// @Summary 按业务实体查会话
// @Description 查找关联到某个外部业务实体的会话，只返回用户参与的
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   entityType query string true "实体类型"
// @Param   entityId query string true "实体ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/conversations/by-entity [get]
func (ctrl *ConversationController) ByRelatedEntity(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	entityType := c.Query("entityType")
	entityID := c.Query("entityId")
	if entityType == "" || entityID == "" {
		util.BadRequest(c, "entityType and entityId are required")
		return
	}

	convs, err := ctrl.ConvService.FindByRelatedEntity(entityType, entityID, claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, convs)
}

// Update godoc
// @Summary 更新会话
// @Description 仅标题与业务实体关联可更新，归档会话不可改
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   request body UpdateConversationRequest true "更新会话请求"
// @Success 200 {object} util.Response{data=model.Conversation} "成功"
// @Failure 409 {object} util.Response "已归档"
// @Router /api/conversations/{id} [put]
func (ctrl *ConversationController) Update(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	conv, err := ctrl.ConvService.Update(c.Param("id"), claims.UserID, req.Title, req.RelatedEntityType, req.RelatedEntityID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, conv)
}

// Archive godoc
// @Summary 归档会话
// @Description 归档后只读，不可恢复，仅owner可操作
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response "成功"
// @Failure 409 {object} util.Response "已归档"
// @Router /api/conversations/{id}/archive [post]
func (ctrl *ConversationController) Archive(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	if err := ctrl.ConvService.Archive(c.Param("id"), claims.UserID); err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, gin.H{"archived": true})
}

// AddParticipant godoc
// @Summary 添加成员
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   request body AddParticipantRequest true "添加成员请求"
// @Success 201 {object} util.Response "成功"
// @Failure 409 {object} util.Response "已是成员"
// @Router /api/conversations/{id}/participants [post]
func (ctrl *ConversationController) AddParticipant(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if err := ctrl.ConvService.AddParticipant(c.Param("id"), claims.UserID, req.UserID); err != nil {
		util.FromError(c, err)
		return
	}
	util.Created(c, gin.H{"userId": req.UserID})
}

// RemoveParticipant godoc
// @Summary 移除成员
// @Description owner可移除任意成员，普通成员只能退出
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   userId path int true "用户ID"
// @Success 204 "成功"
// @Router /api/conversations/{id}/participants/{userId} [delete]
func (ctrl *ConversationController) RemoveParticipant(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	userID := util.MustParseUint(c.Param("userId"))
	if err := ctrl.ConvService.RemoveParticipant(c.Param("id"), claims.UserID, userID); err != nil {
		util.FromError(c, err)
		return
	}
	util.NoContent(c)
}

// MarkRead godoc
// @Summary 标记会话已读
// @Description 推进已读游标并清零未读数
// @Tags 会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response{data=model.Participant} "成功"
// @Router /api/conversations/{id}/read [post]
func (ctrl *ConversationController) MarkRead(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	p, err := ctrl.ConvService.MarkRead(c.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, p)
}
