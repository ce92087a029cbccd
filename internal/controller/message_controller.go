package controller

import (
	"strconv"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/service"
	"team_collab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// MessageController 消息台账与回执
type MessageController struct {
	MsgService     *service.MessageService
	ReceiptService *service.ReceiptService
}

func NewMessageController(msgService *service.MessageService, receiptService *service.ReceiptService) *MessageController {
	return &MessageController{
		MsgService:     msgService,
		ReceiptService: receiptService,
	}
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Content string `json:"content" binding:"required" example:"大家好"`
}

// EditMessageRequest 编辑消息请求
type EditMessageRequest struct {
	Content string `json:"content" binding:"required" example:"修改后的内容"`
}

// Send godoc
// @Summary 发送消息
// @Description 向会话追加一条消息，同步更新成员未读数并预建回执
// @Tags 消息
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   request body SendMessageRequest true "发送消息请求"
// @Success 201 {object} util.Response{data=model.Message} "成功"
// @Failure 403 {object} util.Response "非成员"
// @Failure 409 {object} util.Response "会话已归档"
// @Failure 429 {object} util.Response "触发限流"
// @Router /api/conversations/{id}/messages [post]
func (ctrl *MessageController) Send(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	msg, err := ctrl.MsgService.Send(c.Param("id"), claims.UserID, req.Content)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Created(c, msg)
}

// List godoc
// @Summary 消息列表
// @Description 按时间倒序翻页，beforeId 为上一页最后一条消息ID
// @Tags 消息
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   limit query int false "每页条数"
// @Param   offset query int false "偏移量"
// @Param   beforeId query string false "翻页游标"
// @Success 200 {object} util.Response "成功"
// @Router /api/conversations/{id}/messages [get]
func (ctrl *MessageController) List(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	msgs, err := ctrl.MsgService.List(c.Param("id"), claims.UserID, limit, offset, c.Query("beforeId"))
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, msgs)
}

// Search godoc
// @Summary 搜索消息
// @Description 在当前用户参与的会话内按内容匹配，可选限定单个会话
// @Tags 消息
// @Produce  json
// @Security ApiKeyAuth
// @Param   query query string true "搜索关键词"
// @Param   conversationId query string false "限定会话ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/messages/search [get]
func (ctrl *MessageController) Search(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	query := c.Query("query")
	if query == "" {
		util.BadRequest(c, "query is required")
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

	msgs, total, err := ctrl.MsgService.Search(claims.UserID, query, c.Query("conversationId"), limit, (page-1)*limit)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, util.PageResponse{
		List:  msgs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Get godoc
// @Summary 消息详情
// @Tags 消息
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "消息ID"
// @Success 200 {object} util.Response{data=model.Message} "成功"
// @Router /api/messages/{id} [get]
func (ctrl *MessageController) Get(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	msg, err := ctrl.MsgService.Get(c.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, msg)
}

// Edit godoc
// @Summary 编辑消息
// @Description 仅发送者本人可编辑，已删除消息不可编辑
// @Tags 消息
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "消息ID"
// @Param   request body EditMessageRequest true "编辑请求"
// @Success 200 {object} util.Response{data=model.Message} "成功"
// @Failure 403 {object} util.Response "非发送者"
// @Router /api/messages/{id} [patch]
func (ctrl *MessageController) Edit(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	msg, err := ctrl.MsgService.Edit(c.Param("id"), claims.UserID, req.Content)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, msg)
}

// Delete godoc
// @Summary 删除消息
// @Description 软删除，保留台账行；发送者或管理员可操作
// @Tags 消息
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "消息ID"
// @Success 200 {object} util.Response{data=model.Message} "成功"
// @Router /api/messages/{id} [delete]
func (ctrl *MessageController) Delete(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	isAdmin := string(claims.Role) == string(model.Admin)
	msg, err := ctrl.MsgService.Delete(c.Param("id"), claims.UserID, isAdmin)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, msg)
}

// MarkDelivered godoc
// @Summary 上报送达
// @Description 幂等：重复上报保留最早时间戳
// @Tags 回执
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "消息ID"
// @Success 200 {object} util.Response{data=model.Receipt} "成功"
// @Router /api/messages/{id}/delivered [post]
func (ctrl *MessageController) MarkDelivered(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	receipt, err := ctrl.ReceiptService.MarkDelivered(c.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, receipt)
}

// MarkRead godoc
// @Summary 上报已读
// @Description 幂等；允许未上报送达直接上报已读
// @Tags 回执
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "消息ID"
// @Success 200 {object} util.Response{data=model.Receipt} "成功"
// @Router /api/messages/{id}/read [post]
func (ctrl *MessageController) MarkRead(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	receipt, err := ctrl.ReceiptService.MarkRead(c.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, receipt)
}

// Receipts godoc
// @Summary 消息回执汇总
// @Tags 回执
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "消息ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/messages/{id}/receipts [get]
func (ctrl *MessageController) Receipts(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	receipts, err := ctrl.ReceiptService.ListForMessage(c.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, receipts)
}

// UnreadCount godoc
// @Summary 会话未读数（回执口径）
// @Description 按未读回执统计，用于与成员行未读计数交叉核对
// @Tags 回执
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/conversations/{id}/unread [get]
func (ctrl *MessageController) UnreadCount(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	count, err := ctrl.ReceiptService.UnreadCount(c.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, gin.H{"unreadCount": count})
}
