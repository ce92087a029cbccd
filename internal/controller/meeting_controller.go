package controller

import (
	"strconv"
	"time"

	"team_collab_backend/internal/model"
	"team_collab_backend/internal/service"
	"team_collab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// MeetingController 会议预约、RSVP与提醒
type MeetingController struct {
	MeetingService  *service.MeetingService
	ReminderService *service.ReminderService
}

func NewMeetingController(meetingService *service.MeetingService, reminderService *service.ReminderService) *MeetingController {
	return &MeetingController{
		MeetingService:  meetingService,
		ReminderService: reminderService,
	}
}

// ScheduleMeetingRequest 预约会议请求
type ScheduleMeetingRequest struct {
	ConversationID string    `json:"conversationId" binding:"required" example:"uuid-conv"`
	Title          string    `json:"title" binding:"required" example:"周会"`
	ScheduledAt    time.Time `json:"scheduledAt" binding:"required" example:"2025-06-01T10:00:00Z"`
	MeetingLink    string    `json:"meetingLink" example:"https://meet.example.com/abc"`
}

// UpdateMeetingStatusRequest 会议状态变更请求
type UpdateMeetingStatusRequest struct {
	Status string `json:"status" binding:"required" example:"occurred"`
}

// RSVPRequest 参会表态请求
type RSVPRequest struct {
	RSVP string `json:"rsvp" binding:"required" example:"accepted"`
}

// ScheduleReminderRequest 添加提醒请求
type ScheduleReminderRequest struct {
	ReminderTime time.Time `json:"reminderTime" binding:"required" example:"2025-06-01T09:45:00Z"`
}

// Schedule godoc
// @Summary 预约会议
// @Description 在会话内预约会议，会话全体成员自动成为参与者
// @Tags 会议
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   request body ScheduleMeetingRequest true "预约请求"
// @Success 201 {object} util.Response{data=model.Meeting} "成功"
// @Failure 403 {object} util.Response "非成员"
// @Router /api/meetings [post]
func (ctrl *MeetingController) Schedule(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req ScheduleMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	meeting := &model.Meeting{
		ConversationID: req.ConversationID,
		Title:          req.Title,
		ScheduledAt:    req.ScheduledAt,
		MeetingLink:    req.MeetingLink,
	}
	created, err := ctrl.MeetingService.Schedule(meeting, claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Created(c, created)
}

// Get godoc
// @Summary 会议详情
// @Tags 会议
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会议ID"
// @Success 200 {object} util.Response{data=model.Meeting} "成功"
// @Router /api/meetings/{id} [get]
func (ctrl *MeetingController) Get(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	meeting, err := ctrl.MeetingService.Get(c.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, meeting)
}

// ListForConversation godoc
// @Summary 会话内会议列表
// @Tags 会议
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/conversations/{id}/meetings [get]
func (ctrl *MeetingController) ListForConversation(c *gin.Context) {
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

	meetings, total, err := ctrl.MeetingService.ListForConversation(c.Param("id"), claims.UserID, limit, (page-1)*limit)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, util.PageResponse{
		List:  meetings,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// UpdateStatus godoc
// @Summary 变更会议状态
// @Description scheduled -> occurred/cancelled，终态不可再变；仅创建者可操作
// @Tags 会议
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会议ID"
// @Param   request body UpdateMeetingStatusRequest true "状态变更请求"
// @Success 200 {object} util.Response{data=model.Meeting} "成功"
// @Failure 409 {object} util.Response "非法状态转移"
// @Router /api/meetings/{id}/status [patch]
func (ctrl *MeetingController) UpdateStatus(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req UpdateMeetingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	target := model.MeetingStatus(req.Status)
	if target != model.MeetingOccurred && target != model.MeetingCancelled {
		util.BadRequest(c, "status must be occurred or cancelled")
		return
	}

	meeting, err := ctrl.MeetingService.UpdateStatus(c.Param("id"), claims.UserID, target)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, meeting)
}

// RSVP godoc
// @Summary 参会表态
// @Description 重复表态直接覆盖；已取消的会议拒绝表态
// @Tags 会议
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会议ID"
// @Param   request body RSVPRequest true "表态请求"
// @Success 200 {object} util.Response{data=model.MeetingParticipant} "成功"
// @Router /api/meetings/{id}/rsvp [post]
func (ctrl *MeetingController) RSVP(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	rsvp := model.RSVPStatus(req.RSVP)
	switch rsvp {
	case model.RSVPAccepted, model.RSVPDeclined, model.RSVPTentative, model.RSVPPending:
	default:
		util.BadRequest(c, "invalid rsvp value")
		return
	}

	p, err := ctrl.MeetingService.RSVP(c.Param("id"), claims.UserID, rsvp)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, p)
}

// ScheduleReminder godoc
// @Summary 添加会议提醒
// @Description 已取消的会议拒绝新提醒
// @Tags 会议
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会议ID"
// @Param   request body ScheduleReminderRequest true "提醒请求"
// @Success 201 {object} util.Response{data=model.MeetingReminder} "成功"
// @Failure 409 {object} util.Response "会议已取消"
// @Router /api/meetings/{id}/reminders [post]
func (ctrl *MeetingController) ScheduleReminder(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req ScheduleReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	reminder, err := ctrl.MeetingService.ScheduleReminder(c.Param("id"), claims.UserID, req.ReminderTime)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Created(c, reminder)
}

// PendingReminders godoc
// @Summary 待派发提醒
// @Description 到点未派发的提醒列表，供巡检和外部派发器使用（管理员）
// @Tags 会议
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "最大条数"
// @Success 200 {object} util.Response "成功"
// @Router /api/reminders/pending [get]
func (ctrl *MeetingController) PendingReminders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	reminders, err := ctrl.ReminderService.Pending(limit)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, reminders)
}
