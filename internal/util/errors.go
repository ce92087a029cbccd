package util

import "errors"

var (
	// 未找到
	ErrUserNotFound         = errors.New("用户不存在")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrReminderNotFound     = errors.New("reminder not found")

	// 权限
	ErrNotParticipant = errors.New("非会话成员无权操作")
	ErrNotSender      = errors.New("只有发送者可以修改或删除消息")

	// 冲突
	ErrEmailRegistered          = errors.New("该邮箱已被注册")
	ErrDuplicateParticipant     = errors.New("该用户已是会话成员")
	ErrConversationArchived     = errors.New("会话已归档，无法发送消息")
	ErrInvalidMeetingTransition = errors.New("invalid meeting status transition")
	ErrMeetingCancelled         = errors.New("会议已取消，无法添加提醒")
	ErrInvalidModerationAction  = errors.New("unknown moderation action type")
	ErrReminderAlreadySent      = errors.New("reminder already sent")

	// 版本链
	ErrVersionLineage = errors.New("version requested for a file with no base record")

	// 限流
	ErrRateLimited = errors.New("请求过于频繁，请稍后再试")
)
