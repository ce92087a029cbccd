package controller

import (
	"strconv"

	"team_collab_backend/internal/service"
	"team_collab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// FileController 附件上传与版本管理
type FileController struct {
	FileService *service.FileService
}

func NewFileController(fileService *service.FileService) *FileController {
	return &FileController{FileService: fileService}
}

// Upload godoc
// @Summary 上传附件
// @Description 上传文件到会话，可选通过 messageId 挂到某条消息
// @Tags 文件
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   file formData file true "文件"
// @Param   messageId formData string false "消息ID"
// @Success 201 {object} util.Response{data=model.File} "成功"
// @Failure 409 {object} util.Response "会话已归档"
// @Failure 429 {object} util.Response "触发限流"
// @Router /api/conversations/{id}/files [post]
func (ctrl *FileController) Upload(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		util.BadRequest(c, "file is required")
		return
	}

	file, err := ctrl.FileService.Upload(c.Request.Context(), c.Param("id"), c.PostForm("messageId"), claims.UserID, header)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Created(c, file)
}

// List godoc
// @Summary 会话附件列表
// @Tags 文件
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/conversations/{id}/files [get]
func (ctrl *FileController) List(c *gin.Context) {
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

	files, total, err := ctrl.FileService.ListForConversation(c.Param("id"), claims.UserID, limit, (page-1)*limit)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, util.PageResponse{
		List:  files,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Get godoc
// @Summary 文件详情
// @Tags 文件
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "文件ID"
// @Success 200 {object} util.Response{data=model.File} "成功"
// @Failure 404 {object} util.Response "文件不存在"
// @Router /api/files/{id} [get]
func (ctrl *FileController) Get(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	file, err := ctrl.FileService.Get(c.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, file)
}

// UploadVersion godoc
// @Summary 上传新版本
// @Description 服务端计算版本号，同一文件的版本号严格递增无空洞
// @Tags 文件
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "文件ID"
// @Param   file formData file true "文件"
// @Success 201 {object} util.Response{data=model.FileVersion} "成功"
// @Failure 422 {object} util.Response "原始文件不存在"
// @Failure 429 {object} util.Response "触发限流"
// @Router /api/files/{id}/versions [post]
func (ctrl *FileController) UploadVersion(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		util.BadRequest(c, "file is required")
		return
	}

	version, err := ctrl.FileService.UploadVersion(c.Request.Context(), c.Param("id"), claims.UserID, header)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Created(c, version)
}

// ListVersions godoc
// @Summary 版本历史
// @Description 按版本号升序返回全部版本
// @Tags 文件
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "文件ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/files/{id}/versions [get]
func (ctrl *FileController) ListVersions(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	versions, err := ctrl.FileService.ListVersions(c.Param("id"), claims.UserID)
	if err != nil {
		util.FromError(c, err)
		return
	}
	util.Success(c, versions)
}
