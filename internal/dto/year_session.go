package dto

// ── 院系学年会话 DTO ──

// CreateYearSessionRequest 创建会话
type CreateYearSessionRequest struct {
	AcademicYearID string `json:"academic_year_id" binding:"required,uuid"`
	DepartmentID   string `json:"department_id"    binding:"required,uuid"`
}

// AdvanceYearSessionRequest 推进会话状态
type AdvanceYearSessionRequest struct {
	Status string `json:"status" binding:"required,oneof=on_registration in_progress completed"`
}

// YearSessionListRequest 会话列表查询
type YearSessionListRequest struct {
	PaginationRequest
	DepartmentID   string `form:"department_id"`
	AcademicYearID string `form:"academic_year_id"`
	Status         string `form:"status"`
	Keyword        string `form:"keyword"`
}

// YearSessionResponse 会话信息
type YearSessionResponse struct {
	ID             string              `json:"id"`
	AcademicYearID string              `json:"academic_year_id"`
	Year           int                 `json:"year"`
	YearStatus     string              `json:"year_status,omitempty"`
	Status         string              `json:"status"`
	Department     *DepartmentResponse `json:"department,omitempty"`
	CreatedAt      string              `json:"created_at"`
}

// [自证通过] internal/dto/year_session.go
