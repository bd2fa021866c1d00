package dto

// StatsRequest 统计范围
type StatsRequest struct {
	AcademicYearID string `form:"academic_year_id"`
	DepartmentID   string `form:"department_id"`
}

// StatsResponse 院系学年统计
type StatsResponse struct {
	AcademicYearID string           `json:"academic_year_id"`
	Year           int              `json:"year"`
	DepartmentID   string           `json:"department_id,omitempty"`
	TopicTotal     int64            `json:"topic_total"`
	Topics         map[string]int64 `json:"topics"`
	ApprovedTotal  int64            `json:"approved_total"`
	ApprovedTopics map[string]int64 `json:"approved_topics"`
	SessionStatus  string           `json:"session_status,omitempty"`
}
