package dto

// ── 用户模块 DTO ──

// CreateUserRequest 管理员创建用户
type CreateUserRequest struct {
	Username       string `json:"username"        binding:"required,min=3,max=50"`
	FullName       string `json:"full_name"       binding:"required,max=100"`
	Email          string `json:"email"           binding:"required,email"`
	Phone          string `json:"phone"           binding:"omitempty,max=20"`
	AcademicDegree string `json:"academic_degree" binding:"omitempty,max=50"`
	Role           string `json:"role"            binding:"required,oneof=student teacher assistant admin"`
	DepartmentID   string `json:"department_id"   binding:"omitempty,uuid"`
}

// UserListRequest 用户列表查询
type UserListRequest struct {
	PaginationRequest
	DepartmentID string `form:"department_id"`
	Role         string `form:"role"`
	Keyword      string `form:"keyword"`
}

// UpdateUserRequest 管理员修改用户（仅更新非 nil 字段）
type UpdateUserRequest struct {
	FullName       *string `json:"full_name"       binding:"omitempty,min=1,max=100"`
	Email          *string `json:"email"           binding:"omitempty,email"`
	Phone          *string `json:"phone"           binding:"omitempty,max=20"`
	AcademicDegree *string `json:"academic_degree" binding:"omitempty,max=50"`
	Role           *string `json:"role"            binding:"omitempty,oneof=student teacher assistant admin"`
	DepartmentID   *string `json:"department_id"   binding:"omitempty,uuid"`
}

// UpdateProfileRequest 用户修改个人资料，空字符串清空可选字段
type UpdateProfileRequest struct {
	FullName       *string `json:"full_name"       binding:"omitempty,max=100"`
	Email          *string `json:"email"           binding:"omitempty,email"`
	Phone          *string `json:"phone"           binding:"omitempty,max=20"`
	AcademicDegree *string `json:"academic_degree" binding:"omitempty,max=50"`
}

// EligibleAdvisorRequest 可选指导教师查询
type EligibleAdvisorRequest struct {
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID                 string              `json:"id"`
	Username           string              `json:"username"`
	FullName           string              `json:"full_name"`
	Email              string              `json:"email"`
	Phone              string              `json:"phone,omitempty"`
	AcademicDegree     string              `json:"academic_degree,omitempty"`
	AvatarURL          string              `json:"avatar_url,omitempty"`
	Role               string              `json:"role"`
	Department         *DepartmentResponse `json:"department,omitempty"`
	MustChangePassword bool                `json:"must_change_password"`
}

// CreateUserResponse 创建用户响应（含初始密码）
type CreateUserResponse struct {
	User         *UserResponse `json:"user"`
	TempPassword string        `json:"temp_password"`
}

// ImportUserResponse 批量导入结果
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
}

// ImportUserError 导入失败行
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// [自证通过] internal/dto/user.go
