package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ── 错误类别 ──
// 业务错误通过 New 归入以下类别，Handler 层按类别映射 HTTP 状态码。

var (
	ErrNotFound     = errors.New("资源不存在")
	ErrInvalidState = errors.New("当前状态不允许该操作")
	ErrConflict     = errors.New("数据冲突")
	ErrForbidden    = errors.New("无权限执行该操作")
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = New(ErrConflict, "数据已被其他操作修改，请刷新后重试")

// kindError 携带类别与可读原因的业务错误
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// New 创建归属于 kind 类别的业务错误，errors.Is(err, kind) 为 true
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// KindOf 返回错误所属类别，无法识别时返回 nil
func KindOf(err error) error {
	for _, k := range []error{ErrNotFound, ErrInvalidState, ErrConflict, ErrForbidden} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// IsUniqueViolation 判断是否为 PostgreSQL 唯一约束冲突（23505）
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
