package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestNew_IsKind(t *testing.T) {
	err := New(ErrInvalidState, "会话未开放")

	if !errors.Is(err, ErrInvalidState) {
		t.Error("应归属 ErrInvalidState")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("不应归属 ErrNotFound")
	}
	if err.Error() != "会话未开放" {
		t.Errorf("期望消息=会话未开放，实际=%s", err.Error())
	}

	wrapped := fmt.Errorf("外层: %w", err)
	if KindOf(wrapped) != ErrInvalidState {
		t.Error("包装后仍应识别为 ErrInvalidState")
	}
}

func TestKindOf_Unknown(t *testing.T) {
	if KindOf(errors.New("boom")) != nil {
		t.Error("普通错误不应有类别")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})) {
		t.Error("23505 应识别为唯一约束冲突")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("23503 不是唯一约束冲突")
	}
	if IsUniqueViolation(errors.New("x")) {
		t.Error("普通错误不是唯一约束冲突")
	}
}
