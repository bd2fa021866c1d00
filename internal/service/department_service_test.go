package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/dto"
)

func setupTestDepartmentService() (DepartmentService, *mockDB) {
	db := newMockDB()
	return NewDepartmentService(newMockRepository(db), zap.NewNop()), db
}

func TestDepartmentService_Create(t *testing.T) {
	svc, db := setupTestDepartmentService()
	seedDepartment(db, "CS", "Khoa CNTT")
	ctx := context.Background()

	resp, err := svc.Create(ctx, &dto.CreateDepartmentRequest{Code: "MATH", Name: "Khoa Toán"}, "user-admin")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.ID == "" || resp.Code != "MATH" {
		t.Errorf("院系信息不正确: %+v", resp)
	}

	_, err = svc.Create(ctx, &dto.CreateDepartmentRequest{Code: "CS", Name: "Trùng mã"}, "user-admin")
	if !errors.Is(err, ErrDepartmentCodeExists) {
		t.Errorf("期望 ErrDepartmentCodeExists，实际: %v", err)
	}
}

func TestDepartmentService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestDepartmentService()

	if _, err := svc.GetByID(context.Background(), "dept-NONE"); !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("期望 ErrDepartmentNotFound，实际: %v", err)
	}
}

func TestDepartmentService_List(t *testing.T) {
	svc, db := setupTestDepartmentService()
	seedDepartment(db, "PHYS", "Khoa Vật lý")
	seedDepartment(db, "CS", "Khoa CNTT")

	result, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 2 || result[0].Code != "CS" {
		t.Errorf("期望按代码排序 2 条，实际: %+v", result)
	}
}

func TestDepartmentService_Update_RenameOnly(t *testing.T) {
	svc, db := setupTestDepartmentService()
	dept := seedDepartment(db, "CS", "Khoa CNTT")
	ctx := context.Background()

	resp, err := svc.Update(ctx, dept.DepartmentID, &dto.UpdateDepartmentRequest{Name: "Khoa Công nghệ Thông tin"}, "user-admin")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Name != "Khoa Công nghệ Thông tin" || resp.Code != "CS" {
		t.Errorf("期望仅名称变化，实际: %+v", resp)
	}
	if db.departments[dept.DepartmentID].Name != resp.Name {
		t.Error("更名未写入存储")
	}

	_, err = svc.Update(ctx, "dept-NONE", &dto.UpdateDepartmentRequest{Name: "X"}, "user-admin")
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("期望 ErrDepartmentNotFound，实际: %v", err)
	}
}
