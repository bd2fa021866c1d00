package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/dto"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/lifecycle"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
)

func setupTestAcademicYearService() (AcademicYearService, *mockDB) {
	db := newMockDB()
	return NewAcademicYearService(newMockRepository(db), zap.NewNop()), db
}

func activeYears(db *mockDB) []string {
	var ids []string
	for id, y := range db.years {
		if y.IsActive {
			ids = append(ids, id)
		}
	}
	return ids
}

// ── Create 测试 ──

func TestAcademicYearService_Create(t *testing.T) {
	svc, db := setupTestAcademicYearService()
	seedYear(db, 2023, model.YearStatusStart, true)
	ctx := context.Background()

	resp, err := svc.Create(ctx, &dto.CreateAcademicYearRequest{Year: 2024, IsActive: true}, "user-admin")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Status != model.YearStatusStart || !resp.IsActive {
		t.Errorf("期望 start 且激活，实际: %+v", resp)
	}
	if ids := activeYears(db); len(ids) != 1 || ids[0] != resp.ID {
		t.Errorf("同一时刻仅允许一个激活学年，实际: %v", ids)
	}

	_, err = svc.Create(ctx, &dto.CreateAcademicYearRequest{Year: 2024}, "user-admin")
	if !errors.Is(err, ErrAcademicYearExists) {
		t.Errorf("重复年份期望 ErrAcademicYearExists，实际: %v", err)
	}
}

// ── Activate / Update 测试 ──

func TestAcademicYearService_Activate(t *testing.T) {
	svc, db := setupTestAcademicYearService()
	seedYear(db, 2023, model.YearStatusStart, true)
	next := seedYear(db, 2024, model.YearStatusStart, false)

	resp, err := svc.Activate(context.Background(), next.AcademicYearID, "user-admin")
	if err != nil {
		t.Fatalf("Activate 应成功: %v", err)
	}
	if !resp.IsActive {
		t.Error("期望学年已激活")
	}
	if ids := activeYears(db); len(ids) != 1 || ids[0] != next.AcademicYearID {
		t.Errorf("期望仅 2024 激活，实际: %v", ids)
	}

	current, err := svc.GetCurrent(context.Background())
	if err != nil || current.Year != 2024 {
		t.Errorf("GetCurrent 期望 2024，实际: %+v, %v", current, err)
	}
}

func TestAcademicYearService_Update_Year(t *testing.T) {
	svc, db := setupTestAcademicYearService()
	dept := seedDepartment(db, "CS", "Khoa CNTT")
	year := seedYear(db, 2024, model.YearStatusStart, true)
	session := seedSession(db, year, dept, model.SessionStatusOnRegistration)
	seedYear(db, 2026, model.YearStatusStart, false)
	ctx := context.Background()

	value := 2025
	resp, err := svc.Update(ctx, year.AcademicYearID, &dto.UpdateAcademicYearRequest{Year: &value}, "user-admin")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Year != 2025 || db.sessions[session.YearSessionID].Year != 2025 {
		t.Errorf("会话冗余年份应同步，实际 year=%d session=%d", resp.Year, db.sessions[session.YearSessionID].Year)
	}

	taken := 2026
	_, err = svc.Update(ctx, year.AcademicYearID, &dto.UpdateAcademicYearRequest{Year: &taken}, "user-admin")
	if !errors.Is(err, ErrAcademicYearExists) {
		t.Errorf("期望 ErrAcademicYearExists，实际: %v", err)
	}

	_, err = svc.Update(ctx, "year-1999", &dto.UpdateAcademicYearRequest{Year: &value}, "user-admin")
	if !errors.Is(err, ErrAcademicYearNotFound) {
		t.Errorf("期望 ErrAcademicYearNotFound，实际: %v", err)
	}
}

// ── Close 测试 ──

func TestAcademicYearService_Close(t *testing.T) {
	svc, db := setupTestAcademicYearService()
	cs := seedDepartment(db, "CS", "Khoa CNTT")
	math := seedDepartment(db, "MATH", "Khoa Toán")
	year := seedYear(db, 2024, model.YearStatusStart, true)
	seedSession(db, year, cs, model.SessionStatusCompleted)
	open := seedSession(db, year, math, model.SessionStatusInProgress)
	ctx := context.Background()

	_, err := svc.Close(ctx, year.AcademicYearID, "user-admin")
	if !errors.Is(err, lifecycle.ErrYearSessionsOpen) {
		t.Fatalf("仍有会话未完成期望 ErrYearSessionsOpen，实际: %v", err)
	}
	if db.years[year.AcademicYearID].Status != model.YearStatusStart {
		t.Fatal("关闭失败不应修改学年状态")
	}

	db.sessions[open.YearSessionID].Status = model.SessionStatusCompleted
	resp, err := svc.Close(ctx, year.AcademicYearID, "user-admin")
	if err != nil {
		t.Fatalf("Close 应成功: %v", err)
	}
	if resp.Status != model.YearStatusEnd {
		t.Errorf("期望 end，实际=%s", resp.Status)
	}

	_, err = svc.Close(ctx, year.AcademicYearID, "user-admin")
	if !errors.Is(err, lifecycle.ErrYearEnded) {
		t.Errorf("重复关闭期望 ErrYearEnded，实际: %v", err)
	}
}

func TestAcademicYearService_Close_ThenAdvanceRejected(t *testing.T) {
	db := newMockDB()
	repo := newMockRepository(db)
	years := NewAcademicYearService(repo, zap.NewNop())
	sessions := NewYearSessionService(repo, zap.NewNop())
	dept := seedDepartment(db, "CS", "Khoa CNTT")
	year := seedYear(db, 2024, model.YearStatusStart, true)
	session := seedSession(db, year, dept, model.SessionStatusCompleted)
	ctx := context.Background()

	if _, err := years.Close(ctx, year.AcademicYearID, "user-admin"); err != nil {
		t.Fatalf("Close 应成功: %v", err)
	}
	_, err := sessions.Advance(ctx, session.YearSessionID, model.SessionStatusOnRegistration, adminCaller())
	if !errors.Is(err, lifecycle.ErrYearEnded) {
		t.Errorf("学年结束后推进会话期望 ErrYearEnded，实际: %v", err)
	}
}

// ── 查询测试 ──

func TestAcademicYearService_GetByID_TopicCount(t *testing.T) {
	svc, db := setupTestAcademicYearService()
	dept := seedDepartment(db, "CS", "Khoa CNTT")
	year := seedYear(db, 2024, model.YearStatusStart, true)
	session := seedSession(db, year, dept, model.SessionStatusOnRegistration)
	seedTopic(db, "t1", model.TopicStatusPending, session)
	seedTopic(db, "t2", model.TopicStatusApproved, session)
	ctx := context.Background()

	resp, err := svc.GetByID(ctx, year.AcademicYearID)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if resp.TopicCount != 2 {
		t.Errorf("期望课题数 2，实际 %d", resp.TopicCount)
	}

	if _, err := svc.GetByID(ctx, "year-1999"); !errors.Is(err, ErrAcademicYearNotFound) {
		t.Errorf("期望 ErrAcademicYearNotFound，实际: %v", err)
	}
}

func TestAcademicYearService_GetCurrent_None(t *testing.T) {
	svc, db := setupTestAcademicYearService()
	seedYear(db, 2024, model.YearStatusStart, false)

	if _, err := svc.GetCurrent(context.Background()); !errors.Is(err, ErrNoActiveYear) {
		t.Errorf("期望 ErrNoActiveYear，实际: %v", err)
	}
}

func TestAcademicYearService_List(t *testing.T) {
	svc, db := setupTestAcademicYearService()
	seedYear(db, 2022, model.YearStatusEnd, false)
	seedYear(db, 2023, model.YearStatusEnd, false)
	seedYear(db, 2024, model.YearStatusStart, true)

	result, total, err := svc.List(context.Background(), &dto.AcademicYearListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 3 || result[0].Year != 2024 {
		t.Errorf("期望按年份倒序共 3 条，实际 total=%d first=%+v", total, result[0])
	}

	active := true
	_, total, _ = svc.List(context.Background(), &dto.AcademicYearListRequest{IsActive: &active})
	if total != 1 {
		t.Errorf("筛选激活学年期望 1 条，实际 %d", total)
	}
}
