package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/dto"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/lifecycle"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/repository"
	pkgerrors "github.com/TruongPersonal/HUSC-ResearchHub/pkg/errors"
)

// ── 会话模块业务错误 ──

var (
	ErrSessionNotFound  = pkgerrors.New(pkgerrors.ErrNotFound, "该院系在本学年尚未开放登记会话")
	ErrSessionDuplicate = pkgerrors.New(pkgerrors.ErrConflict, "该院系在本学年已存在会话")
	ErrSessionHasTopics = pkgerrors.New(pkgerrors.ErrInvalidState, "会话下已有课题，不能删除")
)

// YearSessionService 院系学年会话业务接口
type YearSessionService interface {
	Create(ctx context.Context, req *dto.CreateYearSessionRequest, caller Caller) (*dto.YearSessionResponse, error)
	GetByID(ctx context.Context, id string) (*dto.YearSessionResponse, error)
	List(ctx context.Context, req *dto.YearSessionListRequest, caller Caller) ([]dto.YearSessionResponse, int64, error)
	// OpenSessionFor 查找院系在学年下的会话
	OpenSessionFor(ctx context.Context, departmentID, academicYearID string) (*dto.YearSessionResponse, error)
	// GetMine 调用方所在院系的会话，academicYearID 为空时取当前学年
	GetMine(ctx context.Context, caller Caller, academicYearID string) (*dto.YearSessionResponse, error)
	// Advance 推进会话状态，按目标状态校验范围内课题
	Advance(ctx context.Context, id, target string, caller Caller) (*dto.YearSessionResponse, error)
	Delete(ctx context.Context, id string, caller Caller) error
}

type yearSessionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewYearSessionService 创建 YearSessionService 实例
func NewYearSessionService(repo *repository.Repository, logger *zap.Logger) YearSessionService {
	return &yearSessionService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *yearSessionService) Create(ctx context.Context, req *dto.CreateYearSessionRequest, caller Caller) (*dto.YearSessionResponse, error) {
	if !caller.CanManageDepartment(req.DepartmentID) {
		return nil, ErrNoPermission
	}

	var created *model.YearSession
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		year, err := txRepo.AcademicYear.GetByIDForUpdate(ctx, req.AcademicYearID)
		if err != nil {
			if isNotFound(err) {
				return ErrAcademicYearNotFound
			}
			return err
		}
		if err := lifecycle.CheckYearOpen(year); err != nil {
			return err
		}

		dept, err := txRepo.Department.GetByID(ctx, req.DepartmentID)
		if err != nil {
			if isNotFound(err) {
				return ErrDepartmentNotFound
			}
			return err
		}

		if _, err := txRepo.YearSession.GetByScope(ctx, year.AcademicYearID, dept.DepartmentID); err == nil {
			return ErrSessionDuplicate
		} else if !isNotFound(err) {
			return err
		}

		session := &model.YearSession{
			AcademicYearID: year.AcademicYearID,
			DepartmentID:   dept.DepartmentID,
			Year:           year.Year,
			Status:         model.SessionStatusOnRegistration,
		}
		session.Audit(caller.UserID)
		if err := txRepo.YearSession.Create(ctx, session); err != nil {
			return err
		}
		session.AcademicYear = year
		session.Department = dept
		created = session
		return nil
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrSessionDuplicate
		}
		return nil, logFailure(s.logger, "创建会话失败", err, zap.String("department_id", req.DepartmentID))
	}

	s.logger.Info("会话已创建",
		zap.String("id", created.YearSessionID),
		zap.String("department_id", created.DepartmentID),
		zap.Int("year", created.Year))
	return toYearSessionResponse(created), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *yearSessionService) GetByID(ctx context.Context, id string) (*dto.YearSessionResponse, error) {
	session, err := s.repo.YearSession.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询会话失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toYearSessionResponse(session), nil
}

func (s *yearSessionService) List(ctx context.Context, req *dto.YearSessionListRequest, caller Caller) ([]dto.YearSessionResponse, int64, error) {
	filters := &repository.YearSessionFilters{
		DepartmentID:   caller.scopedDepartment(req.DepartmentID),
		AcademicYearID: req.AcademicYearID,
		Status:         req.Status,
		Keyword:        req.Keyword,
	}

	sessions, total, err := s.repo.YearSession.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出会话失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.YearSessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, *toYearSessionResponse(&sessions[i]))
	}
	return result, total, nil
}

// ────────────────────── OpenSessionFor / GetMine ──────────────────────

func (s *yearSessionService) OpenSessionFor(ctx context.Context, departmentID, academicYearID string) (*dto.YearSessionResponse, error) {
	session, err := s.repo.YearSession.GetByScope(ctx, academicYearID, departmentID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询会话失败",
			zap.String("department_id", departmentID),
			zap.String("academic_year_id", academicYearID),
			zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, session.YearSessionID)
}

func (s *yearSessionService) GetMine(ctx context.Context, caller Caller, academicYearID string) (*dto.YearSessionResponse, error) {
	if caller.DepartmentID == "" {
		return nil, ErrNoDepartment
	}
	if academicYearID == "" {
		current, err := s.repo.AcademicYear.GetCurrent(ctx)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrNoActiveYear
			}
			return nil, err
		}
		academicYearID = current.AcademicYearID
	}
	return s.OpenSessionFor(ctx, caller.DepartmentID, academicYearID)
}

// ────────────────────── Advance ──────────────────────

func (s *yearSessionService) Advance(ctx context.Context, id, target string, caller Caller) (*dto.YearSessionResponse, error) {
	if !lifecycle.ValidSessionStatus(target) {
		return nil, lifecycle.ErrSessionStatusInvalid
	}

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		// 加锁顺序：学年 → 会话
		plain, err := txRepo.YearSession.GetByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrSessionNotFound
			}
			return err
		}
		if !caller.CanManageDepartment(plain.DepartmentID) {
			return ErrNoPermission
		}

		year, err := txRepo.AcademicYear.GetByIDForUpdate(ctx, plain.AcademicYearID)
		if err != nil {
			return err
		}
		session, err := txRepo.YearSession.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		var scope lifecycle.ScopeState
		switch target {
		case model.SessionStatusInProgress:
			scope.UnresolvedTopics, err = txRepo.Topic.CountInScope(ctx,
				session.DepartmentID, session.AcademicYearID, lifecycle.UnresolvedTopicStatuses...)
		case model.SessionStatusCompleted:
			scope.UnfinishedApproved, err = txRepo.ApprovedTopic.CountInScope(ctx,
				session.DepartmentID, session.AcademicYearID, lifecycle.UnfinishedApprovedStatuses...)
		}
		if err != nil {
			return err
		}

		if err := lifecycle.CheckAdvance(year, target, scope); err != nil {
			return err
		}

		if session.Status == target {
			return nil
		}
		from := session.Status
		session.Status = target
		session.Audit(caller.UserID)
		if err := txRepo.YearSession.Update(ctx, session); err != nil {
			return err
		}
		s.logger.Info("会话状态已推进",
			zap.String("id", id), zap.String("from", from), zap.String("to", target))
		return nil
	})
	if err != nil {
		return nil, logFailure(s.logger, "推进会话失败", err, zap.String("id", id))
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *yearSessionService) Delete(ctx context.Context, id string, caller Caller) error {
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		plain, err := txRepo.YearSession.GetByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrSessionNotFound
			}
			return err
		}
		if !caller.CanManageDepartment(plain.DepartmentID) {
			return ErrNoPermission
		}

		year, err := txRepo.AcademicYear.GetByIDForUpdate(ctx, plain.AcademicYearID)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckYearOpen(year); err != nil {
			return err
		}
		session, err := txRepo.YearSession.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		count, err := txRepo.Topic.CountInScope(ctx, session.DepartmentID, session.AcademicYearID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSessionHasTopics
		}
		return txRepo.YearSession.Delete(ctx, id)
	})
	if err != nil {
		return logFailure(s.logger, "删除会话失败", err, zap.String("id", id))
	}
	s.logger.Info("会话已删除", zap.String("id", id))
	return nil
}

// ── 内部辅助方法 ──

func toYearSessionResponse(session *model.YearSession) *dto.YearSessionResponse {
	resp := &dto.YearSessionResponse{
		ID:             session.YearSessionID,
		AcademicYearID: session.AcademicYearID,
		Year:           session.Year,
		Status:         session.Status,
		Department:     toDepartmentResponse(session.Department),
		CreatedAt:      session.CreatedAt.Format(dto.TimeLayout),
	}
	if session.AcademicYear != nil {
		resp.YearStatus = session.AcademicYear.Status
	}
	return resp
}

// [自证通过] internal/service/year_session_service.go
