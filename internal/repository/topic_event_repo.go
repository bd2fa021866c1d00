package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
)

// TopicEventRepository 课题事件数据访问接口（只追加）
type TopicEventRepository interface {
	Create(ctx context.Context, event *model.TopicEvent) error
	ListByTopic(ctx context.Context, topicID string) ([]model.TopicEvent, error)
}

type topicEventRepo struct {
	db *gorm.DB
}

// NewTopicEventRepo 创建 TopicEventRepository 实例
func NewTopicEventRepo(db *gorm.DB) TopicEventRepository {
	return &topicEventRepo{db: db}
}

func (r *topicEventRepo) Create(ctx context.Context, event *model.TopicEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *topicEventRepo) ListByTopic(ctx context.Context, topicID string) ([]model.TopicEvent, error) {
	var events []model.TopicEvent
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}
