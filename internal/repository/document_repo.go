package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
)

// DocumentRepository 立项课题成果文档数据访问接口
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.ApprovedTopicDocument) error
	GetByID(ctx context.Context, id string) (*model.ApprovedTopicDocument, error)
	GetByType(ctx context.Context, approvedTopicID, documentType string) (*model.ApprovedTopicDocument, error)
	ListByApprovedTopic(ctx context.Context, approvedTopicID string) ([]model.ApprovedTopicDocument, error)
	Update(ctx context.Context, doc *model.ApprovedTopicDocument) error
	Delete(ctx context.Context, id string) error
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo 创建 DocumentRepository 实例
func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.ApprovedTopicDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*model.ApprovedTopicDocument, error) {
	var doc model.ApprovedTopicDocument
	if err := r.db.WithContext(ctx).Where("document_id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) GetByType(ctx context.Context, approvedTopicID, documentType string) (*model.ApprovedTopicDocument, error) {
	var doc model.ApprovedTopicDocument
	err := r.db.WithContext(ctx).
		Where("approved_topic_id = ? AND document_type = ?", approvedTopicID, documentType).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) ListByApprovedTopic(ctx context.Context, approvedTopicID string) ([]model.ApprovedTopicDocument, error) {
	var docs []model.ApprovedTopicDocument
	err := r.db.WithContext(ctx).
		Where("approved_topic_id = ?", approvedTopicID).
		Order("uploaded_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepo) Update(ctx context.Context, doc *model.ApprovedTopicDocument) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

func (r *documentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("document_id = ?", id).Delete(&model.ApprovedTopicDocument{}).Error
}
