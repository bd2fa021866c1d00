package model

import "github.com/shopspring/decimal"

// 课题状态
const (
	TopicStatusPending     = "pending"
	TopicStatusApproved    = "approved"
	TopicStatusRejected    = "rejected"
	TopicStatusNeedsUpdate = "needs_update"
)

// Topic 研究课题 — 对应 topics
type Topic struct {
	TopicID        string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"topic_id"`
	Name           string          `gorm:"type:varchar(255);not null"                     json:"name"`
	Description    string          `gorm:"type:text"                                      json:"description,omitempty"`
	Target         string          `gorm:"type:text"                                      json:"target,omitempty"`
	MainContent    string          `gorm:"type:text"                                      json:"main_content,omitempty"`
	Budget         decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"          json:"budget"`
	Note           string          `gorm:"type:text"                                      json:"note,omitempty"`
	Status         string          `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	DepartmentID   string          `gorm:"type:uuid;not null"                             json:"department_id"`
	AcademicYearID string          `gorm:"type:uuid;not null"                             json:"academic_year_id"`
	VersionedModel

	// 关联
	Department    *Department    `gorm:"foreignKey:DepartmentID;references:DepartmentID"     json:"department,omitempty"`
	AcademicYear  *AcademicYear  `gorm:"foreignKey:AcademicYearID;references:AcademicYearID" json:"academic_year,omitempty"`
	Members       []TopicMember  `gorm:"foreignKey:TopicID;references:TopicID"               json:"members,omitempty"`
	ApprovedTopic *ApprovedTopic `gorm:"foreignKey:TopicID;references:TopicID"               json:"approved_topic,omitempty"`
}

// TableName 指定表名
func (Topic) TableName() string { return "topics" }

// [自证通过] internal/model/topic.go
