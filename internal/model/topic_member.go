package model

// 成员角色
const (
	MemberRoleLeader  = "leader"
	MemberRoleAdvisor = "advisor"
	MemberRoleMember  = "member"
)

// 成员审核状态
const (
	MemberStatusPending  = "pending"
	MemberStatusApproved = "approved"
	MemberStatusRejected = "rejected"
)

// TopicMember 课题参与记录 — 对应 topic_members
// (topic_id, user_id) 唯一；leader / advisor 的唯一性由 lifecycle 规则维护
type TopicMember struct {
	TopicMemberID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"topic_member_id"`
	TopicID       string `gorm:"type:uuid;not null"                             json:"topic_id"`
	UserID        string `gorm:"type:uuid;not null"                             json:"user_id"`
	Role          string `gorm:"type:varchar(20);not null"                      json:"role"`
	Status        string `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (TopicMember) TableName() string { return "topic_members" }

// Holds 是否为指定角色且已通过
func (m *TopicMember) Holds(role string) bool {
	return m.Role == role && m.Status == MemberStatusApproved
}

// [自证通过] internal/model/topic_member.go
