package model

// 学年状态
const (
	YearStatusStart = "start"
	YearStatusEnd   = "end"
)

// AcademicYear 学年表 — 对应 academic_years
// 同一时刻至多一个学年 is_active = true
type AcademicYear struct {
	AcademicYearID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"academic_year_id"`
	Year           int    `gorm:"not null;uniqueIndex"                           json:"year"`
	Status         string `gorm:"type:varchar(10);not null;default:'start'"      json:"status"`
	IsActive       bool   `gorm:"not null;default:false"                         json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (AcademicYear) TableName() string { return "academic_years" }

// Ended 学年是否已结束
func (y *AcademicYear) Ended() bool { return y.Status == YearStatusEnd }

// [自证通过] internal/model/academic_year.go
