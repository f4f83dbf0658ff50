package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"tudva/backend/internal/model"
	"tudva/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoItems      = errors.New("课表中暂无排课")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportSchedule 导出学生课表为 Excel
	ExportSchedule(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSchedule — 导出课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式（单个 Sheet "课表"）：
//   - 列头：日期 | 第1时段 (08:00-10:00) | ... | 第6时段
//   - 行：有排课的日期，按日期升序
//   - 单元格：课程名 · 第N课 标题；同格多条以换行分隔（直播在前）

func (s *exportService) ExportSchedule(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	// 1. 查询课表
	items, err := s.repo.ScheduledItem.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询课表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", err
	}
	if len(items) == 0 {
		return nil, "", ErrExportNoItems
	}

	// 2. 时段目录决定列顺序
	slots, err := s.repo.TimeSlot.List(ctx)
	if err != nil {
		s.logger.Error("查询时段目录失败", zap.Error(err))
		return nil, "", err
	}
	col := make(map[string]int, len(slots))
	for i, sl := range slots {
		col[sl.SlotID] = i + 2 // 第 1 列为日期
	}

	// 3. 构建索引: date → slotID → []cellText
	cells := make(map[string]map[string][]string)
	var dates []string
	for i := range items {
		it := &items[i]
		date := it.ScheduleDate.Format(dateLayout)
		if cells[date] == nil {
			cells[date] = make(map[string][]string)
			dates = append(dates, date)
		}
		text := cellText(it)
		if it.ItemType == model.CourseTypeLive {
			cells[date][it.SlotID] = append([]string{text}, cells[date][it.SlotID]...)
		} else {
			cells[date][it.SlotID] = append(cells[date][it.SlotID], text)
		}
	}
	sort.Strings(dates)

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	// 表头
	_ = f.SetCellValue(sheetName, "A1", "日期")
	for _, sl := range slots {
		ref, _ := excelize.CoordinatesToCellName(col[sl.SlotID], 1)
		_ = f.SetCellValue(sheetName, ref, fmt.Sprintf("%s (%s-%s)", sl.DisplayName, sl.StartTime, sl.EndTime))
	}
	lastCol, _ := excelize.ColumnNumberToName(len(slots) + 1)
	_ = f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle)
	_ = f.SetColWidth(sheetName, "A", "A", 14)
	if len(slots) > 0 {
		_ = f.SetColWidth(sheetName, "B", lastCol, 28)
	}

	// 数据行
	for r, date := range dates {
		row := r + 2
		ref, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, ref, date)
		for slotID, texts := range cells[date] {
			c, ok := col[slotID]
			if !ok {
				continue
			}
			ref, _ := excelize.CoordinatesToCellName(c, row)
			_ = f.SetCellValue(sheetName, ref, strings.Join(texts, "\n"))
			_ = f.SetCellStyle(sheetName, ref, ref, cellStyle)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课表_%s_%s.xlsx", dates[0], dates[len(dates)-1])
	return buf, filename, nil
}

func cellText(it *model.ScheduledItem) string {
	course := ""
	if it.Course != nil {
		course = it.Course.Title
	}
	if it.ItemType == model.CourseTypeLive {
		return fmt.Sprintf("%s · 直播 %s", course, it.Title)
	}
	return fmt.Sprintf("%s · 第%d课 %s", course, it.LessonNumber, it.Title)
}
