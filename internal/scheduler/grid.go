package scheduler

import (
	"fmt"
	"time"
)

// DateLayout 网格日期的线上格式
const DateLayout = "2006-01-02"

// DefaultOccurrences 默认滚动窗口长度（周）
const DefaultOccurrences = 52

// TimeSlot 固定时段目录项，运行期间不增删
type TimeSlot struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

// Catalog 有序时段目录；同一日期内的先后以目录顺序为准，而非钟点
type Catalog []TimeSlot

// DefaultCatalog 六个固定时段
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "slot_1", DisplayName: "第1时段", StartTime: "08:00", EndTime: "10:00"},
		{ID: "slot_2", DisplayName: "第2时段", StartTime: "10:00", EndTime: "12:00"},
		{ID: "slot_3", DisplayName: "第3时段", StartTime: "12:00", EndTime: "14:00"},
		{ID: "slot_4", DisplayName: "第4时段", StartTime: "14:00", EndTime: "16:00"},
		{ID: "slot_5", DisplayName: "第5时段", StartTime: "16:00", EndTime: "18:00"},
		{ID: "slot_6", DisplayName: "第6时段", StartTime: "18:00", EndTime: "20:00"},
	}
}

// Index 返回时段在目录中的位置，不存在时返回 -1
func (c Catalog) Index(slotID string) int {
	for i, s := range c {
		if s.ID == slotID {
			return i
		}
	}
	return -1
}

// CalendarDate 固定星期的一次出现
type CalendarDate struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	IsToday bool   `json:"isToday"`
}

var weekdayLabels = [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// FormatLabel 生成日期标签，如 "2025年1月8日 周三"
func FormatLabel(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日 %s", t.Year(), int(t.Month()), t.Day(), weekdayLabels[t.Weekday()])
}

// GenerateOccurrences 从 anchor 当天或之后第一个 weekday 起，按时间顺序生成 count 个日期。
// today 仅用于标注 IsToday；相同输入总是得到相同输出。
func GenerateOccurrences(anchor time.Time, count int, weekday time.Weekday, today time.Time) []CalendarDate {
	if count <= 0 {
		return nil
	}

	start := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	offset := (int(weekday) - int(start.Weekday()) + 7) % 7
	start = start.AddDate(0, 0, offset)
	todayStr := today.In(anchor.Location()).Format(DateLayout)

	dates := make([]CalendarDate, 0, count)
	for i := 0; i < count; i++ {
		d := start.AddDate(0, 0, 7*i)
		ds := d.Format(DateLayout)
		dates = append(dates, CalendarDate{
			Date:    ds,
			Label:   FormatLabel(d),
			IsToday: ds == todayStr,
		})
	}
	return dates
}

// Grid (date, slot) 可寻址空间
type Grid struct {
	catalog Catalog
	dates   []CalendarDate
	dateSet map[string]struct{}
}

// NewGrid 创建网格
func NewGrid(catalog Catalog, dates []CalendarDate) *Grid {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d.Date] = struct{}{}
	}
	return &Grid{catalog: catalog, dates: dates, dateSet: set}
}

// Catalog 时段目录
func (g *Grid) Catalog() Catalog { return g.catalog }

// Dates 日期列表（只读副本）
func (g *Grid) Dates() []CalendarDate {
	out := make([]CalendarDate, len(g.dates))
	copy(out, g.dates)
	return out
}

// Contains 判断 (date, slotID) 是否为网格内的有效单元格
func (g *Grid) Contains(date, slotID string) bool {
	if _, ok := g.dateSet[date]; !ok {
		return false
	}
	return g.catalog.Index(slotID) >= 0
}
