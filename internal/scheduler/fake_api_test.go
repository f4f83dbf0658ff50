package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ── 内存版后端 ──

type fakeAPI struct {
	mu      sync.Mutex
	items   []PlacedItem
	courses []AvailableCourse
	live    map[string][]PlacedItem // courseID → 全部场次
	nextID  int

	calls map[string]int
	// 最近一次 UpdateItemsOrder 的参数
	lastOrder []string
	orders    [][]string

	getErr    error
	addErr    error
	updateErr error
	orderErr  error
	listErr   error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int), live: make(map[string][]PlacedItem)}
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) mutations() int {
	return f.count("AddCourseItem") + f.count("AddLiveCourse") + f.count("UpdateScheduledItem") + f.count("UpdateItemsOrder")
}

func (f *fakeAPI) seed(item PlacedItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
}

func (f *fakeAPI) GetSchedule(_ context.Context) ([]PlacedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetSchedule"]++
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]PlacedItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeAPI) ListAvailableCourses(_ context.Context, q AvailableQuery) ([]AvailableCourse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListAvailableCourses"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []AvailableCourse
	for _, c := range f.courses {
		if q.Type != "" && c.Type != q.Type {
			continue
		}
		if q.Query != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(q.Query)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeAPI) AddCourseItem(_ context.Context, req AddCourseItemRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["AddCourseItem"]++
	if f.addErr != nil {
		return f.addErr
	}
	f.nextID++
	f.items = append(f.items, PlacedItem{
		ID: fmt.Sprintf("srv-%d", f.nextID),
		ItemBase: ItemBase{
			CourseID:     req.CourseID,
			ItemID:       req.ItemID,
			Type:         req.Type,
			Date:         req.Date,
			SlotID:       req.SlotID,
			LessonNumber: req.LessonNumber,
			TotalLessons: req.TotalLessons,
			Title:        req.Title,
			ModuleTitle:  req.ModuleTitle,
		},
	})
	return nil
}

func (f *fakeAPI) AddLiveCourse(_ context.Context, courseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["AddLiveCourse"]++
	if f.addErr != nil {
		return f.addErr
	}
	f.items = append(f.items, f.live[courseID]...)
	return nil
}

func (f *fakeAPI) UpdateScheduledItem(_ context.Context, req UpdateItemRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateScheduledItem"]++
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.items {
		if f.items[i].ID != req.ItemID {
			continue
		}
		if req.Remove {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
		f.items[i].Date = req.NewDate
		f.items[i].SlotID = req.NewSlotID
		return nil
	}
	return errors.New("排课条目不存在")
}

func (f *fakeAPI) UpdateItemsOrder(_ context.Context, _ string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateItemsOrder"]++
	if f.orderErr != nil {
		return f.orderErr
	}
	f.lastOrder = append([]string(nil), ids...)
	f.orders = append(f.orders, f.lastOrder)
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i + 1
	}
	for i := range f.items {
		if n, ok := pos[f.items[i].ID]; ok {
			f.items[i].LessonNumber = n
		}
	}
	return nil
}

// ── 通知记录器 ──

type note struct {
	level   Level
	message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (r *recordingNotifier) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{level: level, message: message})
}

func (r *recordingNotifier) errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.notes {
		if n.level == LevelError {
			out = append(out, n.message)
		}
	}
	return out
}

// ── 测试辅助 ──

// 2025-01-06 为周一，首个周三为 2025-01-08
var anchor = time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

const (
	d1 = "2025-01-08"
	d2 = "2025-01-15"
	d3 = "2025-01-22"
)

func placed(id, courseID, itemID string, typ CourseType, date, slot string, lesson int) PlacedItem {
	return PlacedItem{
		ID: id,
		ItemBase: ItemBase{
			CourseID:     courseID,
			ItemID:       itemID,
			Type:         typ,
			Date:         date,
			SlotID:       slot,
			LessonNumber: lesson,
			TotalLessons: 3,
		},
	}
}

func recordedGhost(courseID, itemID string, lesson int) PanelGhost {
	return PanelGhost{ItemBase: ItemBase{
		CourseID:     courseID,
		ItemID:       itemID,
		Type:         CourseTypeRecorded,
		LessonNumber: lesson,
		TotalLessons: 3,
		Title:        "课时 " + itemID,
	}}
}

func setupScheduler(api *fakeAPI) (*Scheduler, *recordingNotifier) {
	n := &recordingNotifier{}
	s := New(api, Options{
		Weekday:     time.Wednesday,
		Occurrences: 8,
		Now:         func() time.Time { return anchor },
		Notifier:    n,
	}, zap.NewNop())
	return s, n
}

func cellCount(items []PlacedItem, date, slot string) int {
	n := 0
	for _, it := range items {
		if it.Date == date && it.SlotID == slot {
			n++
		}
	}
	return n
}
