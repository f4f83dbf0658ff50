package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrCourseNotInPanel = errors.New("课程不在可用列表中")
	ErrLessonNotInPanel = errors.New("课时不在可用列表中")
	ErrNotLiveCourse    = errors.New("该课程不是直播课")
)

// PanelLesson 面板中的一个课时；Locked 表示已排入网格，不可拖拽
type PanelLesson struct {
	AvailableLesson
	Locked bool
}

// Panel 可用课程面板
type Panel struct {
	mu       sync.RWMutex
	api      API
	store    *Store
	notifier Notifier
	logger   *zap.Logger
	query    AvailableQuery
	courses  []AvailableCourse
}

// NewPanel 创建面板
func NewPanel(api API, store *Store, notifier Notifier, logger *zap.Logger) *Panel {
	return &Panel{api: api, store: store, notifier: notifier, logger: logger}
}

// Open 打开面板时拉取
func (p *Panel) Open(ctx context.Context) error {
	return p.Refresh(ctx)
}

// Search 按关键字与类型筛选
func (p *Panel) Search(ctx context.Context, query string, typ CourseType) error {
	p.mu.Lock()
	p.query = AvailableQuery{Query: query, Type: typ}
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// Refresh 以当前筛选条件重新拉取
func (p *Panel) Refresh(ctx context.Context) error {
	p.mu.RLock()
	q := p.query
	p.mu.RUnlock()

	courses, err := p.api.ListAvailableCourses(ctx, q)
	if err != nil {
		p.logger.Error("加载可用课程失败", zap.Error(err))
		p.notifier.Notify(LevelError, err.Error())
		return fmt.Errorf("加载可用课程失败: %w", err)
	}

	p.mu.Lock()
	p.courses = courses
	p.mu.Unlock()
	return nil
}

// Courses 当前列表副本
func (p *Panel) Courses() []AvailableCourse {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]AvailableCourse, len(p.courses))
	copy(out, p.courses)
	return out
}

func (p *Panel) course(courseID string) (AvailableCourse, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, c := range p.courses {
		if c.ID == courseID {
			return c, true
		}
	}
	return AvailableCourse{}, false
}

// Lessons 录播课的课时列表，与 Store 交叉比对标记已排课时
func (p *Panel) Lessons(courseID string) []PanelLesson {
	c, ok := p.course(courseID)
	if !ok {
		return nil
	}

	out := make([]PanelLesson, 0, len(c.AvailableLessons))
	for _, l := range c.AvailableLessons {
		out = append(out, PanelLesson{
			AvailableLesson: l,
			Locked:          p.store.IsAlreadyScheduled(c.ID, l.ID),
		})
	}
	return out
}

// Ghost 为课时构造拖拽源
func (p *Panel) Ghost(courseID, lessonID string) (PanelGhost, error) {
	c, ok := p.course(courseID)
	if !ok {
		return PanelGhost{}, ErrCourseNotInPanel
	}

	for _, l := range c.AvailableLessons {
		if l.ID != lessonID {
			continue
		}
		return PanelGhost{ItemBase: ItemBase{
			CourseID:           c.ID,
			ItemID:             l.ID,
			Type:               c.Type,
			LessonNumber:       l.LessonNumber,
			TotalLessons:       l.TotalLessons,
			Title:              l.Title,
			CourseTitle:        c.Title,
			ModuleTitle:        l.ModuleTitle,
			BackgroundColorHex: c.BackgroundColorHex,
			IconURL:            c.IconURL,
		}}, nil
	}
	return PanelGhost{}, ErrLessonNotInPanel
}

// AddAllSessions 一次性将直播课的全部固定场次加入排课，绕过逐格拖拽
func (p *Panel) AddAllSessions(ctx context.Context, courseID string) error {
	c, ok := p.course(courseID)
	if !ok {
		return ErrCourseNotInPanel
	}
	if c.Type != CourseTypeLive {
		return ErrNotLiveCourse
	}

	if err := p.api.AddLiveCourse(ctx, courseID); err != nil {
		p.logger.Error("添加直播课失败", zap.String("course_id", courseID), zap.Error(err))
		p.notifier.Notify(LevelError, err.Error())
		return err
	}

	if err := p.store.Reload(ctx); err != nil {
		p.notifier.Notify(LevelError, err.Error())
		return err
	}
	p.notifier.Notify(LevelSuccess, fmt.Sprintf("已添加直播课《%s》的全部场次", c.Title))
	return p.Refresh(ctx)
}
