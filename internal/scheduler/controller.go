package scheduler

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrGestureInProgress = errors.New("已有拖拽操作进行中")
	ErrNoGesture         = errors.New("当前没有拖拽操作")
	ErrItemNotFound      = errors.New("排课条目不存在")
	ErrLiveImmovable     = errors.New("直播课场次不可移动")
	ErrAlreadyScheduled  = errors.New("该课时已排入课表")
)

// MsgSlotOccupied 放置到已占用单元格时临时条目上的提示
const MsgSlotOccupied = "该时段已被占用，请选择其他时段"

// DropOutcome 放置结果
type DropOutcome string

const (
	DropAdded     DropOutcome = "added"
	DropMoved     DropOutcome = "moved"
	DropResolved  DropOutcome = "resolved"
	DropRejected  DropOutcome = "rejected"
	DropBlocked   DropOutcome = "blocked"
	DropCancelled DropOutcome = "cancelled"
	DropFailed    DropOutcome = "failed"
)

// DropResult 一次放置的结果
type DropResult struct {
	Outcome   DropOutcome
	Temporary *TemporaryItem
	Err       error
}

// HoverResult 悬停校验结果
type HoverResult struct {
	Blocked      bool
	TypeConflict bool
}

// Controller 拖拽手势编排：拾取 → 悬停 → 放置
type Controller struct {
	mu         sync.Mutex
	busy       bool
	api        API
	grid       *Grid
	store      *Store
	session    *Session
	occupancy  Occupancy
	reconciler *Reconciler
	panel      *Panel
	notifier   Notifier
	logger     *zap.Logger
}

// ControllerDeps Controller 依赖
type ControllerDeps struct {
	API        API
	Grid       *Grid
	Store      *Store
	Session    *Session
	Reconciler *Reconciler
	Panel      *Panel
	Notifier   Notifier
	Logger     *zap.Logger
}

// NewController 创建 Controller
func NewController(d ControllerDeps) *Controller {
	return &Controller{
		api:        d.API,
		grid:       d.Grid,
		store:      d.Store,
		session:    d.Session,
		occupancy:  NewOccupancy(d.Store, d.Session),
		reconciler: d.Reconciler,
		panel:      d.Panel,
		notifier:   d.Notifier,
		logger:     d.Logger,
	}
}

// ════════════════════════════════════════════════════════════
// 拾取
// ════════════════════════════════════════════════════════════

func (c *Controller) begin(src Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy || c.session.Drag() != nil {
		return ErrGestureInProgress
	}
	c.session.begin(src)
	return nil
}

// PickUpFromGrid 从网格拾取已排条目；仅录播条目可移动
func (c *Controller) PickUpFromGrid(itemID string) error {
	item, ok := c.store.Find(itemID)
	if !ok {
		return ErrItemNotFound
	}
	if item.Type != CourseTypeRecorded {
		return ErrLiveImmovable
	}
	return c.begin(item)
}

// PickUpTemporary 拾取被拒绝的临时条目，以便重新放置
func (c *Controller) PickUpTemporary(tempID string) error {
	t, ok := c.session.FindTemporary(tempID)
	if !ok {
		return ErrItemNotFound
	}
	if t.Type != CourseTypeRecorded && t.OriginalItemID != "" {
		return ErrLiveImmovable
	}
	return c.begin(t)
}

// PickUpFromPanel 从面板拾取尚未排入的课时/场次
func (c *Controller) PickUpFromPanel(g PanelGhost) error {
	if c.store.IsAlreadyScheduled(g.CourseID, g.ItemID) {
		return ErrAlreadyScheduled
	}
	return c.begin(g)
}

// ════════════════════════════════════════════════════════════
// 悬停
// ════════════════════════════════════════════════════════════

// Hover 校验悬停单元格：录播条目不能落在已有直播的单元格上。
// 已占用单元格在悬停阶段不拦截，留到放置时处理。
func (c *Controller) Hover(date, slotID string) (HoverResult, error) {
	drag := c.session.Drag()
	if drag == nil {
		return HoverResult{}, ErrNoGesture
	}

	res := HoverResult{
		Blocked:      c.blocked(drag.Source, date, slotID),
		TypeConflict: c.occupancy.HasTypeConflict(date, slotID),
	}
	c.session.hover(date, slotID, res.Blocked)
	return res, nil
}

func (c *Controller) blocked(src Item, date, slotID string) bool {
	return src.Base().Type == CourseTypeRecorded && c.occupancy.HostsLive(date, slotID)
}

// Cancel 放弃当前手势，不产生任何变更
func (c *Controller) Cancel() {
	c.session.finish(GestureCancelled)
}

// ════════════════════════════════════════════════════════════
// 放置
// ════════════════════════════════════════════════════════════

// Drop 在 (date, slotID) 结束手势
//
// 顺序：网格外 → 取消；直播冲突 → 拦截；已占用 → 生成错误临时条目且不调用后端；
// 其余按来源调用新增/改期，成功后 Reload，再对录播课执行重排。
func (c *Controller) Drop(ctx context.Context, date, slotID string) DropResult {
	drag := c.session.Drag()
	if drag == nil {
		return DropResult{Outcome: DropCancelled, Err: ErrNoGesture}
	}
	src := drag.Source

	if !c.grid.Contains(date, slotID) {
		c.session.finish(GestureCancelled)
		return DropResult{Outcome: DropCancelled}
	}

	if c.blocked(src, date, slotID) {
		c.session.finish(GestureCancelled)
		return DropResult{Outcome: DropBlocked}
	}

	// 重新放置的临时条目同时排除其原条目，允许放回原位
	var exclude []string
	switch s := src.(type) {
	case PlacedItem:
		exclude = []string{s.ID}
	case TemporaryItem:
		exclude = []string{s.ID, s.OriginalItemID}
	}

	if c.occupancy.IsOccupied(date, slotID, exclude...) {
		temp := c.reject(src, date, slotID)
		c.session.finish(GestureDroppedInvalid)
		return DropResult{Outcome: DropRejected, Temporary: &temp}
	}

	c.mu.Lock()
	c.busy = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	outcome, err := c.commit(ctx, src, date, slotID)
	if err != nil {
		c.logger.Error("排课变更失败",
			zap.String("course_id", src.Base().CourseID),
			zap.String("date", date),
			zap.String("slot_id", slotID),
			zap.Error(err))
		c.notifier.Notify(LevelError, err.Error())
		c.session.finish(GestureDroppedInvalid)
		return DropResult{Outcome: DropFailed, Err: err}
	}

	c.session.finish(GestureDroppedValid)
	c.afterMutation(ctx, src.Base(), outcome != DropMoved)
	return DropResult{Outcome: outcome}
}

// reject 生成被拒绝的临时条目；重新放置的临时条目被新条目取代
func (c *Controller) reject(src Item, date, slotID string) TemporaryItem {
	base := src.Base()
	base.Date = date
	base.SlotID = slotID

	temp := TemporaryItem{
		ItemBase:     base,
		State:        StateRejected,
		ErrorMessage: MsgSlotOccupied,
	}
	switch s := src.(type) {
	case PlacedItem:
		temp.OriginalItemID = s.ID
	case TemporaryItem:
		temp.OriginalItemID = s.OriginalItemID
		c.session.RemoveTemporary(s.ID)
	}
	return c.session.addTemporary(temp)
}

// commit 按手势来源分派后端调用
func (c *Controller) commit(ctx context.Context, src Item, date, slotID string) (DropOutcome, error) {
	switch s := src.(type) {
	case PanelGhost:
		if err := c.add(ctx, s.ItemBase, date, slotID); err != nil {
			return DropFailed, err
		}
		return DropAdded, nil

	case PlacedItem:
		// 改期：先在本地隐藏源条目，由随后的 Reload 重新确认
		c.store.markPendingLocal(s.ID)
		err := c.api.UpdateScheduledItem(ctx, UpdateItemRequest{ItemID: s.ID, NewDate: date, NewSlotID: slotID})
		if err != nil {
			return DropFailed, err
		}
		// 原条目已离开，其遗留的临时条目失去意义
		c.session.removeTemporariesFor(s.ID)
		return DropMoved, nil

	case TemporaryItem:
		var err error
		_, hasOriginal := c.store.Find(s.OriginalItemID)
		hasOriginal = hasOriginal && s.OriginalItemID != ""
		if hasOriginal {
			c.store.markPendingLocal(s.OriginalItemID)
			err = c.api.UpdateScheduledItem(ctx, UpdateItemRequest{ItemID: s.OriginalItemID, NewDate: date, NewSlotID: slotID})
		} else {
			err = c.add(ctx, s.ItemBase, date, slotID)
		}
		if err != nil {
			return DropFailed, err
		}
		c.session.RemoveTemporary(s.ID)
		if hasOriginal {
			c.session.removeTemporariesFor(s.OriginalItemID)
		}
		return DropResolved, nil
	}
	return DropFailed, ErrItemNotFound
}

func (c *Controller) add(ctx context.Context, b ItemBase, date, slotID string) error {
	if b.Type == CourseTypeLive {
		return c.api.AddLiveCourse(ctx, b.CourseID)
	}
	return c.api.AddCourseItem(ctx, AddCourseItemRequest{
		CourseID:     b.CourseID,
		ItemID:       b.ItemID,
		Title:        b.Title,
		ModuleTitle:  b.ModuleTitle,
		LessonNumber: b.LessonNumber,
		TotalLessons: b.TotalLessons,
		Type:         b.Type,
		Date:         date,
		SlotID:       slotID,
	})
}

// afterMutation 变更成功后的收尾：Reload → 录播重排 → 面板刷新
func (c *Controller) afterMutation(ctx context.Context, b ItemBase, refreshPanel bool) {
	if err := c.store.Reload(ctx); err != nil {
		c.logger.Error("刷新排课失败", zap.Error(err))
		c.notifier.Notify(LevelError, err.Error())
	}

	if b.Type == CourseTypeRecorded {
		// 失败已在 Reconciler 内通知
		_ = c.reconciler.Reconcile(ctx, b.CourseID)
	}

	if refreshPanel && c.panel != nil {
		_ = c.panel.Refresh(ctx)
	}
}

// ════════════════════════════════════════════════════════════
// 移除
// ════════════════════════════════════════════════════════════

// Remove 从课表移除已排条目；录播课随后重排
func (c *Controller) Remove(ctx context.Context, itemID string) error {
	item, ok := c.store.Find(itemID)
	if !ok {
		return ErrItemNotFound
	}

	if err := c.api.UpdateScheduledItem(ctx, UpdateItemRequest{ItemID: itemID, Remove: true}); err != nil {
		c.logger.Error("移除排课失败", zap.String("item_id", itemID), zap.Error(err))
		c.notifier.Notify(LevelError, err.Error())
		return err
	}

	c.session.removeTemporariesFor(itemID)
	c.afterMutation(ctx, item.ItemBase, true)
	return nil
}

// DiscardTemporary 用户手动移除临时条目
func (c *Controller) DiscardTemporary(tempID string) bool {
	return c.session.RemoveTemporary(tempID)
}

// Occupancy 暴露占用查询，供渲染层标注冲突样式
func (c *Controller) Occupancy() Occupancy { return c.occupancy }
