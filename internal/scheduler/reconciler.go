package scheduler

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Reconciler 保证录播课的 lessonNumber 与网格中的时间顺序一致
type Reconciler struct {
	api      API
	store    *Store
	catalog  Catalog
	notifier Notifier
	logger   *zap.Logger
}

// NewReconciler 创建 Reconciler
func NewReconciler(api API, store *Store, catalog Catalog, notifier Notifier, logger *zap.Logger) *Reconciler {
	return &Reconciler{api: api, store: store, catalog: catalog, notifier: notifier, logger: logger}
}

// OrderedItemIDs 按 (日期, 时段目录位置) 排序课程的录播条目并返回其 ID。
// 同一单元格内以 ID 兜底，保证重复调用结果一致。
func (r *Reconciler) OrderedItemIDs(courseID string) []string {
	items := r.store.ItemsForCourse(courseID, CourseTypeRecorded)

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		si, sj := r.slotIndex(items[i].SlotID), r.slotIndex(items[j].SlotID)
		if si != sj {
			return si < sj
		}
		return items[i].ID < items[j].ID
	})

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func (r *Reconciler) slotIndex(slotID string) int {
	if idx := r.catalog.Index(slotID); idx >= 0 {
		return idx
	}
	return len(r.catalog)
}

// Reconcile 推送课程的规范课时顺序；少于两个条目时不做任何事。
// 失败时发出通知且不重试，本地序号可能滞后到下一次 Reload。
func (r *Reconciler) Reconcile(ctx context.Context, courseID string) error {
	ordered := r.OrderedItemIDs(courseID)
	if len(ordered) <= 1 {
		return nil
	}

	if err := r.api.UpdateItemsOrder(ctx, courseID, ordered); err != nil {
		r.logger.Error("更新课时顺序失败", zap.String("course_id", courseID), zap.Error(err))
		r.notifier.Notify(LevelError, err.Error())
		return fmt.Errorf("更新课时顺序失败: %w", err)
	}

	r.store.applyLessonNumbers(ordered)

	if err := r.store.Reload(ctx); err != nil {
		r.logger.Error("重排后刷新排课失败", zap.String("course_id", courseID), zap.Error(err))
		r.notifier.Notify(LevelError, err.Error())
		return err
	}
	return nil
}
