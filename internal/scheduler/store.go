package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Store 用户排课快照；每次变更后整体替换，从不增量合并
type Store struct {
	mu       sync.RWMutex
	api      API
	items    []PlacedItem
	cache    SnapshotCache
	cacheKey string
	logger   *zap.Logger
}

// NewStore 创建 Store；cache 可为 nil
func NewStore(api API, cache SnapshotCache, cacheKey string, logger *zap.Logger) *Store {
	return &Store{api: api, cache: cache, cacheKey: cacheKey, logger: logger}
}

// Reload 从后端重新拉取完整快照并整体替换
func (s *Store) Reload(ctx context.Context) error {
	items, err := s.api.GetSchedule(ctx)
	if err != nil {
		return fmt.Errorf("加载排课失败: %w", err)
	}

	fresh := make([]PlacedItem, len(items))
	for i, it := range items {
		it.State = StateConfirmed
		fresh[i] = it
	}

	s.mu.Lock()
	s.items = fresh
	s.mu.Unlock()

	s.saveSnapshot(ctx, fresh)
	return nil
}

// Restore 从快照缓存恢复上次的排课，用于首屏；数据损坏时记录日志并回退为空
func (s *Store) Restore(ctx context.Context) {
	if s.cache == nil {
		return
	}

	raw, err := s.cache.LoadSnapshot(ctx, s.cacheKey)
	if err != nil {
		s.logger.Warn("读取排课快照失败", zap.Error(err))
		return
	}
	if len(raw) == 0 {
		return
	}

	var items []PlacedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("排课快照格式错误，已忽略", zap.Error(err))
		s.mu.Lock()
		s.items = nil
		s.mu.Unlock()
		return
	}
	for i := range items {
		items[i].State = StateConfirmed
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Store) saveSnapshot(ctx context.Context, items []PlacedItem) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("序列化排课快照失败", zap.Error(err))
		return
	}
	if err := s.cache.SaveSnapshot(ctx, s.cacheKey, raw); err != nil {
		s.logger.Warn("写入排课快照失败", zap.Error(err))
	}
}

// Items 当前可见条目（不含乐观移除中的条目）
func (s *Store) Items() []PlacedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PlacedItem, 0, len(s.items))
	for _, it := range s.items {
		if it.State == StatePendingLocal {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Find 按 ID 查找可见条目
func (s *Store) Find(id string) (PlacedItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.items {
		if it.ID == id && it.State != StatePendingLocal {
			return it, true
		}
	}
	return PlacedItem{}, false
}

// IsAlreadyScheduled 课时/场次是否已排入网格
func (s *Store) IsAlreadyScheduled(courseID, itemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.items {
		if it.CourseID == courseID && it.ItemID == itemID {
			return true
		}
	}
	return false
}

// ItemsForCourse 指定课程、指定类型的可见条目
func (s *Store) ItemsForCourse(courseID string, typ CourseType) []PlacedItem {
	var out []PlacedItem
	for _, it := range s.Items() {
		if it.CourseID == courseID && it.Type == typ {
			out = append(out, it)
		}
	}
	return out
}

// CellItems 单元格内的可见条目
func (s *Store) CellItems(date, slotID string) []PlacedItem {
	var out []PlacedItem
	for _, it := range s.Items() {
		if it.Date == date && it.SlotID == slotID {
			out = append(out, it)
		}
	}
	return out
}

// markPendingLocal 改期时先在本地隐藏源条目，等待后续 Reload 重新确认
func (s *Store) markPendingLocal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].State = StatePendingLocal
			return
		}
	}
}

// applyLessonNumbers 乐观写回课时序号（仅用于掩盖延迟，随后的 Reload 为准）
func (s *Store) applyLessonNumbers(orderedIDs []string) {
	pos := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		pos[id] = i + 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if n, ok := pos[s.items[i].ID]; ok {
			s.items[i].LessonNumber = n
		}
	}
}
