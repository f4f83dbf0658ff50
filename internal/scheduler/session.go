package scheduler

import (
	"sync"

	"github.com/google/uuid"
)

// GestureState 单次拖拽手势的状态
type GestureState string

const (
	GestureIdle           GestureState = "idle"
	GesturePickedUp       GestureState = "picked-up"
	GestureHovering       GestureState = "hovering"
	GestureDroppedValid   GestureState = "dropped-valid"
	GestureDroppedInvalid GestureState = "dropped-invalid"
	GestureCancelled      GestureState = "cancelled"
)

// Drag 进行中的拖拽
type Drag struct {
	Source    Item
	State     GestureState
	HoverDate string
	HoverSlot string
	Blocked   bool
}

// Session 显式的排课会话上下文：进行中的拖拽与临时条目列表
type Session struct {
	mu          sync.RWMutex
	drag        *Drag
	last        GestureState
	temporaries []TemporaryItem
	newID       func() string
}

// NewSession 创建会话
func NewSession() *Session {
	return &Session{
		last:  GestureIdle,
		newID: func() string { return "temp-" + uuid.NewString() },
	}
}

// Drag 当前拖拽的副本，无拖拽时返回 nil
func (s *Session) Drag() *Drag {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.drag == nil {
		return nil
	}
	d := *s.drag
	return &d
}

// GestureState 当前（或最近一次结束的）手势状态
func (s *Session) GestureState() GestureState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.drag != nil {
		return s.drag.State
	}
	return s.last
}

func (s *Session) begin(src Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = &Drag{Source: src, State: GesturePickedUp}
}

func (s *Session) hover(date, slotID string, blocked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return
	}
	s.drag.State = GestureHovering
	s.drag.HoverDate = date
	s.drag.HoverSlot = slotID
	s.drag.Blocked = blocked
}

// finish 结束手势并清除拖拽引用
func (s *Session) finish(state GestureState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = nil
	s.last = state
}

// Temporaries 临时条目副本
func (s *Session) Temporaries() []TemporaryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TemporaryItem, len(s.temporaries))
	copy(out, s.temporaries)
	return out
}

// FindTemporary 按 ID 查找临时条目
func (s *Session) FindTemporary(id string) (TemporaryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.temporaries {
		if t.ID == id {
			return t, true
		}
	}
	return TemporaryItem{}, false
}

func (s *Session) addTemporary(t TemporaryItem) TemporaryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = s.newID()
	}
	s.temporaries = append(s.temporaries, t)
	return t
}

// RemoveTemporary 丢弃临时条目，返回是否存在
func (s *Session) RemoveTemporary(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.temporaries {
		if t.ID == id {
			s.temporaries = append(s.temporaries[:i], s.temporaries[i+1:]...)
			return true
		}
	}
	return false
}

// removeTemporariesFor 丢弃代替 originalID 的全部临时条目，返回丢弃数量
func (s *Session) removeTemporariesFor(originalID string) int {
	if originalID == "" {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.temporaries[:0]
	for _, t := range s.temporaries {
		if t.OriginalItemID == originalID {
			continue
		}
		kept = append(kept, t)
	}
	n := len(s.temporaries) - len(kept)
	s.temporaries = kept
	return n
}
