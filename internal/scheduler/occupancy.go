package scheduler

// Occupancy 单元格占用与类型冲突查询，无副作用
type Occupancy struct {
	store   *Store
	session *Session
}

// NewOccupancy 创建占用查询器
func NewOccupancy(store *Store, session *Session) Occupancy {
	return Occupancy{store: store, session: session}
}

// IsOccupied 单元格内是否存在未被排除的条目（含临时条目）。
// 代替任一被排除条目的临时条目同样被排除。
func (o Occupancy) IsOccupied(date, slotID string, excludeIDs ...string) bool {
	excluded := func(id string) bool {
		if id == "" {
			return false
		}
		for _, ex := range excludeIDs {
			if ex == id {
				return true
			}
		}
		return false
	}

	for _, it := range o.store.CellItems(date, slotID) {
		if excluded(it.ID) {
			continue
		}
		return true
	}
	for _, t := range o.session.Temporaries() {
		if t.Date != date || t.SlotID != slotID {
			continue
		}
		if excluded(t.ID) || excluded(t.OriginalItemID) {
			continue
		}
		return true
	}
	return false
}

// HasTypeConflict 单元格是否同时存在直播与录播条目（仅用于提示样式）
func (o Occupancy) HasTypeConflict(date, slotID string) bool {
	var live, recorded bool
	mark := func(t CourseType) {
		switch t {
		case CourseTypeLive:
			live = true
		case CourseTypeRecorded:
			recorded = true
		}
	}
	for _, it := range o.store.CellItems(date, slotID) {
		mark(it.Type)
	}
	for _, t := range o.session.Temporaries() {
		if t.Date == date && t.SlotID == slotID {
			mark(t.Type)
		}
	}
	return live && recorded
}

// HostsLive 单元格内是否已有直播条目
func (o Occupancy) HostsLive(date, slotID string) bool {
	for _, it := range o.store.CellItems(date, slotID) {
		if it.Type == CourseTypeLive {
			return true
		}
	}
	return false
}
