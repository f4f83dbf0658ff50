package scheduler

// CourseType 课程类型
type CourseType string

const (
	CourseTypeLive     CourseType = "live"
	CourseTypeRecorded CourseType = "recorded"
)

// Valid 是否为已知课程类型
func (t CourseType) Valid() bool {
	return t == CourseTypeLive || t == CourseTypeRecorded
}

// ItemState 条目生命周期
//
//	pending-local → confirmed | rejected
type ItemState string

const (
	StatePendingLocal ItemState = "pending-local"
	StateConfirmed    ItemState = "confirmed"
	StateRejected     ItemState = "rejected"
)

// ItemKind 条目变体标签
type ItemKind string

const (
	KindPlaced     ItemKind = "placed"
	KindTemporary  ItemKind = "temporary"
	KindPanelGhost ItemKind = "panel_ghost"
)

// ItemBase 三种条目变体共享的字段
type ItemBase struct {
	CourseID           string     `json:"courseId"`
	ItemID             string     `json:"itemId"`
	Type               CourseType `json:"type"`
	Date               string     `json:"date"`
	SlotID             string     `json:"slotId"`
	LessonNumber       int        `json:"lessonNumber"`
	TotalLessons       int        `json:"totalLessons"`
	Title              string     `json:"title"`
	CourseTitle        string     `json:"courseTitle"`
	ModuleTitle        string     `json:"moduleTitle"`
	BackgroundColorHex string     `json:"backgroundColorHex"`
	IconURL            string     `json:"iconUrl"`
}

// Item 拖拽源与网格占用者的统一视图
type Item interface {
	Kind() ItemKind
	Base() ItemBase
	// Key 在同一变体内唯一；PanelGhost 使用 courseID/itemID
	Key() string
}

// PlacedItem 已持久化的排课条目，来自后端快照
type PlacedItem struct {
	ID string `json:"id"`
	ItemBase
	State ItemState `json:"-"`
}

func (p PlacedItem) Kind() ItemKind { return KindPlaced }
func (p PlacedItem) Base() ItemBase { return p.ItemBase }
func (p PlacedItem) Key() string    { return p.ID }

// TemporaryItem 仅存在于客户端的临时条目（被拒绝的放置或乐观占位），从不持久化
type TemporaryItem struct {
	ID string `json:"id"`
	ItemBase
	State          ItemState `json:"state"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	OriginalItemID string    `json:"originalItemId,omitempty"`
}

func (t TemporaryItem) Kind() ItemKind { return KindTemporary }
func (t TemporaryItem) Base() ItemBase { return t.ItemBase }
func (t TemporaryItem) Key() string    { return t.ID }

// HasError 是否为被拒绝的放置
func (t TemporaryItem) HasError() bool { return t.State == StateRejected }

// PanelGhost 可用课程面板中的可拖拽课时/场次，尚未落到网格
type PanelGhost struct {
	ItemBase
}

func (g PanelGhost) Kind() ItemKind { return KindPanelGhost }
func (g PanelGhost) Base() ItemBase { return g.ItemBase }
func (g PanelGhost) Key() string    { return g.CourseID + "/" + g.ItemID }
