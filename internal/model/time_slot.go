package model

// TimeSlot 时段目录 — 对应 time_slots，由迁移写入固定的 6 个时段
type TimeSlot struct {
	SlotID      string `gorm:"type:varchar(20);primaryKey"  json:"slot_id"`
	DisplayName string `gorm:"type:varchar(50);not null"    json:"display_name"`
	StartTime   string `gorm:"type:varchar(5);not null"     json:"start_time"`
	EndTime     string `gorm:"type:varchar(5);not null"     json:"end_time"`
	SortOrder   int    `gorm:"type:smallint;not null"       json:"sort_order"`
}

// TableName 指定表名
func (TimeSlot) TableName() string { return "time_slots" }
