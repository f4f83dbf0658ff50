package model

import "time"

// ScheduledItem 学生课表条目 — 对应 scheduled_items
//
// (user_id, course_id, item_id) 唯一；(user_id, schedule_date, slot_id, item_type) 唯一，
// 即同一单元格内同类型最多一个条目。
type ScheduledItem struct {
	ScheduledItemID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"scheduled_item_id"`
	UserID          string    `gorm:"type:uuid;not null"                             json:"user_id"`
	CourseID        string    `gorm:"type:uuid;not null"                             json:"course_id"`
	ItemID          string    `gorm:"type:uuid;not null"                             json:"item_id"`
	ItemType        string    `gorm:"type:varchar(20);not null"                      json:"item_type"`
	ScheduleDate    time.Time `gorm:"type:date;not null"                             json:"schedule_date"`
	SlotID          string    `gorm:"type:varchar(20);not null"                      json:"slot_id"`
	LessonNumber    int       `gorm:"not null;default:1"                             json:"lesson_number"`
	TotalLessons    int       `gorm:"not null;default:1"                             json:"total_lessons"`
	Title           string    `gorm:"type:varchar(200);not null"                     json:"title"`
	ModuleTitle     string    `gorm:"type:varchar(200);not null"                     json:"module_title"`
	VersionedModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (ScheduledItem) TableName() string { return "scheduled_items" }
