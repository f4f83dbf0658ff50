package model

import "time"

// 课程类型
const (
	CourseTypeLive     = "live"
	CourseTypeRecorded = "recorded"
)

// Course 课程表 — 对应 courses（只读，由讲师端维护）
type Course struct {
	CourseID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Title              string `gorm:"type:varchar(200);not null"                     json:"title"`
	CourseType         string `gorm:"type:varchar(20);not null"                      json:"course_type"`
	BackgroundColorHex string `gorm:"type:varchar(9);not null"                       json:"background_color_hex"`
	IconURL            string `gorm:"type:varchar(500);not null"                     json:"icon_url"`
	IsSellable         bool   `gorm:"not null;default:true"                          json:"is_sellable"`
	BaseModel

	// 关联
	Lessons      []Lesson      `gorm:"foreignKey:CourseID;references:CourseID" json:"lessons,omitempty"`
	LiveSessions []LiveSession `gorm:"foreignKey:CourseID;references:CourseID" json:"live_sessions,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// IsLive 是否为直播课
func (c *Course) IsLive() bool { return c.CourseType == CourseTypeLive }

// Lesson 录播课课时 — 对应 lessons
type Lesson struct {
	LessonID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lesson_id"`
	CourseID    string    `gorm:"type:uuid;not null"                             json:"course_id"`
	ModuleTitle string    `gorm:"type:varchar(200);not null"                     json:"module_title"`
	Title       string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Position    int       `gorm:"not null"                                       json:"position"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Lesson) TableName() string { return "lessons" }

// LiveSession 直播课固定场次 — 对应 live_sessions
type LiveSession struct {
	SessionID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	CourseID    string    `gorm:"type:uuid;not null"                             json:"course_id"`
	Title       string    `gorm:"type:varchar(200);not null"                     json:"title"`
	SessionDate time.Time `gorm:"type:date;not null"                             json:"session_date"`
	SlotID      string    `gorm:"type:varchar(20);not null"                      json:"slot_id"`
	Position    int       `gorm:"not null"                                       json:"position"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (LiveSession) TableName() string { return "live_sessions" }

// Enrollment 选课记录 — 对应 enrollments
type Enrollment struct {
	EnrollmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	UserID       string    `gorm:"type:uuid;not null"                             json:"user_id"`
	CourseID     string    `gorm:"type:uuid;not null"                             json:"course_id"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
