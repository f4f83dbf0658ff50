package scheduler

import "context"

// AvailableQuery 可用课程查询参数
type AvailableQuery struct {
	Query string
	Type  CourseType
}

// AddCourseItemRequest 新增录播课时/场次请求
type AddCourseItemRequest struct {
	CourseID     string     `json:"courseId"`
	ItemID       string     `json:"itemId"`
	Title        string     `json:"title"`
	ModuleTitle  string     `json:"moduleTitle"`
	LessonNumber int        `json:"lessonNumber"`
	TotalLessons int        `json:"totalLessons"`
	Type         CourseType `json:"type"`
	Date         string     `json:"date"`
	SlotID       string     `json:"slotId"`
}

// UpdateItemRequest 调整或移除已排条目
type UpdateItemRequest struct {
	ItemID    string `json:"itemId"`
	NewDate   string `json:"newDate,omitempty"`
	NewSlotID string `json:"newSlotId,omitempty"`
	Remove    bool   `json:"remove,omitempty"`
}

// AvailableLesson 录播课的课时
type AvailableLesson struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ModuleTitle  string `json:"moduleTitle"`
	LessonNumber int    `json:"lessonNumber"`
	TotalLessons int    `json:"totalLessons"`
}

// LiveSessionSlot 直播课的一个固定场次
type LiveSessionSlot struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	SlotID string `json:"slotId"`
}

// LiveCourseMeta 直播课元信息
type LiveCourseMeta struct {
	StartDate string            `json:"startDate"`
	TimeSlots []LiveSessionSlot `json:"timeSlots"`
}

// AvailableCourse 面板展示用的只读课程投影
type AvailableCourse struct {
	ID                 string            `json:"id"`
	Title              string            `json:"title"`
	Type               CourseType        `json:"type"`
	BackgroundColorHex string            `json:"backgroundColorHex"`
	IconURL            string            `json:"iconUrl"`
	IsEnrolled         bool              `json:"isEnrolled"`
	IsSellable         bool              `json:"isSellable"`
	AvailableLessons   []AvailableLesson `json:"availableLessons,omitempty"`
	LiveCourseMeta     *LiveCourseMeta   `json:"liveCourseMeta,omitempty"`
}

// API 远端排课服务
//
// 所有调用的失败都以 error 返回，错误文本即面向用户的提示。
type API interface {
	GetSchedule(ctx context.Context) ([]PlacedItem, error)
	ListAvailableCourses(ctx context.Context, q AvailableQuery) ([]AvailableCourse, error)
	AddCourseItem(ctx context.Context, req AddCourseItemRequest) error
	AddLiveCourse(ctx context.Context, courseID string) error
	UpdateScheduledItem(ctx context.Context, req UpdateItemRequest) error
	UpdateItemsOrder(ctx context.Context, courseID string, orderedItemIDs []string) error
}

// SnapshotCache 排课快照的本地缓存（pkg/redis.Client 实现）
type SnapshotCache interface {
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)
	SaveSnapshot(ctx context.Context, key string, data []byte) error
}
