package dto

// ── 学生课表 DTO ──
// 字段使用 camelCase，与前端排课组件的数据约定一致

// AvailableCoursesRequest 可用课程查询参数
type AvailableCoursesRequest struct {
	Query string `form:"query"`
	Type  string `form:"type" binding:"omitempty,oneof=live recorded"`
}

// AddCourseItemRequest 将单个课时/场次排入课表
type AddCourseItemRequest struct {
	CourseID     string `json:"courseId"     binding:"required,uuid"`
	ItemID       string `json:"itemId"       binding:"required,uuid"`
	Title        string `json:"title"`
	ModuleTitle  string `json:"moduleTitle"`
	LessonNumber int    `json:"lessonNumber" binding:"omitempty,min=1"`
	TotalLessons int    `json:"totalLessons" binding:"omitempty,min=1"`
	Type         string `json:"type"         binding:"required,oneof=live recorded"`
	Date         string `json:"date"         binding:"required"`
	SlotID       string `json:"slotId"       binding:"required"`
}

// AddLiveCourseRequest 一次性排入直播课的全部场次
type AddLiveCourseRequest struct {
	CourseID string `json:"courseId" binding:"required,uuid"`
}

// UpdateScheduledItemRequest 改期或移除；remove=true 时忽略其余字段
type UpdateScheduledItemRequest struct {
	NewDate   *string `json:"newDate"`
	NewSlotID *string `json:"newSlotId"`
	Remove    bool    `json:"remove"`
}

// UpdateItemsOrderRequest 推送录播课的规范课时顺序
type UpdateItemsOrderRequest struct {
	CourseID       string   `json:"courseId"       binding:"required,uuid"`
	OrderedItemIDs []string `json:"orderedItemIds" binding:"required,min=1,dive,uuid"`
}

// ScheduledItemResponse 课表条目
type ScheduledItemResponse struct {
	ID                 string `json:"id"`
	CourseID           string `json:"courseId"`
	ItemID             string `json:"itemId"`
	Type               string `json:"type"`
	Date               string `json:"date"`
	SlotID             string `json:"slotId"`
	LessonNumber       int    `json:"lessonNumber"`
	TotalLessons       int    `json:"totalLessons"`
	Title              string `json:"title"`
	CourseTitle        string `json:"courseTitle"`
	ModuleTitle        string `json:"moduleTitle"`
	BackgroundColorHex string `json:"backgroundColorHex"`
	IconURL            string `json:"iconUrl"`
}

// ScheduleResponse GET /scheduler/items
type ScheduleResponse struct {
	ScheduledItems []ScheduledItemResponse `json:"scheduledItems"`
}

// AvailableLessonResponse 录播课的课时
type AvailableLessonResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ModuleTitle  string `json:"moduleTitle"`
	LessonNumber int    `json:"lessonNumber"`
	TotalLessons int    `json:"totalLessons"`
}

// LiveSessionResponse 直播课固定场次
type LiveSessionResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	SlotID string `json:"slotId"`
}

// LiveCourseMetaResponse 直播课元信息
type LiveCourseMetaResponse struct {
	StartDate string                `json:"startDate"`
	TimeSlots []LiveSessionResponse `json:"timeSlots"`
}

// AvailableCourseResponse 面板中的课程
type AvailableCourseResponse struct {
	ID                 string                    `json:"id"`
	Title              string                    `json:"title"`
	Type               string                    `json:"type"`
	BackgroundColorHex string                    `json:"backgroundColorHex"`
	IconURL            string                    `json:"iconUrl"`
	IsEnrolled         bool                      `json:"isEnrolled"`
	IsSellable         bool                      `json:"isSellable"`
	AvailableLessons   []AvailableLessonResponse `json:"availableLessons,omitempty"`
	LiveCourseMeta     *LiveCourseMetaResponse   `json:"liveCourseMeta,omitempty"`
}

// AvailableCoursesResponse GET /scheduler/available-courses
type AvailableCoursesResponse struct {
	Courses []AvailableCourseResponse `json:"courses"`
}
