package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tudva/backend/internal/dto"
	"tudva/backend/internal/service"
	pkgerrors "tudva/backend/pkg/errors"
	"tudva/backend/pkg/response"
)

// SchedulerHandler 学生课表 HTTP 处理器
type SchedulerHandler struct {
	schedulerSvc service.SchedulerService
}

// NewSchedulerHandler 创建 SchedulerHandler
func NewSchedulerHandler(schedulerSvc service.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{schedulerSvc: schedulerSvc}
}

// GetSchedule 获取当前学生的全部排课
// GET /api/v1/scheduler/items
func (h *SchedulerHandler) GetSchedule(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.schedulerSvc.GetSchedule(c.Request.Context(), userID)
	if err != nil {
		h.handleSchedulerError(c, err)
		return
	}

	response.OK(c, result)
}

// ListAvailableCourses 获取可排课程
// GET /api/v1/scheduler/available-courses?query=&type=
func (h *SchedulerHandler) ListAvailableCourses(c *gin.Context) {
	var req dto.AvailableCoursesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.schedulerSvc.ListAvailableCourses(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSchedulerError(c, err)
		return
	}

	response.OK(c, result)
}

// AddCourseItem 排入单个课时或场次
// POST /api/v1/scheduler/items
func (h *SchedulerHandler) AddCourseItem(c *gin.Context) {
	var req dto.AddCourseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.schedulerSvc.AddCourseItem(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSchedulerError(c, err)
		return
	}

	response.Created(c, item)
}

// AddLiveCourse 排入直播课的全部场次
// POST /api/v1/scheduler/live-courses
func (h *SchedulerHandler) AddLiveCourse(c *gin.Context) {
	var req dto.AddLiveCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.schedulerSvc.AddLiveCourse(c.Request.Context(), userID, req.CourseID)
	if err != nil {
		h.handleSchedulerError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateScheduledItem 改期或移除
// PUT /api/v1/scheduler/items/:id
func (h *SchedulerHandler) UpdateScheduledItem(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(c, 10001, "排课条目ID无效")
		return
	}

	var req dto.UpdateScheduledItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.schedulerSvc.UpdateScheduledItem(c.Request.Context(), userID, id, &req); err != nil {
		h.handleSchedulerError(c, err)
		return
	}

	response.OK(c, nil)
}

// UpdateItemsOrder 写入录播课的课时顺序
// POST /api/v1/scheduler/order
func (h *SchedulerHandler) UpdateItemsOrder(c *gin.Context) {
	var req dto.UpdateItemsOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.schedulerSvc.UpdateItemsOrder(c.Request.Context(), userID, &req); err != nil {
		h.handleSchedulerError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSchedulerError 统一处理课表模块业务错误
// 错误文本会原样展示给学生
func (h *SchedulerHandler) handleSchedulerError(c *gin.Context, err error) {
	switch {
	// ── 参数类 ──
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 17001, service.ErrInvalidDate.Error())
	case errors.Is(err, service.ErrWrongWeekday):
		response.BadRequest(c, 17002, service.ErrWrongWeekday.Error())
	case errors.Is(err, service.ErrSlotNotFound):
		response.BadRequest(c, 17003, service.ErrSlotNotFound.Error())
	case errors.Is(err, service.ErrItemNotInCourse):
		response.BadRequest(c, 17006, service.ErrItemNotInCourse.Error())
	case errors.Is(err, service.ErrTypeMismatch):
		response.BadRequest(c, 17007, service.ErrTypeMismatch.Error())
	case errors.Is(err, service.ErrNotLiveCourse):
		response.BadRequest(c, 17008, service.ErrNotLiveCourse.Error())
	case errors.Is(err, service.ErrNoLiveSessions):
		response.BadRequest(c, 17009, service.ErrNoLiveSessions.Error())
	case errors.Is(err, service.ErrLiveSessionFixed):
		response.BadRequest(c, 17010, service.ErrLiveSessionFixed.Error())
	case errors.Is(err, service.ErrLiveImmovable):
		response.BadRequest(c, 17011, service.ErrLiveImmovable.Error())
	case errors.Is(err, service.ErrEmptyUpdate):
		response.BadRequest(c, 17017, service.ErrEmptyUpdate.Error())
	case errors.Is(err, service.ErrInvalidOrder):
		response.BadRequest(c, 17018, service.ErrInvalidOrder.Error())

	// ── 归属类 ──
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 17004, service.ErrCourseNotFound.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 17005, service.ErrNotEnrolled.Error())
	case errors.Is(err, service.ErrScheduledItemNotFound):
		response.NotFound(c, 17016, service.ErrScheduledItemNotFound.Error())

	// ── 冲突类 ──
	case errors.Is(err, service.ErrAlreadyScheduled):
		response.Conflict(c, 17012, service.ErrAlreadyScheduled.Error())
	case errors.Is(err, service.ErrLiveAlreadyScheduled):
		response.Conflict(c, 17013, service.ErrLiveAlreadyScheduled.Error())
	case errors.Is(err, service.ErrCellOccupied):
		response.Conflict(c, 17014, service.ErrCellOccupied.Error())
	case errors.Is(err, service.ErrLiveSlotConflict):
		response.Conflict(c, 17015, service.ErrLiveSlotConflict.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 17019, pkgerrors.ErrOptimisticLock.Error())

	default:
		response.InternalError(c)
	}
}
